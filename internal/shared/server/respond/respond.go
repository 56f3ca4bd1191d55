package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"receipt-backend/internal/shared/telemetry"
)

// Envelope is the uniform response shape returned by every endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Success writes a 200 success envelope. message may be empty.
func Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error sends an error envelope and aborts the request. Server errors
// (status >= 500) are logged as operational failures; client errors are not.
func Error(c *gin.Context, status int, message string, details any) {
	if status >= http.StatusInternalServerError {
		fields := map[string]any{
			"status":     status,
			"message":    message,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("requestId"),
		}
		if details != nil {
			fields["details"] = details
		}
		telemetry.Error("http.error", fields)
	}

	c.AbortWithStatusJSON(status, Envelope{
		Status:  "error",
		Message: message,
		Details: details,
	})
}
