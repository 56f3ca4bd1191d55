package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"receipt-backend/internal/shared/auth"
	"receipt-backend/internal/shared/server/respond"
)

const subjectKey = "subject"

// RequireSession validates a Bearer session token and stores the subject in
// the gin context. Requests without a valid session are rejected with 401.
func RequireSession(sessions *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "missing or invalid session token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		claims, err := sessions.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "missing or invalid session token", nil)
			return
		}
		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}

// SubjectFromContext fetches the subject stored by RequireSession.
func SubjectFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(subjectKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
