package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"receipt-backend/internal/auth"
	"receipt-backend/internal/catalog"
	"receipt-backend/internal/ocr"
	sharedauth "receipt-backend/internal/shared/auth"
	"receipt-backend/internal/shared/config"
	"receipt-backend/internal/shared/metrics"
	"receipt-backend/internal/shared/server/middleware"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config         config.Config
	OCRHandler     *ocr.Handler
	AuthHandler    *auth.Handler
	OAuthFlow      *auth.OAuthFlow
	CatalogHandler *catalog.Handler
	Sessions       *sharedauth.Manager
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running!"})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("")
	if deps.OCRHandler != nil {
		deps.OCRHandler.RegisterRoutes(api)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(api)
	}
	if deps.OAuthFlow != nil {
		deps.OAuthFlow.RegisterRoutes(api)
	}
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.RegisterRoutes(api)
	}

	if deps.AuthHandler != nil && deps.Sessions != nil {
		session := r.Group("", middleware.RequireSession(deps.Sessions))
		deps.AuthHandler.RegisterSessionRoutes(session)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
