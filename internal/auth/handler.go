package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"receipt-backend/internal/shared/metrics"
	"receipt-backend/internal/shared/server/middleware"
	"receipt-backend/internal/shared/server/respond"
	"receipt-backend/internal/users"
)

const (
	newUserMessage       = "new user registered"
	returningUserMessage = "returning user login"
)

// Handler wires identity HTTP endpoints to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the token-login route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/google", h.login)
}

// RegisterSessionRoutes attaches routes that require an active session.
func (h *Handler) RegisterSessionRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.me)
}

type loginRequest struct {
	Token string `json:"token"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "token is required", nil)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		respond.Error(c, http.StatusBadRequest, "token is required", nil)
		return
	}

	user, isNew, err := h.Svc.Login(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrStoreDisabled):
			respond.Error(c, http.StatusInternalServerError, ErrStoreDisabled.Error(), nil)
		case errors.Is(err, ErrInvalidToken):
			respond.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, err.Error(), nil)
		}
		return
	}

	message := returningUserMessage
	if isNew {
		metrics.IncLoginNew()
		message = newUserMessage
	} else {
		metrics.IncLoginReturning()
	}
	respond.Success(c, message, user)
}

func (h *Handler) me(c *gin.Context) {
	subject := middleware.SubjectFromContext(c)
	user, err := h.Svc.Get(c.Request.Context(), subject)
	if err != nil {
		switch {
		case errors.Is(err, ErrStoreDisabled):
			respond.Error(c, http.StatusInternalServerError, ErrStoreDisabled.Error(), nil)
		case errors.Is(err, users.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "user not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "failed to load user", nil)
		}
		return
	}
	respond.Success(c, "", user)
}
