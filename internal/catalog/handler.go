package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"receipt-backend/internal/shared/server/respond"
)

// Handler serves the catalog listing. Repo may be nil when the record store
// was not configured; the handler then fails fast with a configuration error.
type Handler struct {
	Repo Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches catalog routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/data/cigarettes", h.list)
}

func (h *Handler) list(c *gin.Context) {
	if h.Repo == nil {
		respond.Error(c, http.StatusInternalServerError, "catalog store is not configured", nil)
		return
	}

	brands, err := h.Repo.ListBrands(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if brands == nil {
		brands = []Brand{}
	}
	respond.Success(c, "", brands)
}
