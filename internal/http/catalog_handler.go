package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catmatch/internal/service"
)

// CatalogHandler expone el estado del catalogo cargado.
type CatalogHandler struct {
	logger  *zap.Logger
	catalog service.CatalogProvider
}

func NewCatalogHandler(logger *zap.Logger, catalog service.CatalogProvider) *CatalogHandler {
	return &CatalogHandler{
		logger:  logger,
		catalog: catalog,
	}
}

// GetCatalog maneja GET /catalog.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	ctx := c.Request.Context()
	breeds := h.catalog.Breeds(ctx)

	names := make([]string, 0, len(breeds))
	for _, b := range breeds {
		names = append(names, b.Name)
	}

	resp := gin.H{"breeds": len(breeds), "names": names}
	if err := h.catalog.Diagnostic(ctx); err != nil {
		resp["diagnostic"] = "catalog unavailable: " + err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Health maneja GET /healthz.
func (h *CatalogHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
