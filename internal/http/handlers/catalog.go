package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/http/response"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
	"github.com/yungbote/production-portal-backend/internal/services"
)

type CatalogHandler struct {
	log      *logger.Logger
	catalogs services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), catalogs: catalogs}
}

// List serves one fixed catalog kind.
func (h *CatalogHandler) List(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.catalogs.ListAll(c.Request.Context(), string(kind))
		if err != nil {
			response.RespondAggregateError(c, err)
			return
		}
		response.RespondOK(c, entries)
	}
}

// GET /api/production/audience/:kind
func (h *CatalogHandler) ListAudience(c *gin.Context) {
	switch kind := catalog.Kind(c.Param("kind")); kind {
	case catalog.KindGenders, catalog.KindAgeRanges, catalog.KindSocioeconomicLevels:
		h.List(kind)(c)
	default:
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("unknown audience catalog"))
	}
}

// GET /api/production/catalogs
func (h *CatalogHandler) Bundle(c *gin.Context) {
	bundle, err := h.catalogs.ListBundle(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, bundle)
}
