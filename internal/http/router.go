package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	httpH "github.com/yungbote/production-portal-backend/internal/http/handlers"
	httpMW "github.com/yungbote/production-portal-backend/internal/http/middleware"
	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	Metrics        *observability.Metrics

	AuthMiddleware    *httpMW.AuthMiddleware
	HealthHandler     *httpH.HealthHandler
	UserHandler       *httpH.UserHandler
	CatalogHandler    *httpH.CatalogHandler
	ProductionHandler *httpH.ProductionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// User (Me)
	if cfg.UserHandler != nil {
		api.GET("/me", cfg.UserHandler.GetMe)
	}

	// Catalogs. Static paths are registered before the :id routes.
	if cfg.CatalogHandler != nil {
		h := cfg.CatalogHandler
		api.GET("/production/catalogs", h.Bundle)
		api.GET("/production/objectives", h.List(catalog.KindObjectives))
		api.GET("/production/format-types", h.List(catalog.KindFormatTypes))
		api.GET("/production/rights-durations", h.List(catalog.KindRightsDurations))
		api.GET("/production/products", h.List(catalog.KindProducts))
		api.GET("/production/teams", h.List(catalog.KindTeams))
		api.GET("/production/audience/:kind", h.ListAudience)
	}

	// Production requests
	if cfg.ProductionHandler != nil {
		h := cfg.ProductionHandler
		api.POST("/production", h.Create)
		api.GET("/production", h.List)
		api.GET("/production/:id", h.Get)
		api.PUT("/production/:id", h.Update)
		api.DELETE("/production/:id", h.Delete)
		api.PUT("/production/:id/move", h.Move)
		api.GET("/production/:id/history", h.History)
		api.POST("/production/:id/files", h.UploadFiles)
		api.DELETE("/production/:id/files/*fileId", h.RemoveFile)
	}

	return r
}
