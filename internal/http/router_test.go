package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	httpH "github.com/yungbote/production-portal-backend/internal/http/handlers"
	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
	"github.com/yungbote/production-portal-backend/internal/services"
)

type bundleOnlyCatalogs struct {
	services.CatalogService
	bundles int
}

func (b *bundleOnlyCatalogs) ListBundle(context.Context) (map[string][]types.CatalogEntry, error) {
	b.bundles++
	return map[string][]types.CatalogEntry{}, nil
}

func TestRouterStaticCatalogRouteWinsOverID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat := &bundleOnlyCatalogs{}
	r := NewRouter(RouterConfig{
		Log:            logger.Nop(),
		CatalogHandler: httpH.NewCatalogHandler(logger.Nop(), cat),
		ProductionHandler: httpH.NewProductionHandler(httpH.ProductionHandlerDeps{
			Log: logger.Nop(),
		}),
		HealthHandler: httpH.NewHealthHandler(nil),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/production/catalogs", nil))
	if rec.Code != http.StatusOK || cat.bundles != 1 {
		t.Fatalf("catalogs: status=%d bundles=%d", rec.Code, cat.bundles)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/production/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want=400 got=%d", rec.Code)
	}
}

func TestRouterServesMetricsAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Metrics:       observability.Init(true),
		HealthHandler: httpH.NewHealthHandler(nil),
	})
	for _, path := range []string{"/healthcheck", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: want=200 got=%d", path, rec.Code)
		}
	}
}
