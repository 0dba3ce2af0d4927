package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
	"github.com/yungbote/production-portal-backend/internal/services"
)

type stubCatalogs struct {
	services.CatalogService
	asked []string
}

func (s *stubCatalogs) ListAll(_ context.Context, kind string) ([]types.CatalogEntry, error) {
	s.asked = append(s.asked, kind)
	return []types.CatalogEntry{{ID: 1, Name: kind + "-1"}}, nil
}

func (s *stubCatalogs) ListBundle(context.Context) (map[string][]types.CatalogEntry, error) {
	return map[string][]types.CatalogEntry{"genders": {{ID: 1, Name: "Female"}}}, nil
}

func newCatalogRouter(cat *stubCatalogs) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCatalogHandler(logger.Nop(), cat)
	r := gin.New()
	r.GET("/production/catalogs", h.Bundle)
	r.GET("/production/products", h.List(catalog.KindProducts))
	r.GET("/production/audience/:kind", h.ListAudience)
	return r
}

func TestCatalogListByKind(t *testing.T) {
	cat := &stubCatalogs{}
	r := newCatalogRouter(cat)
	rec := serve(r, http.MethodGet, "/production/products", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	var entries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || len(cat.asked) != 1 || cat.asked[0] != "products" {
		t.Fatalf("entries=%v asked=%v", entries, cat.asked)
	}
}

func TestCatalogAudienceKinds(t *testing.T) {
	cat := &stubCatalogs{}
	r := newCatalogRouter(cat)
	for _, kind := range []string{"genders", "age-ranges", "socioeconomic-levels"} {
		if rec := serve(r, http.MethodGet, "/production/audience/"+kind, nil, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: want=200 got=%d", kind, rec.Code)
		}
	}
	if rec := serve(r, http.MethodGet, "/production/audience/products", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("non-audience kind: want=404 got=%d", rec.Code)
	}
}

func TestCatalogBundle(t *testing.T) {
	r := newCatalogRouter(&stubCatalogs{})
	rec := serve(r, http.MethodGet, "/production/catalogs", nil, "")
	var bundle map[string][]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &bundle); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(bundle["genders"]) != 1 {
		t.Fatalf("bundle: got=%v", bundle)
	}
}
