package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/services"
)

type stubUsers struct {
	me  *services.Me
	err error
}

func (s *stubUsers) GetMe(context.Context) (*services.Me, error) { return s.me, s.err }

func TestGetMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	r := gin.New()
	r.GET("/me", NewUserHandler(&stubUsers{me: &services.Me{User: &types.User{ID: id}, Privileged: true}}).GetMe)

	rec := serve(r, http.MethodGet, "/me", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	var body struct {
		User       struct{ ID uuid.UUID } `json:"user"`
		Privileged bool                   `json:"privileged"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.ID != id || !body.Privileged {
		t.Fatalf("body: got=%+v", body)
	}
}

func TestGetMeForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", NewUserHandler(&stubUsers{err: domainagg.NewError(domainagg.CodeForbidden, "auth", "no authenticated caller", nil)}).GetMe)
	if rec := serve(r, http.MethodGet, "/me", nil, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("status: want=403 got=%d", rec.Code)
	}
}
