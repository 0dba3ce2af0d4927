package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/production-portal-backend/internal/data/repos/testutil"
	userrepo "github.com/yungbote/production-portal-backend/internal/data/repos/user"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/platform/ctxutil"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

func TestGetMeReportsPrivilege(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	admin := testutil.SeedUser(t, ctx, db, "me-admin-"+uuid.NewString()[:8]+"@example.com", "admin")
	worker := testutil.SeedUser(t, ctx, db, "me-worker-"+uuid.NewString()[:8]+"@example.com")
	svc := NewUserService(logger.Nop(), userrepo.NewUserRepo(db, logger.Nop()))

	for _, tc := range []struct {
		id    uuid.UUID
		perms []string
		want  bool
	}{
		{admin.ID, []string{"admin"}, true},
		{worker.ID, nil, false},
	} {
		authed := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: tc.id, Permissions: tc.perms})
		me, err := svc.GetMe(authed)
		if err != nil {
			t.Fatalf("GetMe(%s): %v", tc.id, err)
		}
		if me.User.ID != tc.id || me.Privileged != tc.want {
			t.Fatalf("GetMe(%s): want privileged=%v got=%+v", tc.id, tc.want, me)
		}
	}
}

func TestGetMeWithoutCallerIsForbidden(t *testing.T) {
	svc := NewUserService(logger.Nop(), userrepo.NewUserRepo(testutil.DB(t), logger.Nop()))
	if _, err := svc.GetMe(context.Background()); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
}

func TestGetMeUnknownUserIsNotFound(t *testing.T) {
	svc := NewUserService(logger.Nop(), userrepo.NewUserRepo(testutil.DB(t), logger.Nop()))
	authed := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: uuid.New()})
	if _, err := svc.GetMe(authed); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}
