package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/production-portal-backend/internal/data/repos/testutil"
	userrepo "github.com/yungbote/production-portal-backend/internal/data/repos/user"
	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/platform/ctxutil"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

func TestAuthRoundTripLoadsPermissionsFromUserRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "sup-"+uuid.NewString()[:8]+"@example.com", "supervisor")
	auth := NewAuthService(logger.Nop(), userrepo.NewUserRepo(db, logger.Nop()), "secret", time.Hour)

	token, err := auth.IssueAccessToken(u)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	authed, err := auth.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(authed)
	if rd == nil || rd.UserID != u.ID {
		t.Fatalf("request data: %+v", rd)
	}
	if len(rd.Permissions) != 1 || rd.Permissions[0] != "supervisor" {
		t.Fatalf("permissions: %v", rd.Permissions)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	db := testutil.DB(t)
	auth := NewAuthService(logger.Nop(), userrepo.NewUserRepo(db, logger.Nop()), "secret", time.Hour)
	ctx := context.Background()

	unknown, err := auth.IssueAccessToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	other := NewAuthService(logger.Nop(), userrepo.NewUserRepo(db, logger.Nop()), "other-secret", time.Hour)
	wrongKey, _ := other.IssueAccessToken(&types.User{ID: uuid.New()})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	expiredStr, _ := expired.SignedString([]byte("secret"))

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"unknown user": unknown,
		"wrong key":    wrongKey,
		"expired":      expiredStr,
	} {
		if _, err := auth.SetContextFromToken(ctx, tok); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: want ErrUnauthorized, got %v", name, err)
		}
	}
}
