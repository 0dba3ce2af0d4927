package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, permissions ...string) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		FirstName:   "A",
		LastName:    "B",
		Permissions: datatypes.JSONSlice[string](append([]string{}, permissions...)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedRequest inserts a bare request row without details or history.
func SeedRequest(tb testing.TB, ctx context.Context, tx *gorm.DB, creator uuid.UUID, assignee *uuid.UUID, stage production.Stage) *types.ProductionRequest {
	tb.Helper()
	now := time.Now().UTC()
	req := &types.ProductionRequest{
		ID:             uuid.New(),
		Name:           "Seeded request",
		RequestDate:    production.Today(now),
		Department:     "Marketing",
		DeliveryDate:   production.Today(now).AddDate(0, 1, 0),
		Stage:          stage,
		UserCreatorID:  creator,
		AssignedUserID: assignee,
		Files:          datatypes.JSONSlice[production.UploadedFile]{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(req).Error; err != nil {
		tb.Fatalf("seed request: %v", err)
	}
	return req
}
