package services

import (
	"context"

	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
	userrepo "github.com/yungbote/production-portal-backend/internal/data/repos/user"
	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// Me is the authenticated user plus whether they hold Full scope on every request.
type Me struct {
	User       *types.User `json:"user"`
	Privileged bool        `json:"privileged"`
}

type UserService interface {
	GetMe(ctx context.Context) (*Me, error)
}

type userService struct {
	log      *logger.Logger
	userRepo userrepo.UserRepo
}

func NewUserService(log *logger.Logger, userRepo userrepo.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*Me, error) {
	caller, err := CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, caller.UserID)
	if err != nil {
		return nil, aggregates.MapError("user.get_me", err)
	}
	return &Me{User: u, Privileged: caller.Privileged()}, nil
}
