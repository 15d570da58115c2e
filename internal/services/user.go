package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	// GrantCredits tops up a user's balance. Used by the admin CLI.
	GrantCredits(ctx context.Context, email string, amount int) (*types.User, error)
	SetSubscribed(ctx context.Context, email string, subscribed bool) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: no user in context", pkgerrors.ErrUnauthorized)
	}
	users, err := us.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user not found", pkgerrors.ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) GrantCredits(ctx context.Context, email string, amount int) (*types.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", pkgerrors.ErrInvalidArgument)
	}
	u, err := us.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := us.userRepo.AddCredits(dbctx.Context{Ctx: ctx}, u.ID, amount); err != nil {
		return nil, err
	}
	us.log.Info("Credits granted", "user_id", u.ID.String(), "amount", amount)
	return us.reload(ctx, u.ID)
}

func (us *userService) SetSubscribed(ctx context.Context, email string, subscribed bool) (*types.User, error) {
	u, err := us.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := us.userRepo.SetSubscribed(dbctx.Context{Ctx: ctx}, u.ID, subscribed); err != nil {
		return nil, err
	}
	return us.reload(ctx, u.ID)
}

func (us *userService) byEmail(ctx context.Context, email string) (*types.User, error) {
	users, err := us.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{NormalizeEmail(email)})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no user with that email", pkgerrors.ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) reload(ctx context.Context, id uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user not found", pkgerrors.ErrNotFound)
	}
	return users[0], nil
}
