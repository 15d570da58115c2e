package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/observability"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// creditLedger gates and charges model-backed generations. Subscribers are
// never charged.
type creditLedger struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func newCreditLedger(log *logger.Logger, userRepo repos.UserRepo) *creditLedger {
	return &creditLedger{log: log, userRepo: userRepo}
}

func (l *creditLedger) load(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	users, err := l.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("%w: user not found", pkgerrors.ErrUnauthorized)
	}
	return users[0], nil
}

// require fails with ErrInsufficientCredits when u cannot pay for n generations.
func (l *creditLedger) require(u *types.User, n int) error {
	if n <= 0 || u.IsSubscribed || u.Credits >= n {
		return nil
	}
	return fmt.Errorf("%w: %d required, %d available", pkgerrors.ErrInsufficientCredits, n, u.Credits)
}

// charge takes one credit after a successful generation. It reports false when
// an unsubscribed user had nothing left to take.
func (l *creditLedger) charge(dbc dbctx.Context, u *types.User) (bool, error) {
	if u.IsSubscribed {
		return true, nil
	}
	ok, err := l.userRepo.ConsumeCredits(dbc, u.ID, 1)
	if err != nil {
		return false, fmt.Errorf("consume credit: %w", err)
	}
	if !ok {
		l.log.Warn("Credit decrement affected no rows", "user_id", u.ID.String())
		return false, nil
	}
	observability.Current().AddCreditsConsumed(1)
	return true, nil
}
