package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error
	// ConsumeCredits decrements credits only while the user is unsubscribed
	// and holds at least n. It reports whether a row was updated.
	ConsumeCredits(dbc dbctx.Context, userID uuid.UUID, n int) (bool, error)
	AddCredits(dbc dbctx.Context, userID uuid.UUID, n int) error
	SetSubscribed(dbc dbctx.Context, userID uuid.UUID, subscribed bool) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	transaction := dbc.Conn(ur.db)

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.Create(&users).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, pkgerrors.ErrConflict
		}
		return nil, err
	}

	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := dbc.Conn(ur.db)

	var results []*types.User

	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	transaction := dbc.Conn(ur.db)

	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}

	if err := transaction.
		Where("email IN ?", userEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	transaction := dbc.Conn(ur.db)

	var count int64

	if err := transaction.
		Model(&types.User{}).
		Where("email = ?", userEmail).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error {
	transaction := dbc.Conn(ur.db)

	return transaction.
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
		}).Error
}

func (ur *userRepo) ConsumeCredits(dbc dbctx.Context, userID uuid.UUID, n int) (bool, error) {
	transaction := dbc.Conn(ur.db)
	if n <= 0 {
		return true, nil
	}

	res := transaction.
		Model(&types.User{}).
		Where("id = ? AND is_subscribed = ? AND credits >= ?", userID, false, n).
		UpdateColumn("credits", gorm.Expr("credits - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (ur *userRepo) AddCredits(dbc dbctx.Context, userID uuid.UUID, n int) error {
	transaction := dbc.Conn(ur.db)

	res := transaction.
		Model(&types.User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (ur *userRepo) SetSubscribed(dbc dbctx.Context, userID uuid.UUID, subscribed bool) error {
	transaction := dbc.Conn(ur.db)

	return transaction.
		Model(&types.User{}).
		Where("id = ?", userID).
		UpdateColumn("is_subscribed", subscribed).Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
