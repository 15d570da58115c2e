package todos

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Status     types.TodoStatus
	Priority   types.TodoPriority
	LinkedType types.LinkedEntityType
}

type TodoRepo interface {
	Create(dbc dbctx.Context, todos []*types.Todo) ([]*types.Todo, error)
	GetOwned(dbc dbctx.Context, userID, todoID uuid.UUID) (*types.Todo, error)
	// List orders by due date ascending with undated todos last, then newest first.
	List(dbc dbctx.Context, userID uuid.UUID, f Filter) ([]*types.Todo, error)
	Save(dbc dbctx.Context, todo *types.Todo) error
	Delete(dbc dbctx.Context, userID, todoID uuid.UUID) error
}

type todoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTodoRepo(db *gorm.DB, baseLog *logger.Logger) TodoRepo {
	repoLog := baseLog.With("repo", "TodoRepo")
	return &todoRepo{db: db, log: repoLog}
}

func (r *todoRepo) Create(dbc dbctx.Context, todos []*types.Todo) ([]*types.Todo, error) {
	transaction := dbc.Conn(r.db)

	if len(todos) == 0 {
		return []*types.Todo{}, nil
	}
	if err := transaction.Create(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepo) GetOwned(dbc dbctx.Context, userID, todoID uuid.UUID) (*types.Todo, error) {
	transaction := dbc.Conn(r.db)

	var t types.Todo
	err := transaction.
		Where("id = ? AND user_id = ?", todoID, userID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *todoRepo) List(dbc dbctx.Context, userID uuid.UUID, f Filter) ([]*types.Todo, error) {
	transaction := dbc.Conn(r.db)

	q := transaction.Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.LinkedType != "" {
		q = q.Where("linked_entity_type = ?", f.LinkedType)
	}

	var results []*types.Todo
	if err := q.
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *todoRepo) Save(dbc dbctx.Context, todo *types.Todo) error {
	transaction := dbc.Conn(r.db)
	return transaction.Save(todo).Error
}

func (r *todoRepo) Delete(dbc dbctx.Context, userID, todoID uuid.UUID) error {
	transaction := dbc.Conn(r.db)

	res := transaction.
		Where("id = ? AND user_id = ?", todoID, userID).
		Delete(&types.Todo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
