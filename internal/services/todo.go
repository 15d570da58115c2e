package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/domain/todos"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type LinkedEntity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type TodoInput struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Priority     string        `json:"priority"`
	DueDate      *time.Time    `json:"dueDate"`
	LinkedEntity *LinkedEntity `json:"linkedEntity"`
}

// TodoPatch holds the fields an update may change; nil means unchanged.
type TodoPatch struct {
	Title        *string       `json:"title"`
	Description  *string       `json:"description"`
	Priority     *string       `json:"priority"`
	DueDate      *time.Time    `json:"dueDate"`
	ClearDueDate bool          `json:"clearDueDate"`
	Status       *string       `json:"status"`
	LinkedEntity *LinkedEntity `json:"linkedEntity"`
}

type TodoService interface {
	Create(ctx context.Context, userID uuid.UUID, in TodoInput) (*types.Todo, error)
	List(ctx context.Context, userID uuid.UUID, f repos.TodoFilter) ([]*types.Todo, error)
	Update(ctx context.Context, userID, todoID uuid.UUID, patch TodoPatch) (*types.Todo, error)
	MarkDone(ctx context.Context, userID, todoID uuid.UUID) (*types.Todo, error)
	Delete(ctx context.Context, userID, todoID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*types.TodoStats, error)
}

type todoService struct {
	log      *logger.Logger
	todoRepo repos.TodoRepo
	now      func() time.Time
}

func NewTodoService(log *logger.Logger, todoRepo repos.TodoRepo) TodoService {
	return &todoService{
		log:      log.With("service", "TodoService"),
		todoRepo: todoRepo,
		now:      time.Now,
	}
}

func (s *todoService) Create(ctx context.Context, userID uuid.UUID, in TodoInput) (*types.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", pkgerrors.ErrInvalidArgument)
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	t := &types.Todo{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     in.DueDate,
		Status:      todos.StatusPending,
	}
	if err := applyLink(t, in.LinkedEntity); err != nil {
		return nil, err
	}
	if _, err := s.todoRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Todo{t}); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

func (s *todoService) List(ctx context.Context, userID uuid.UUID, f repos.TodoFilter) ([]*types.Todo, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be pending or completed", pkgerrors.ErrInvalidArgument)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, fmt.Errorf("%w: priority must be low, medium or high", pkgerrors.ErrInvalidArgument)
	}
	if f.LinkedType != "" && !f.LinkedType.Valid() {
		return nil, fmt.Errorf("%w: linkedType must be document, quiz or note", pkgerrors.ErrInvalidArgument)
	}
	return s.todoRepo.List(dbctx.Context{Ctx: ctx}, userID, f)
}

func (s *todoService) Update(ctx context.Context, userID, todoID uuid.UUID, patch TodoPatch) (*types.Todo, error) {
	dbc := dbctx.Context{Ctx: ctx}
	t, err := s.todoRepo.GetOwned(dbc, userID, todoID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", pkgerrors.ErrInvalidArgument)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Priority != nil {
		p, err := parsePriority(*patch.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = p
	}
	if patch.ClearDueDate {
		t.DueDate = nil
	} else if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.Status != nil {
		st := todos.Status(strings.ToLower(strings.TrimSpace(*patch.Status)))
		if !st.Valid() {
			return nil, fmt.Errorf("%w: status must be pending or completed", pkgerrors.ErrInvalidArgument)
		}
		s.setStatus(t, st)
	}
	if patch.LinkedEntity != nil {
		if err := applyLink(t, patch.LinkedEntity); err != nil {
			return nil, err
		}
	}
	if err := s.todoRepo.Save(dbc, t); err != nil {
		return nil, fmt.Errorf("save todo: %w", err)
	}
	return t, nil
}

func (s *todoService) MarkDone(ctx context.Context, userID, todoID uuid.UUID) (*types.Todo, error) {
	dbc := dbctx.Context{Ctx: ctx}
	t, err := s.todoRepo.GetOwned(dbc, userID, todoID)
	if err != nil {
		return nil, err
	}
	if t.Status == todos.StatusCompleted {
		return t, nil
	}
	s.setStatus(t, todos.StatusCompleted)
	if err := s.todoRepo.Save(dbc, t); err != nil {
		return nil, fmt.Errorf("save todo: %w", err)
	}
	return t, nil
}

func (s *todoService) Delete(ctx context.Context, userID, todoID uuid.UUID) error {
	return s.todoRepo.Delete(dbctx.Context{Ctx: ctx}, userID, todoID)
}

func (s *todoService) Stats(ctx context.Context, userID uuid.UUID) (*types.TodoStats, error) {
	all, err := s.todoRepo.List(dbctx.Context{Ctx: ctx}, userID, repos.TodoFilter{})
	if err != nil {
		return nil, err
	}
	return computeTodoStats(all, s.now()), nil
}

func computeTodoStats(all []*types.Todo, now time.Time) *types.TodoStats {
	st := &types.TodoStats{
		Total: len(all),
		ByPriority: map[todos.Priority]int{
			todos.PriorityLow:    0,
			todos.PriorityMedium: 0,
			todos.PriorityHigh:   0,
		},
	}
	for _, t := range all {
		st.ByPriority[t.Priority]++
		if t.Status == todos.StatusCompleted {
			st.Completed++
			continue
		}
		st.Pending++
		if t.DueDate != nil && t.DueDate.Before(now) {
			st.Overdue++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	return st
}

func (s *todoService) setStatus(t *types.Todo, st todos.Status) {
	if t.Status == st {
		return
	}
	t.Status = st
	if st == todos.StatusCompleted {
		now := s.now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}

func parsePriority(raw string) (todos.Priority, error) {
	p := todos.Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return todos.PriorityMedium, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: priority must be low, medium or high", pkgerrors.ErrInvalidArgument)
	}
	return p, nil
}

// applyLink sets or clears the linked entity. An empty type clears it.
func applyLink(t *types.Todo, le *LinkedEntity) error {
	if le == nil {
		return nil
	}
	typ := todos.LinkedEntityType(strings.ToLower(strings.TrimSpace(le.Type)))
	if typ == "" {
		t.LinkedEntityType = nil
		t.LinkedEntityID = nil
		return nil
	}
	if !typ.Valid() {
		return fmt.Errorf("%w: linkedEntity.type must be document, quiz or note", pkgerrors.ErrInvalidArgument)
	}
	id, err := uuid.Parse(strings.TrimSpace(le.ID))
	if err != nil {
		return fmt.Errorf("%w: linkedEntity.id must be a uuid", pkgerrors.ErrInvalidArgument)
	}
	t.LinkedEntityType = &typ
	t.LinkedEntityID = &id
	return nil
}
