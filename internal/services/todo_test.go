package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/domain/todos"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

func TestTodoLifecycle(t *testing.T) {
	log := testutil.Logger(t)
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "todo@example.com", 0)
	svc := NewTodoService(log, repos.NewTodoRepo(db, log))

	_, err := svc.Create(ctx, u.ID, TodoInput{Title: "   "})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	_, err = svc.Create(ctx, u.ID, TodoInput{Title: "x", Priority: "urgent"})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	_, err = svc.Create(ctx, u.ID, TodoInput{Title: "x", LinkedEntity: &LinkedEntity{Type: "document", ID: "nope"}})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	docID := uuid.New()
	past := time.Now().Add(-48 * time.Hour)
	read, err := svc.Create(ctx, u.ID, TodoInput{
		Title:        " Read chapter 2 ",
		Priority:     "HIGH",
		DueDate:      &past,
		LinkedEntity: &LinkedEntity{Type: "document", ID: docID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Read chapter 2", read.Title)
	assert.Equal(t, todos.PriorityHigh, read.Priority)
	assert.Equal(t, todos.StatusPending, read.Status)
	require.NotNil(t, read.LinkedEntityID)
	assert.Equal(t, docID, *read.LinkedEntityID)

	quiz, err := svc.Create(ctx, u.ID, TodoInput{Title: "Retake quiz"})
	require.NoError(t, err)
	assert.Equal(t, todos.PriorityMedium, quiz.Priority)

	done, err := svc.MarkDone(ctx, u.ID, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, todos.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	first := *done.CompletedAt

	again, err := svc.MarkDone(ctx, u.ID, quiz.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(*again.CompletedAt))

	pending, err := svc.List(ctx, u.ID, repos.TodoFilter{Status: todos.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, read.ID, pending[0].ID)

	_, err = svc.List(ctx, u.ID, repos.TodoFilter{Status: "later"})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	stats, err := svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 50, stats.CompletionRate)
	assert.Equal(t, 1, stats.ByPriority[todos.PriorityHigh])
	assert.Equal(t, 1, stats.ByPriority[todos.PriorityMedium])
	assert.Equal(t, 0, stats.ByPriority[todos.PriorityLow])

	reopen := "pending"
	updated, err := svc.Update(ctx, u.ID, quiz.ID, TodoPatch{Status: &reopen, LinkedEntity: &LinkedEntity{}})
	require.NoError(t, err)
	assert.Equal(t, todos.StatusPending, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	updated, err = svc.Update(ctx, u.ID, read.ID, TodoPatch{ClearDueDate: true, LinkedEntity: &LinkedEntity{}})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.LinkedEntityType)

	other := testutil.SeedUser(t, ctx, db, "other@example.com", 0)
	_, err = svc.MarkDone(ctx, other.ID, read.ID)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, u.ID, read.ID))
	all, err := svc.List(ctx, u.ID, repos.TodoFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestComputeTodoStatsEmpty(t *testing.T) {
	st := computeTodoStats(nil, time.Now())
	assert.Equal(t, 0, st.Total)
	assert.Equal(t, 0, st.CompletionRate)
	assert.Len(t, st.ByPriority, 3)

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st = computeTodoStats([]*types.Todo{
		{Priority: todos.PriorityLow, Status: todos.StatusCompleted, DueDate: &due},
		{Priority: todos.PriorityLow, Status: todos.StatusPending},
		{Priority: todos.PriorityLow, Status: todos.StatusPending, DueDate: &due},
	}, due.Add(time.Hour))
	assert.Equal(t, 33, st.CompletionRate)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 3, st.ByPriority[todos.PriorityLow])
}
