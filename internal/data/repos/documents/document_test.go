package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/learnsphere-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

func TestDocumentRepoOwnershipAndColumns(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewDocumentRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, db, "owner@example.com", 10)
	other := testutil.SeedUser(t, ctx, db, "other@example.com", 10)
	doc := testutil.SeedDocument(t, ctx, db, owner.ID, nil)

	if _, err := repo.GetOwned(dbc, other.ID, doc.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign GetOwned: want ErrNotFound, got %v", err)
	}

	got, err := repo.GetOwned(dbc, owner.ID, doc.ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got.ExtractedText != nil {
		t.Fatalf("expected NULL extracted text")
	}

	if err := repo.SetExtractedText(dbc, doc.ID, ""); err != nil {
		t.Fatalf("SetExtractedText: %v", err)
	}
	if err := repo.SetJSONColumn(dbc, doc.ID, "summary", datatypes.JSON(`{"short":"s"}`)); err != nil {
		t.Fatalf("SetJSONColumn: %v", err)
	}
	if err := repo.SetJSONColumn(dbc, doc.ID, "user_id", datatypes.JSON(`{}`)); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("SetJSONColumn on a non-artifact column: %v", err)
	}

	got, _ = repo.GetOwned(dbc, owner.ID, doc.ID)
	if got.ExtractedText == nil || *got.ExtractedText != "" {
		t.Fatalf("empty text must persist as non-NULL")
	}
	s, err := got.SummaryValue()
	if err != nil || s == nil || s.Short != "s" {
		t.Fatalf("SummaryValue: %v %v", s, err)
	}

	list, err := repo.ListMetadataByUser(dbc, owner.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListMetadataByUser: err=%v len=%d", err, len(list))
	}
	if list[0].Summary != nil || list[0].ExtractedText != nil {
		t.Fatalf("metadata listing must not load payload columns")
	}

	keys, err := repo.ExistingStorageKeys(dbc, []string{doc.StorageKey, "documents/x/y.pdf"})
	if err != nil || !keys[doc.StorageKey] || keys["documents/x/y.pdf"] {
		t.Fatalf("ExistingStorageKeys: %v %v", keys, err)
	}

	if err := repo.Delete(dbc, other.ID, doc.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign Delete: %v", err)
	}
	if err := repo.Delete(dbc, owner.ID, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetOwned(dbc, owner.ID, doc.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("after Delete: %v", err)
	}
}

func TestAssessmentRepos(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	quizzes := NewAssessmentQuizRepo(db, testutil.Logger(t))
	attempts := NewQuizAttemptRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "assess@example.com", 10)
	doc := testutil.SeedDocument(t, ctx, db, u.ID, nil)
	phaseID := "phase-1"

	q := &types.AssessmentQuiz{UserID: u.ID, DocumentID: doc.ID, Kind: types.AssessmentPhase, PhaseID: &phaseID, Questions: datatypes.JSON(`[]`)}
	if _, err := quizzes.Create(dbc, []*types.AssessmentQuiz{q}); err != nil {
		t.Fatalf("Create quiz: %v", err)
	}
	if _, err := quizzes.GetOwned(dbc, uuid.New(), q.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign GetOwned: %v", err)
	}

	a := &types.QuizAttempt{UserID: u.ID, AssessmentQuizID: q.ID, DocumentID: doc.ID, Kind: q.Kind, PhaseID: &phaseID, CorrectCount: 3, TotalQuestions: 4, Percentage: 75, Passed: true}
	if _, err := attempts.Create(dbc, []*types.QuizAttempt{a}); err != nil {
		t.Fatalf("Create attempt: %v", err)
	}
	rows, err := attempts.ListByDocument(dbc, u.ID, doc.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByDocument: err=%v len=%d", err, len(rows))
	}

	if err := attempts.DeleteByDocument(dbc, doc.ID); err != nil {
		t.Fatalf("DeleteByDocument attempts: %v", err)
	}
	if err := quizzes.DeleteByDocument(dbc, doc.ID); err != nil {
		t.Fatalf("DeleteByDocument quizzes: %v", err)
	}
	if rows, _ := quizzes.ListByDocument(dbc, doc.ID); len(rows) != 0 {
		t.Fatalf("expected quizzes to be gone, got %d", len(rows))
	}
}
