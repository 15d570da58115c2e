package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/learning/scoring"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

func TestRoadmapProgressAndExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, d := env.seed(t, 1)

	_, err := env.roadmaps.GetProgress(ctx, u.ID, d.ID)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	res, err := env.processing.Process(ctx, u.ID, d.ID, ProcessRoadmap, ProcessOptions{LearnerLevel: "intermediate"})
	require.NoError(t, err)
	require.NotNil(t, res.Roadmap)
	require.Len(t, res.Roadmap.Phases, 2)

	view, err := env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "phase-1", "module-1-1", "lesson-1-1-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"module-1-1::lesson-1-1-1"}, view.Progress.CompletedLessons)
	assert.Equal(t, 1, view.Status.CompletedLessons)
	assert.Equal(t, 3, view.Status.TotalLessons)

	_, err = env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "phase-2", "module-1-1", "lesson-1-1-2")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	_, err = env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "", "module-1-1", "lesson-9")
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	md, err := env.roadmaps.Export(ctx, u.ID, d.ID, "markdown")
	require.NoError(t, err)
	assert.Equal(t, "photosynthesis-basics-roadmap.md", md.FileName)
	assert.Contains(t, string(md.Body), "- [x] Photons")
	assert.Contains(t, string(md.Body), "- [ ] Pigments")

	pdf, err := env.roadmaps.Export(ctx, u.ID, d.ID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF-")))

	_, err = env.roadmaps.Export(ctx, u.ID, d.ID, "docx")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	// toggling again unchecks
	view, err = env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "", "module-1-1", "lesson-1-1-1")
	require.NoError(t, err)
	assert.Empty(t, view.Progress.CompletedLessons)
}

func TestAssessmentUnlockAndTracker(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, d := env.seed(t, 3)

	_, err := env.processing.Process(ctx, u.ID, d.ID, ProcessRoadmap, ProcessOptions{})
	require.NoError(t, err)
	callsAfterRoadmap := env.llm.calls()

	_, err = env.assessments.CreatePhaseQuiz(ctx, u.ID, d.ID, "phase-1", 0)
	assert.True(t, errors.Is(err, pkgerrors.ErrForbidden))
	_, err = env.assessments.CreatePhaseQuiz(ctx, u.ID, d.ID, "phase-9", 0)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	assert.Equal(t, callsAfterRoadmap, env.llm.calls())

	for _, l := range []string{"lesson-1-1-1", "lesson-1-1-2"} {
		_, err = env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "phase-1", "module-1-1", l)
		require.NoError(t, err)
	}

	quiz, err := env.assessments.CreatePhaseQuiz(ctx, u.ID, d.ID, "phase-1", 2)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 2)
	require.NotNil(t, quiz.PhaseID)
	assert.Equal(t, "phase-1", *quiz.PhaseID)
	assert.Equal(t, 1, env.balance(t, u.ID))

	one := 1
	result, err := env.assessments.Submit(ctx, u.ID, quiz.ID, []scoring.SubmittedAnswer{
		{QuestionID: "q1", SelectedIndex: &one},
		{QuestionID: "q2", Answer: "oxygen"},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Analysis.Percentage)
	assert.True(t, result.Analysis.Passed)

	_, err = env.assessments.CreateFinalQuiz(ctx, u.ID, d.ID, 0)
	assert.True(t, errors.Is(err, pkgerrors.ErrForbidden))

	tr, err := env.assessments.Tracker(ctx, u.ID, d.ID)
	require.NoError(t, err)
	require.Len(t, tr.Phases, 2)
	assert.True(t, tr.Phases[0].Unlocked)
	assert.Equal(t, 1, tr.Phases[0].Attempts)
	assert.Equal(t, 100, tr.Phases[0].BestPercentage)
	assert.True(t, tr.Phases[0].Passed)
	assert.False(t, tr.Phases[1].Unlocked)
	assert.False(t, tr.Final.Unlocked)
	assert.False(t, tr.OverallPassed)

	_, err = env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "phase-2", "module-2-1", "lesson-2-1-1")
	require.NoError(t, err)
	final, err := env.assessments.CreateFinalQuiz(ctx, u.ID, d.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, final.PhaseID)
	assert.Equal(t, 0, env.balance(t, u.ID))

	_, err = env.assessments.CreatePhaseQuiz(ctx, u.ID, d.ID, "phase-2", 0)
	assert.True(t, errors.Is(err, pkgerrors.ErrInsufficientCredits))
}

func TestAssessmentSubmitForeignQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, d := env.seed(t, 2)
	other, _ := env.seed(t, 0)

	_, err := env.processing.Process(ctx, u.ID, d.ID, ProcessRoadmap, ProcessOptions{})
	require.NoError(t, err)
	for _, l := range []string{"lesson-1-1-1", "lesson-1-1-2"} {
		_, err = env.roadmaps.ToggleLesson(ctx, u.ID, d.ID, "", "module-1-1", l)
		require.NoError(t, err)
	}
	quiz, err := env.assessments.CreatePhaseQuiz(ctx, u.ID, d.ID, "phase-1", 0)
	require.NoError(t, err)

	_, err = env.assessments.Submit(ctx, other.ID, quiz.ID, nil)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}
