package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func roadmap() learning.Roadmap {
	return learning.Roadmap{
		Title: "Go",
		Phases: []learning.Phase{
			{ID: "phase-1", Title: "Basics", Modules: []learning.Module{
				{ID: "module-1-1", Lessons: []learning.Lesson{{ID: "lesson-1"}, {ID: "lesson-2"}}},
				{ID: "module-1-2", Lessons: []learning.Lesson{{ID: "lesson-1"}}},
			}},
			{ID: "phase-2", Title: "Concurrency", Modules: []learning.Module{
				{ID: "module-2-1", Lessons: []learning.Lesson{{ID: "lesson-1"}}},
			}},
		},
	}
}

func toggle(t *testing.T, rm learning.Roadmap, p learning.RoadmapProgress, mod, lesson string) learning.RoadmapProgress {
	t.Helper()
	out, err := Toggle(rm, p, mod, lesson, now)
	require.NoError(t, err)
	return out
}

func TestLessonKeyIsComposite(t *testing.T) {
	assert.Equal(t, "m::l", LessonKey("m", "l"))
	assert.NotEqual(t, LessonKey("ab", "c"), LessonKey("a", "bc"))
}

func TestDoubleToggleRestores(t *testing.T) {
	rm := roadmap()
	start := learning.RoadmapProgress{}
	start = toggle(t, rm, start, "module-1-1", "lesson-1")

	once := toggle(t, rm, start, "module-1-1", "lesson-2")
	assert.Contains(t, once.CompletedModules, "module-1-1")

	twice := toggle(t, rm, once, "module-1-1", "lesson-2")
	assert.ElementsMatch(t, start.CompletedLessons, twice.CompletedLessons)
	assert.ElementsMatch(t, start.CompletedModules, twice.CompletedModules)
}

func TestModuleCompleteIffAllLessons(t *testing.T) {
	rm := roadmap()
	mod := rm.Phases[0].Modules[0]
	p := learning.RoadmapProgress{}
	assert.False(t, IsModuleComplete(mod, p))

	p = toggle(t, rm, p, "module-1-1", "lesson-1")
	assert.False(t, IsModuleComplete(mod, p))
	assert.NotContains(t, p.CompletedModules, "module-1-1")

	p = toggle(t, rm, p, "module-1-1", "lesson-2")
	assert.True(t, IsModuleComplete(mod, p))
	assert.Equal(t, []string{"module-1-1"}, p.CompletedModules)
	assert.Equal(t, []string{"module-1-1::lesson-1", "module-1-1::lesson-2"}, p.CompletedLessons)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestSameLessonIDAcrossModules(t *testing.T) {
	rm := roadmap()
	p := toggle(t, rm, learning.RoadmapProgress{}, "module-1-2", "lesson-1")
	assert.Equal(t, []string{"module-1-2"}, p.CompletedModules)
	assert.False(t, IsModuleComplete(rm.Phases[0].Modules[0], p))
}

func TestPhaseCompletionAndUnlocks(t *testing.T) {
	rm := roadmap()
	p := learning.RoadmapProgress{}
	p = toggle(t, rm, p, "module-1-1", "lesson-1")
	p = toggle(t, rm, p, "module-1-1", "lesson-2")
	assert.False(t, IsPhaseComplete(rm.Phases[0], p))

	p = toggle(t, rm, p, "module-1-2", "lesson-1")
	assert.True(t, IsPhaseComplete(rm.Phases[0], p))
	assert.True(t, IsQuizUnlocked(rm.Phases[0], p))
	assert.False(t, IsFinalUnlocked(rm, p))

	p = toggle(t, rm, p, "module-2-1", "lesson-1")
	assert.True(t, IsFinalUnlocked(rm, p))

	snap := Snapshot(rm, p)
	assert.Equal(t, []string{"phase-1", "phase-2"}, snap.CompletedPhases)
	assert.True(t, snap.FinalQuizUnlocked)
	assert.Equal(t, 100, snap.PercentComplete)

	// un-completing one lesson removes its module and the phase with it
	p = toggle(t, rm, p, "module-1-2", "lesson-1")
	assert.NotContains(t, p.CompletedModules, "module-1-2")
	assert.False(t, IsPhaseComplete(rm.Phases[0], p))
	assert.False(t, IsFinalUnlocked(rm, p))

	snap = Snapshot(rm, p)
	assert.Equal(t, []string{"phase-2"}, snap.CompletedPhases)
	assert.Equal(t, []string{"phase-2"}, snap.UnlockedPhaseQuizzes)
	assert.Equal(t, 3, snap.CompletedLessons)
	assert.Equal(t, 4, snap.TotalLessons)
	assert.Equal(t, 75, snap.PercentComplete)
}

func TestRemovingModuleFlipsPhase(t *testing.T) {
	rm := roadmap()
	p := learning.RoadmapProgress{CompletedModules: []string{"module-1-1", "module-1-2"}}
	assert.True(t, IsPhaseComplete(rm.Phases[0], p))
	p.CompletedModules = []string{"module-1-1"}
	assert.False(t, IsPhaseComplete(rm.Phases[0], p))
}

func TestToggleUnknownIDs(t *testing.T) {
	rm := roadmap()
	_, err := Toggle(rm, learning.RoadmapProgress{}, "nope", "lesson-1", now)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	_, err = Toggle(rm, learning.RoadmapProgress{}, "module-1-1", "nope", now)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestSnapshotEmpty(t *testing.T) {
	snap := Snapshot(learning.Roadmap{}, learning.RoadmapProgress{})
	assert.Equal(t, 0, snap.PercentComplete)
	assert.NotNil(t, snap.CompletedPhases)
	assert.False(t, snap.FinalQuizUnlocked)
}

func TestFindHelpers(t *testing.T) {
	rm := roadmap()
	ph, mod := FindModule(rm, "module-2-1")
	require.NotNil(t, mod)
	assert.Equal(t, "phase-2", ph.ID)
	assert.Nil(t, FindPhase(rm, "phase-9"))
	assert.Equal(t, "Basics", FindPhase(rm, "phase-1").Title)
}
