// Package progress tracks lesson completion against a roadmap. Module
// completion is stored; phase completion and quiz unlocks are derived.
package progress

import (
	"fmt"
	"math"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

const keySeparator = "::"

// LessonKey is the stored identity of a lesson within its module.
func LessonKey(moduleID, lessonID string) string {
	return moduleID + keySeparator + lessonID
}

type state struct {
	lessons mapset.Set[string]
	modules mapset.Set[string]
}

func load(p learning.RoadmapProgress) state {
	return state{
		lessons: mapset.NewThreadUnsafeSet(p.CompletedLessons...),
		modules: mapset.NewThreadUnsafeSet(p.CompletedModules...),
	}
}

func (s state) progress(now time.Time) learning.RoadmapProgress {
	return learning.RoadmapProgress{
		CompletedLessons: sorted(s.lessons),
		CompletedModules: sorted(s.modules),
		UpdatedAt:        now.UTC(),
	}
}

// FindModule returns the module and the phase containing it.
func FindModule(rm learning.Roadmap, moduleID string) (*learning.Phase, *learning.Module) {
	for i := range rm.Phases {
		p := &rm.Phases[i]
		for j := range p.Modules {
			if p.Modules[j].ID == moduleID {
				return p, &p.Modules[j]
			}
		}
	}
	return nil, nil
}

func FindPhase(rm learning.Roadmap, phaseID string) *learning.Phase {
	for i := range rm.Phases {
		if rm.Phases[i].ID == phaseID {
			return &rm.Phases[i]
		}
	}
	return nil
}

// Toggle flips a lesson's completion and recomputes its module.
func Toggle(rm learning.Roadmap, p learning.RoadmapProgress, moduleID, lessonID string, now time.Time) (learning.RoadmapProgress, error) {
	_, mod := FindModule(rm, moduleID)
	if mod == nil {
		return p, fmt.Errorf("%w: module %q not in roadmap", pkgerrors.ErrNotFound, moduleID)
	}
	found := false
	for _, l := range mod.Lessons {
		if l.ID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return p, fmt.Errorf("%w: lesson %q not in module %q", pkgerrors.ErrNotFound, lessonID, moduleID)
	}

	s := load(p)
	key := LessonKey(moduleID, lessonID)
	if s.lessons.Contains(key) {
		s.lessons.Remove(key)
	} else {
		s.lessons.Add(key)
	}
	if moduleDone(s, *mod) {
		s.modules.Add(mod.ID)
	} else {
		s.modules.Remove(mod.ID)
	}
	return s.progress(now), nil
}

func moduleDone(s state, m learning.Module) bool {
	if len(m.Lessons) == 0 {
		return false
	}
	for _, l := range m.Lessons {
		if !s.lessons.Contains(LessonKey(m.ID, l.ID)) {
			return false
		}
	}
	return true
}

// IsModuleComplete reports whether every lesson of m is completed.
func IsModuleComplete(m learning.Module, p learning.RoadmapProgress) bool {
	return moduleDone(load(p), m)
}

// IsPhaseComplete reports whether every module of ph is in CompletedModules.
func IsPhaseComplete(ph learning.Phase, p learning.RoadmapProgress) bool {
	if len(ph.Modules) == 0 {
		return false
	}
	modules := mapset.NewThreadUnsafeSet(p.CompletedModules...)
	for _, m := range ph.Modules {
		if !modules.Contains(m.ID) {
			return false
		}
	}
	return true
}

func IsQuizUnlocked(ph learning.Phase, p learning.RoadmapProgress) bool {
	return IsPhaseComplete(ph, p)
}

func IsFinalUnlocked(rm learning.Roadmap, p learning.RoadmapProgress) bool {
	if len(rm.Phases) == 0 {
		return false
	}
	for _, ph := range rm.Phases {
		if !IsPhaseComplete(ph, p) {
			return false
		}
	}
	return true
}

type Status struct {
	CompletedPhases      []string `json:"completedPhases"`
	UnlockedPhaseQuizzes []string `json:"unlockedPhaseQuizzes"`
	FinalQuizUnlocked    bool     `json:"finalQuizUnlocked"`
	CompletedLessons     int      `json:"completedLessons"`
	TotalLessons         int      `json:"totalLessons"`
	PercentComplete      int      `json:"percentComplete"`
}

// Snapshot derives the read-only status of p against rm. Keys for lessons no
// longer in the roadmap are ignored.
func Snapshot(rm learning.Roadmap, p learning.RoadmapProgress) Status {
	s := load(p)
	snap := Status{CompletedPhases: []string{}, UnlockedPhaseQuizzes: []string{}}
	for _, ph := range rm.Phases {
		for _, m := range ph.Modules {
			for _, l := range m.Lessons {
				snap.TotalLessons++
				if s.lessons.Contains(LessonKey(m.ID, l.ID)) {
					snap.CompletedLessons++
				}
			}
		}
		if IsPhaseComplete(ph, p) {
			snap.CompletedPhases = append(snap.CompletedPhases, ph.ID)
		}
		if IsQuizUnlocked(ph, p) {
			snap.UnlockedPhaseQuizzes = append(snap.UnlockedPhaseQuizzes, ph.ID)
		}
	}
	snap.FinalQuizUnlocked = IsFinalUnlocked(rm, p)
	if snap.TotalLessons > 0 {
		snap.PercentComplete = int(math.Round(float64(snap.CompletedLessons) / float64(snap.TotalLessons) * 100))
	}
	return snap
}

func sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
