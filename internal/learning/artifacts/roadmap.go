package artifacts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

// ParseRoadmap decodes a roadmap response, collapses titles and assigns
// positional ids where the model left them empty or repeated them.
func ParseRoadmap(raw string, level learning.LearnerLevel, fallbackTitle string, now time.Time) (learning.Roadmap, error) {
	var rm learning.Roadmap
	if err := decodeObject(raw, &rm); err != nil {
		return learning.Roadmap{}, err
	}
	rm.Title = collapseSpace(rm.Title)
	if rm.Title == "" {
		rm.Title = collapseSpace(fallbackTitle)
	}
	rm.LearnerLevel = level
	rm.GeneratedAt = now.UTC()
	if rm.Phases == nil {
		rm.Phases = []learning.Phase{}
	}
	if len(rm.Phases) == 0 {
		return learning.Roadmap{}, fmt.Errorf("%w: roadmap has no phases", pkgerrors.ErrGenerationFailed)
	}
	NormalizeRoadmap(&rm)
	return rm, nil
}

func NormalizeRoadmap(rm *learning.Roadmap) {
	phaseIDs := map[string]struct{}{}
	// module ids key progress across the whole roadmap
	moduleIDs := map[string]struct{}{}
	for i := range rm.Phases {
		p := &rm.Phases[i]
		p.ID = uniqueID(p.ID, "phase-"+strconv.Itoa(i+1), phaseIDs)
		p.Title = orDefault(collapseSpace(p.Title), fmt.Sprintf("Phase %d", i+1))
		p.Description = strings.TrimSpace(p.Description)
		if p.Modules == nil {
			p.Modules = []learning.Module{}
		}
		for j := range p.Modules {
			m := &p.Modules[j]
			m.ID = uniqueID(m.ID, fmt.Sprintf("module-%d-%d", i+1, j+1), moduleIDs)
			m.Title = orDefault(collapseSpace(m.Title), fmt.Sprintf("Module %d.%d", i+1, j+1))
			m.Description = strings.TrimSpace(m.Description)
			if m.Lessons == nil {
				m.Lessons = []learning.Lesson{}
			}
			lessonIDs := map[string]struct{}{}
			for k := range m.Lessons {
				l := &m.Lessons[k]
				l.ID = uniqueID(l.ID, fmt.Sprintf("lesson-%d-%d-%d", i+1, j+1, k+1), lessonIDs)
				l.Title = orDefault(collapseSpace(l.Title), fmt.Sprintf("Lesson %d", k+1))
				l.Content = strings.TrimSpace(l.Content)
				if l.DurationMinutes < 0 {
					l.DurationMinutes = 0
				}
				if l.Resources == nil {
					l.Resources = []learning.Resource{}
				}
			}
		}
	}
}

// uniqueID keeps id when it is non-empty and unused in scope, otherwise the
// positional fallback.
func uniqueID(id, fallback string, scope map[string]struct{}) string {
	id = strings.TrimSpace(id)
	if id == "" {
		id = fallback
	}
	if _, taken := scope[id]; taken {
		id = fallback
		for n := 2; ; n++ {
			if _, taken := scope[id]; !taken {
				break
			}
			id = fallback + "-" + strconv.Itoa(n)
		}
	}
	scope[id] = struct{}{}
	return id
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
