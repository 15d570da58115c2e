// Package roadmap exports roadmaps as markdown checklists and PDF documents.
package roadmap

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/progress"
)

// ToMarkdown renders rm as a checklist, ticking the lessons completed in p.
func ToMarkdown(rm learning.Roadmap, p learning.RoadmapProgress) string {
	done := mapset.NewThreadUnsafeSet(p.CompletedLessons...)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", oneLine(rm.Title))
	for i, ph := range rm.Phases {
		fmt.Fprintf(&b, "\n## Phase %d: %s\n", i+1, oneLine(ph.Title))
		if d := strings.TrimSpace(ph.Description); d != "" {
			fmt.Fprintf(&b, "\n%s\n", d)
		}
		for j, m := range ph.Modules {
			fmt.Fprintf(&b, "\n### Module %d.%d: %s\n\n", i+1, j+1, oneLine(m.Title))
			for _, l := range m.Lessons {
				box := " "
				if done.Contains(progress.LessonKey(m.ID, l.ID)) {
					box = "x"
				}
				fmt.Fprintf(&b, "- [%s] %s\n", box, oneLine(l.Title))
			}
		}
	}
	return b.String()
}

var (
	// trailing blanks are trimmed before matching, so empty titles lose their separator space
	phaseHeading  = regexp.MustCompile(`^## Phase \d+: ?(.*)$`)
	moduleHeading = regexp.MustCompile(`^### Module \d+\.\d+: ?(.*)$`)
	lessonItem    = regexp.MustCompile(`^- \[( |x|X)\] ?(.*)$`)
)

// ParseMarkdown reads back the structure written by ToMarkdown. Ids are
// positional; titles are kept verbatim. The second return holds the indexes
// (phase, module, lesson) of checked lessons.
func ParseMarkdown(md string) (learning.Roadmap, [][3]int, error) {
	var rm learning.Roadmap
	var checked [][3]int
	sc := bufio.NewScanner(strings.NewReader(md))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	sawTitle := false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case !sawTitle && (line == "#" || strings.HasPrefix(line, "# ")):
			rm.Title = strings.TrimPrefix(strings.TrimPrefix(line, "#"), " ")
			sawTitle = true
		case phaseHeading.MatchString(line):
			rm.Phases = append(rm.Phases, learning.Phase{
				ID:      fmt.Sprintf("phase-%d", len(rm.Phases)+1),
				Title:   phaseHeading.FindStringSubmatch(line)[1],
				Modules: []learning.Module{},
			})
		case moduleHeading.MatchString(line):
			ph := lastPhase(&rm)
			if ph == nil {
				return rm, nil, fmt.Errorf("module heading before any phase: %q", line)
			}
			ph.Modules = append(ph.Modules, learning.Module{
				ID:      fmt.Sprintf("module-%d-%d", len(rm.Phases), len(ph.Modules)+1),
				Title:   moduleHeading.FindStringSubmatch(line)[1],
				Lessons: []learning.Lesson{},
			})
		case lessonItem.MatchString(line):
			ph := lastPhase(&rm)
			if ph == nil || len(ph.Modules) == 0 {
				return rm, nil, fmt.Errorf("lesson outside a module: %q", line)
			}
			m := &ph.Modules[len(ph.Modules)-1]
			sub := lessonItem.FindStringSubmatch(line)
			m.Lessons = append(m.Lessons, learning.Lesson{
				ID:        fmt.Sprintf("lesson-%d-%d-%d", len(rm.Phases), len(ph.Modules), len(m.Lessons)+1),
				Title:     sub[2],
				Resources: []learning.Resource{},
			})
			if sub[1] != " " {
				checked = append(checked, [3]int{len(rm.Phases) - 1, len(ph.Modules) - 1, len(m.Lessons) - 1})
			}
		case strings.TrimSpace(line) != "":
			if ph := lastPhase(&rm); ph != nil && len(ph.Modules) == 0 {
				if ph.Description != "" {
					ph.Description += "\n"
				}
				ph.Description += line
			}
		}
	}
	if err := sc.Err(); err != nil {
		return rm, nil, err
	}
	if !sawTitle {
		return rm, nil, fmt.Errorf("missing roadmap title")
	}
	return rm, checked, nil
}

func lastPhase(rm *learning.Roadmap) *learning.Phase {
	if len(rm.Phases) == 0 {
		return nil
	}
	return &rm.Phases[len(rm.Phases)-1]
}

// oneLine keeps headings on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
