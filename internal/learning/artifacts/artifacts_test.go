package artifacts

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/progress"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`  {"a":1} `))
}

func TestOutermostObject(t *testing.T) {
	got, ok := OutermostObject(`Sure! {"a":{"b":"}"},"c":[1]} trailing {"x":1}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":"}"},"c":[1]}`, got)

	_, ok = OutermostObject(`no json here`)
	assert.False(t, ok)
	_, ok = OutermostObject(`{"unterminated": 1`)
	assert.False(t, ok)
}

func TestParseSummaryFillsDefaults(t *testing.T) {
	raw := "```json\n{\"medium\":\"  Middle text. \",\"keyTerms\":[{\"term\":\"\"},{\"term\":\"ATP\",\"definition\":\"energy\"}]}\n```"
	s, err := ParseSummary(raw, learning.SummaryMedium, learning.LevelBeginner, now)
	require.NoError(t, err)
	assert.Equal(t, "Middle text.", s.Short)
	assert.Equal(t, "Middle text.", s.Medium)
	assert.Equal(t, "Middle text.", s.Detailed)
	assert.NotNil(t, s.KeyInsights)
	assert.Empty(t, s.KeyInsights)
	assert.NotNil(t, s.Examples)
	assert.Equal(t, []learning.KeyTerm{{Term: "ATP", Definition: "energy"}}, s.KeyTerms)
	assert.Equal(t, learning.SummaryMedium, s.SummaryType)
	assert.Equal(t, now, s.GeneratedAt)
}

func TestParseSummaryRejectsEmptyAndGarbage(t *testing.T) {
	_, err := ParseSummary(`{"short":" "}`, learning.SummaryShort, learning.LevelBeginner, now)
	assert.True(t, errors.Is(err, pkgerrors.ErrGenerationFailed))

	_, err = ParseSummary(`I cannot help with that`, learning.SummaryShort, learning.LevelBeginner, now)
	assert.True(t, errors.Is(err, pkgerrors.ErrGenerationFailed))
}

func TestResolveAnswer(t *testing.T) {
	opts := []string{"Mitochondria", "Nucleus", "Ribosome", "Golgi"}
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`1`, "Nucleus", true},
		{`"2"`, "Ribosome", true},
		{`"C"`, "Ribosome", true},
		{`"d"`, "Golgi", true},
		{`" nucleus "`, "Nucleus", true},
		{`"B) Nucleus"`, "Nucleus", true},
		{`"Chloroplast"`, "", false},
		{`7`, "", false},
		{`-1`, "", false},
		{`null`, "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveAnswer(opts, json.RawMessage(tc.raw))
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseQuizNormalizes(t *testing.T) {
	raw := `{"questions":[
		{"text":"Powerhouse of the cell?","options":["Mitochondria","Nucleus"],"correctAnswer":0,"difficulty":"EASY"},
		{"question":"Holds DNA?","options":["Mitochondria","Nucleus"],"correctAnswer":"B","topic":"Cells"},
		{"text":"Only one option","options":["A"],"correctAnswer":0},
		{"text":"Unresolvable","options":["x","y"],"correctAnswer":"z"},
		{"text":"","options":["x","y"],"correctAnswer":0}
	]}`
	q, err := ParseQuiz(raw, now)
	require.NoError(t, err)
	require.Len(t, q.Questions, 2)

	first := q.Questions[0]
	assert.Equal(t, "q1", first.ID)
	assert.Equal(t, "Mitochondria", first.CorrectAnswer)
	assert.Equal(t, learning.DifficultyEasy, first.Difficulty)
	assert.Equal(t, DefaultTopic, first.Topic)

	second := q.Questions[1]
	assert.Equal(t, "q2", second.ID)
	assert.Equal(t, "Holds DNA?", second.Text)
	assert.Equal(t, "Nucleus", second.CorrectAnswer)
	assert.Equal(t, learning.DifficultyMedium, second.Difficulty)
	assert.Equal(t, "Cells", second.Topic)
}

func TestParseQuizKeepsValidIDs(t *testing.T) {
	raw := `{"questions":[
		{"id":"a","text":"One?","options":["x","y"],"correctAnswer":"x"},
		{"id":"b","text":"Two?","options":["x","y"],"correctAnswer":"y"}
	]}`
	q, err := ParseQuiz(raw, now)
	require.NoError(t, err)
	assert.Equal(t, "a", q.Questions[0].ID)
	assert.Equal(t, "b", q.Questions[1].ID)

	dup := `{"questions":[
		{"id":"a","text":"One?","options":["x","y"],"correctAnswer":"x"},
		{"id":"a","text":"Two?","options":["x","y"],"correctAnswer":"y"}
	]}`
	q, err = ParseQuiz(dup, now)
	require.NoError(t, err)
	assert.Equal(t, "q1", q.Questions[0].ID)
	assert.Equal(t, "q2", q.Questions[1].ID)
}

func TestParseQuizNoQuestions(t *testing.T) {
	_, err := ParseQuiz(`{"questions":[{"text":"x","options":["a"],"correctAnswer":0}]}`, now)
	assert.True(t, errors.Is(err, pkgerrors.ErrGenerationFailed))
}

func TestParseRoadmapAssignsIDs(t *testing.T) {
	raw := `{"title":"  Cell   Biology ","phases":[
		{"title":"Basics","modules":[
			{"title":"Structure","lessons":[{"title":"Membranes"},{"id":"x","title":"Organelles"},{"id":"x","title":"  Dup  id "}]},
			{"title":"Energy"}
		]},
		{"id":"p2","title":"Advanced"}
	]}`
	rm, err := ParseRoadmap(raw, learning.LevelIntermediate, "fallback", now)
	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", rm.Title)
	assert.Equal(t, learning.LevelIntermediate, rm.LearnerLevel)
	require.Len(t, rm.Phases, 2)

	p1 := rm.Phases[0]
	assert.Equal(t, "phase-1", p1.ID)
	assert.Equal(t, "module-1-1", p1.Modules[0].ID)
	assert.Equal(t, "lesson-1-1-1", p1.Modules[0].Lessons[0].ID)
	assert.Equal(t, "x", p1.Modules[0].Lessons[1].ID)
	assert.Equal(t, "lesson-1-1-3", p1.Modules[0].Lessons[2].ID)
	assert.Equal(t, "Dup id", p1.Modules[0].Lessons[2].Title)
	assert.NotNil(t, p1.Modules[0].Lessons[0].Resources)
	assert.NotNil(t, p1.Modules[1].Lessons)
	assert.Empty(t, p1.Modules[1].Lessons)

	assert.Equal(t, "p2", rm.Phases[1].ID)
	assert.NotNil(t, rm.Phases[1].Modules)
}

func TestParseRoadmapFallbackTitleAndEmpty(t *testing.T) {
	rm, err := ParseRoadmap(`{"phases":[{"title":"Only"}]}`, learning.LevelBeginner, "notes", now)
	require.NoError(t, err)
	assert.Equal(t, "notes", rm.Title)

	_, err = ParseRoadmap(`{"title":"x","phases":[]}`, learning.LevelBeginner, "", now)
	assert.True(t, errors.Is(err, pkgerrors.ErrGenerationFailed))
}

func TestParseRoadmapModuleIDsUniqueAcrossPhases(t *testing.T) {
	raw := `{"title":"Go","phases":[
		{"id":"p1","title":"One","modules":[{"id":"m1","title":"A","lessons":[{"id":"l1","title":"x"}]}]},
		{"id":"p2","title":"Two","modules":[{"id":"m1","title":"B","lessons":[{"id":"l1","title":"y"}]}]}
	]}`
	rm, err := ParseRoadmap(raw, learning.LevelBeginner, "", now)
	require.NoError(t, err)
	assert.Equal(t, "m1", rm.Phases[0].Modules[0].ID)
	assert.Equal(t, "module-2-1", rm.Phases[1].Modules[0].ID)

	p, err := progress.Toggle(rm, learning.RoadmapProgress{}, "m1", "l1", now)
	require.NoError(t, err)
	assert.True(t, progress.IsPhaseComplete(rm.Phases[0], p))
	assert.False(t, progress.IsPhaseComplete(rm.Phases[1], p))

	ph, _ := progress.FindModule(rm, "module-2-1")
	require.NotNil(t, ph)
	assert.Equal(t, "p2", ph.ID)
	p, err = progress.Toggle(rm, p, "module-2-1", "l1", now)
	require.NoError(t, err)
	assert.True(t, progress.IsPhaseComplete(rm.Phases[1], p))
}

func TestParseRoadmapDefaultsEmptyTitles(t *testing.T) {
	raw := `{"title":"Go","phases":[{"title":" ","modules":[{"lessons":[{"title":""},{"title":"Real"}]}]}]}`
	rm, err := ParseRoadmap(raw, learning.LevelBeginner, "", now)
	require.NoError(t, err)
	assert.Equal(t, "Phase 1", rm.Phases[0].Title)
	assert.Equal(t, "Module 1.1", rm.Phases[0].Modules[0].Title)
	assert.Equal(t, "Lesson 1", rm.Phases[0].Modules[0].Lessons[0].Title)
	assert.Equal(t, "Real", rm.Phases[0].Modules[0].Lessons[1].Title)
}
