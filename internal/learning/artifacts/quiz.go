package artifacts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

const DefaultTopic = "General"

type rawQuestion struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
	Topic         string          `json:"topic"`
}

type rawQuiz struct {
	Questions []rawQuestion `json:"questions"`
}

// ParseQuiz decodes a quiz response and normalizes it: unusable questions are
// dropped, answers become option text, ids are q1..qn when missing or repeated.
func ParseQuiz(raw string, now time.Time) (learning.Quiz, error) {
	var rq rawQuiz
	if err := decodeObject(raw, &rq); err != nil {
		return learning.Quiz{}, err
	}
	questions := normalizeQuestions(rq.Questions)
	if len(questions) == 0 {
		return learning.Quiz{}, fmt.Errorf("%w: quiz has no usable questions", pkgerrors.ErrGenerationFailed)
	}
	return learning.Quiz{Questions: questions, GeneratedAt: now.UTC()}, nil
}

// ParseQuestions is ParseQuiz without the wrapper, for assessment quizzes.
func ParseQuestions(raw string) ([]learning.Question, error) {
	q, err := ParseQuiz(raw, time.Time{})
	if err != nil {
		return nil, err
	}
	return q.Questions, nil
}

func normalizeQuestions(in []rawQuestion) []learning.Question {
	out := make([]learning.Question, 0, len(in))
	for _, rq := range in {
		text := collapseSpace(firstNonEmpty(strings.TrimSpace(rq.Text), strings.TrimSpace(rq.Question)))
		options := cleanList(rq.Options)
		if text == "" || len(options) < 2 {
			continue
		}
		answer, ok := ResolveAnswer(options, rq.CorrectAnswer)
		if !ok {
			continue
		}
		topic := collapseSpace(rq.Topic)
		if topic == "" {
			topic = DefaultTopic
		}
		out = append(out, learning.Question{
			ID:            strings.TrimSpace(rq.ID),
			Text:          text,
			Options:       options,
			CorrectAnswer: answer,
			Explanation:   strings.TrimSpace(rq.Explanation),
			Difficulty:    normalizeDifficulty(rq.Difficulty),
			Topic:         topic,
		})
	}
	assignQuestionIDs(out)
	return out
}

// assignQuestionIDs renumbers every question when any id is missing or repeated.
func assignQuestionIDs(qs []learning.Question) {
	seen := make(map[string]struct{}, len(qs))
	valid := true
	for _, q := range qs {
		if q.ID == "" {
			valid = false
			break
		}
		if _, dup := seen[q.ID]; dup {
			valid = false
			break
		}
		seen[q.ID] = struct{}{}
	}
	if valid {
		return
	}
	for i := range qs {
		qs[i].ID = "q" + strconv.Itoa(i+1)
	}
}

func normalizeDifficulty(s string) learning.Difficulty {
	switch learning.Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case learning.DifficultyEasy:
		return learning.DifficultyEasy
	case learning.DifficultyHard:
		return learning.DifficultyHard
	default:
		return learning.DifficultyMedium
	}
}

// ResolveAnswer maps a model-provided answer to the text of one option. The
// answer may be a zero-based index, a numeric string, a letter A-D or the
// option text itself.
func ResolveAnswer(options []string, raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || len(options) == 0 {
		return "", false
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		return optionAt(options, idx)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return ResolveAnswerText(options, s)
}

func ResolveAnswerText(options []string, answer string) (string, bool) {
	a := strings.TrimSpace(answer)
	if a == "" {
		return "", false
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), a) {
			return o, true
		}
	}
	if n, err := strconv.Atoi(a); err == nil {
		return optionAt(options, n)
	}
	if len(a) == 1 {
		c := strings.ToUpper(a)[0]
		if c >= 'A' && c <= 'D' {
			return optionAt(options, int(c-'A'))
		}
	}
	// "B) option text" or "b. option text"
	if len(a) > 2 && (a[1] == ')' || a[1] == '.') {
		if text, ok := ResolveAnswerText(options, a[2:]); ok {
			return text, true
		}
		return ResolveAnswerText(options, a[:1])
	}
	return "", false
}

func optionAt(options []string, i int) (string, bool) {
	if i < 0 || i >= len(options) {
		return "", false
	}
	return options[i], true
}
