package prompts

import (
	"errors"
	"strings"
)

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	Text          string
	FileName      string
	SummaryType   string
	LearnerLevel  string
	QuestionCount int

	// Assessments
	PhaseTitle string

	// Condense map phase
	ChunkIndex int
	ChunkCount int
}

type Validator func(Input) error

var validators = map[string]Validator{
	"text":           RequireText,
	"question_count": RequireQuestionCount,
}

func RequireText(in Input) error {
	if strings.TrimSpace(in.Text) == "" {
		return errors.New("missing Text")
	}
	return nil
}

func RequireQuestionCount(in Input) error {
	if in.QuestionCount <= 0 {
		return errors.New("QuestionCount must be positive")
	}
	return nil
}
