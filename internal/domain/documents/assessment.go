package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
)

type AssessmentKind string

const (
	AssessmentPhase AssessmentKind = "phase"
	AssessmentFinal AssessmentKind = "final"
)

// AssessmentQuiz is a phase or final quiz generated from a document roadmap.
type AssessmentQuiz struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"documentId"`
	Document   *Document      `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`
	Kind       AssessmentKind `gorm:"column:kind;not null;index" json:"kind"`
	PhaseID    *string        `gorm:"column:phase_id;index" json:"phaseId,omitempty"`
	Questions  datatypes.JSON `gorm:"column:questions;not null" json:"-"`
	CreatedAt  time.Time      `gorm:"not null" json:"createdAt"`
}

func (AssessmentQuiz) TableName() string { return "assessment_quiz" }

func (q *AssessmentQuiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *AssessmentQuiz) QuestionsValue() ([]learning.Question, error) {
	out, err := decode[[]learning.Question](q.Questions)
	if err != nil || out == nil {
		return []learning.Question{}, err
	}
	return *out, nil
}

type QuizAttempt struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"userId"`
	AssessmentQuizID uuid.UUID       `gorm:"type:uuid;not null;index" json:"quizId"`
	AssessmentQuiz   *AssessmentQuiz `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssessmentQuizID;references:ID" json:"-"`
	DocumentID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"documentId"`
	Kind             AssessmentKind  `gorm:"column:kind;not null" json:"kind"`
	PhaseID          *string         `gorm:"column:phase_id" json:"phaseId,omitempty"`
	CorrectCount     int             `gorm:"column:correct_count;not null" json:"correctCount"`
	TotalQuestions   int             `gorm:"column:total_questions;not null" json:"totalQuestions"`
	Percentage       int             `gorm:"column:percentage;not null" json:"percentage"`
	Passed           bool            `gorm:"column:passed;not null" json:"passed"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"createdAt"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
