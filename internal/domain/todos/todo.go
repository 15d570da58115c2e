package todos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/domain/user"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

type LinkedEntityType string

const (
	LinkedDocument LinkedEntityType = "document"
	LinkedQuiz     LinkedEntityType = "quiz"
	LinkedNote     LinkedEntityType = "note"
)

func (t LinkedEntityType) Valid() bool {
	return t == LinkedDocument || t == LinkedQuiz || t == LinkedNote
}

type Todo struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"userId"`
	User             *user.User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Title            string            `gorm:"column:title;not null" json:"title"`
	Description      string            `gorm:"column:description" json:"description"`
	Priority         Priority          `gorm:"column:priority;not null;index" json:"priority"`
	DueDate          *time.Time        `gorm:"column:due_date;index" json:"dueDate,omitempty"`
	Status           Status            `gorm:"column:status;not null;index" json:"status"`
	CompletedAt      *time.Time        `gorm:"column:completed_at" json:"completedAt,omitempty"`
	LinkedEntityType *LinkedEntityType `gorm:"column:linked_entity_type;index" json:"linkedEntityType,omitempty"`
	LinkedEntityID   *uuid.UUID        `gorm:"type:uuid;column:linked_entity_id" json:"linkedEntityId,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;index" json:"createdAt"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updatedAt"`
}

func (Todo) TableName() string { return "todo" }

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Stats struct {
	Total          int              `json:"total"`
	Pending        int              `json:"pending"`
	Completed      int              `json:"completed"`
	Overdue        int              `json:"overdue"`
	ByPriority     map[Priority]int `json:"byPriority"`
	CompletionRate int              `json:"completionRate"`
}
