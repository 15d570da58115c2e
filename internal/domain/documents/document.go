package documents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/domain/user"
)

// Document is one uploaded PDF. Artifact columns are independently nullable and
// overwritten on every regeneration.
type Document struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User          *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	FileName      string     `gorm:"column:file_name;not null" json:"fileName"`
	StorageKey    string     `gorm:"column:storage_key;not null;uniqueIndex" json:"-"`
	MimeType      string     `gorm:"column:mime_type;not null" json:"mimeType"`
	SizeBytes     int64      `gorm:"column:size_bytes;not null" json:"sizeBytes"`
	PageCount     int        `gorm:"column:page_count;not null" json:"pageCount"`
	ExtractedText *string    `gorm:"column:extracted_text" json:"-"`

	Summary         datatypes.JSON `gorm:"column:summary" json:"summary,omitempty"`
	Quiz            datatypes.JSON `gorm:"column:quiz" json:"quiz,omitempty"`
	MindMap         datatypes.JSON `gorm:"column:mind_map" json:"mindMap,omitempty"`
	Roadmap         datatypes.JSON `gorm:"column:roadmap" json:"roadmap,omitempty"`
	RoadmapProgress datatypes.JSON `gorm:"column:roadmap_progress" json:"roadmapProgress,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Document) TableName() string { return "document" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Column names for the artifact JSON fields.
const (
	ColumnSummary         = "summary"
	ColumnQuiz            = "quiz"
	ColumnMindMap         = "mind_map"
	ColumnRoadmap         = "roadmap"
	ColumnRoadmapProgress = "roadmap_progress"
	ColumnExtractedText   = "extracted_text"
)

func ArtifactColumn(t learning.ArtifactType) string {
	switch t {
	case learning.ArtifactSummary:
		return ColumnSummary
	case learning.ArtifactQuiz:
		return ColumnQuiz
	case learning.ArtifactMindMap:
		return ColumnMindMap
	case learning.ArtifactRoadmap:
		return ColumnRoadmap
	default:
		return ""
	}
}

func decode[T any](raw datatypes.JSON) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *Document) SummaryValue() (*learning.Summary, error) { return decode[learning.Summary](d.Summary) }
func (d *Document) QuizValue() (*learning.Quiz, error)       { return decode[learning.Quiz](d.Quiz) }
func (d *Document) MindMapValue() (*learning.MindMap, error) { return decode[learning.MindMap](d.MindMap) }
func (d *Document) RoadmapValue() (*learning.Roadmap, error) { return decode[learning.Roadmap](d.Roadmap) }

// ProgressValue returns an empty progress when none has been stored yet.
func (d *Document) ProgressValue() (learning.RoadmapProgress, error) {
	p, err := decode[learning.RoadmapProgress](d.RoadmapProgress)
	if err != nil || p == nil {
		return learning.RoadmapProgress{CompletedLessons: []string{}, CompletedModules: []string{}}, err
	}
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}
	if p.CompletedModules == nil {
		p.CompletedModules = []string{}
	}
	return *p, nil
}

func EncodeJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
