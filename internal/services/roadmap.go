package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/domain/documents"
	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/mindmap"
	"github.com/yungbote/learnsphere-backend/internal/learning/progress"
	"github.com/yungbote/learnsphere-backend/internal/learning/roadmap"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type ProgressView struct {
	Progress learning.RoadmapProgress `json:"progress"`
	Status   progress.Status          `json:"status"`
}

type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

type RoadmapService interface {
	ToggleLesson(ctx context.Context, userID, documentID uuid.UUID, phaseID, moduleID, lessonID string) (*ProgressView, error)
	GetProgress(ctx context.Context, userID, documentID uuid.UUID) (*ProgressView, error)
	Export(ctx context.Context, userID, documentID uuid.UUID, format string) (*ExportFile, error)
}

type roadmapService struct {
	log     *logger.Logger
	docRepo repos.DocumentRepo
	now     func() time.Time
}

func NewRoadmapService(log *logger.Logger, docRepo repos.DocumentRepo) RoadmapService {
	return &roadmapService{
		log:     log.With("service", "RoadmapService"),
		docRepo: docRepo,
		now:     time.Now,
	}
}

// loadRoadmap returns the owned document's roadmap and progress.
func loadRoadmap(dbc dbctx.Context, docRepo repos.DocumentRepo, userID, documentID uuid.UUID) (*types.Document, *learning.Roadmap, learning.RoadmapProgress, error) {
	doc, err := docRepo.GetOwned(dbc, userID, documentID)
	if err != nil {
		return nil, nil, learning.RoadmapProgress{}, err
	}
	rm, err := doc.RoadmapValue()
	if err != nil {
		return nil, nil, learning.RoadmapProgress{}, fmt.Errorf("decode roadmap: %w", err)
	}
	if rm == nil {
		return nil, nil, learning.RoadmapProgress{}, fmt.Errorf("%w: roadmap not generated", pkgerrors.ErrNotFound)
	}
	p, err := doc.ProgressValue()
	if err != nil {
		return nil, nil, learning.RoadmapProgress{}, fmt.Errorf("decode roadmap progress: %w", err)
	}
	return doc, rm, p, nil
}

func (s *roadmapService) ToggleLesson(ctx context.Context, userID, documentID uuid.UUID, phaseID, moduleID, lessonID string) (*ProgressView, error) {
	moduleID, lessonID, phaseID = strings.TrimSpace(moduleID), strings.TrimSpace(lessonID), strings.TrimSpace(phaseID)
	if moduleID == "" || lessonID == "" {
		return nil, fmt.Errorf("%w: moduleId and lessonId are required", pkgerrors.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}
	doc, rm, p, err := loadRoadmap(dbc, s.docRepo, userID, documentID)
	if err != nil {
		return nil, err
	}
	if phaseID != "" {
		ph, mod := progress.FindModule(*rm, moduleID)
		if mod != nil && ph.ID != phaseID {
			return nil, fmt.Errorf("%w: module %q is not in phase %q", pkgerrors.ErrInvalidArgument, moduleID, phaseID)
		}
	}
	next, err := progress.Toggle(*rm, p, moduleID, lessonID, s.now())
	if err != nil {
		return nil, err
	}
	raw, err := documents.EncodeJSON(next)
	if err != nil {
		return nil, fmt.Errorf("encode roadmap progress: %w", err)
	}
	if err := s.docRepo.SetJSONColumn(dbc, doc.ID, documents.ColumnRoadmapProgress, raw); err != nil {
		return nil, err
	}
	return &ProgressView{Progress: next, Status: progress.Snapshot(*rm, next)}, nil
}

func (s *roadmapService) GetProgress(ctx context.Context, userID, documentID uuid.UUID) (*ProgressView, error) {
	_, rm, p, err := loadRoadmap(dbctx.Context{Ctx: ctx}, s.docRepo, userID, documentID)
	if err != nil {
		return nil, err
	}
	return &ProgressView{Progress: p, Status: progress.Snapshot(*rm, p)}, nil
}

func (s *roadmapService) Export(ctx context.Context, userID, documentID uuid.UUID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "markdown"
	}
	if format != "markdown" && format != "md" && format != "pdf" {
		return nil, fmt.Errorf("%w: format must be markdown or pdf", pkgerrors.ErrInvalidArgument)
	}
	doc, rm, p, err := loadRoadmap(dbctx.Context{Ctx: ctx}, s.docRepo, userID, documentID)
	if err != nil {
		return nil, err
	}
	base := exportBaseName(doc.FileName)
	if format == "pdf" {
		var buf bytes.Buffer
		if err := roadmap.ToPDF(*rm, p, &buf); err != nil {
			return nil, err
		}
		return &ExportFile{FileName: base + "-roadmap.pdf", ContentType: "application/pdf", Body: buf.Bytes()}, nil
	}
	return &ExportFile{
		FileName:    base + "-roadmap.md",
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte(roadmap.ToMarkdown(*rm, p)),
	}, nil
}

func exportBaseName(fileName string) string {
	t := strings.ToLower(strings.ReplaceAll(mindmap.TitleFromFileName(fileName), " ", "-"))
	var b strings.Builder
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
