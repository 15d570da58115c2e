package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/domain/documents"
	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/mindmap"
	"github.com/yungbote/learnsphere-backend/internal/learning/scoring"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/platform/pdftext"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

const pdfMimeType = "application/pdf"

type UploadedFile struct {
	FileName string
	Data     []byte
}

type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, f UploadedFile) (*types.Document, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Document, error)
	// Get returns the document with its artifact columns.
	Get(ctx context.Context, userID, documentID uuid.UUID) (*types.Document, error)
	Delete(ctx context.Context, userID, documentID uuid.UUID) error
	GenerateMindMap(ctx context.Context, userID, documentID uuid.UUID) (*learning.MindMap, error)
	SaveMindMap(ctx context.Context, userID, documentID uuid.UUID, nodes []learning.MindMapNode, edges []learning.MindMapEdge) (*learning.MindMap, error)
	RenderMindMap(ctx context.Context, userID, documentID uuid.UUID, w io.Writer) error
	SubmitQuiz(ctx context.Context, userID, documentID uuid.UUID, answers []scoring.SubmittedAnswer) (*scoring.Result, error)
}

type documentService struct {
	db          *gorm.DB
	log         *logger.Logger
	docRepo     repos.DocumentRepo
	quizRepo    repos.AssessmentQuizRepo
	attemptRepo repos.QuizAttemptRepo
	store       storage.Store
	text        *TextSource
	generator   ArtifactGenerator
	maxBytes    int64
	now         func() time.Time
}

func NewDocumentService(
	db *gorm.DB,
	log *logger.Logger,
	docRepo repos.DocumentRepo,
	quizRepo repos.AssessmentQuizRepo,
	attemptRepo repos.QuizAttemptRepo,
	store storage.Store,
	text *TextSource,
	generator ArtifactGenerator,
	maxBytes int64,
) DocumentService {
	return &documentService{
		db:          db,
		log:         log.With("service", "DocumentService"),
		docRepo:     docRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		store:       store,
		text:        text,
		generator:   generator,
		maxBytes:    maxBytes,
		now:         time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, userID uuid.UUID, f UploadedFile) (*types.Document, error) {
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%w: pdf file is required", pkgerrors.ErrInvalidArgument)
	}
	if s.maxBytes > 0 && int64(len(f.Data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d MB", pkgerrors.ErrInvalidArgument, s.maxBytes>>20)
	}
	if !pdftext.IsPDF(f.Data) {
		return nil, fmt.Errorf("%w: only PDF files are accepted", pkgerrors.ErrInvalidArgument)
	}
	pages, err := pdftext.Inspect(f.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable PDF: %v", pkgerrors.ErrInvalidArgument, err)
	}

	name := strings.TrimSpace(filepath.Base(f.FileName))
	if name == "" || name == "." || name == "/" {
		name = "document.pdf"
	}
	doc := &types.Document{
		ID:        uuid.New(),
		UserID:    userID,
		FileName:  name,
		MimeType:  pdfMimeType,
		SizeBytes: int64(len(f.Data)),
		PageCount: pages,
	}
	doc.StorageKey = storage.DocumentKey(userID.String(), doc.ID.String())

	if err := s.store.Put(ctx, doc.StorageKey, bytes.NewReader(f.Data), pdfMimeType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := s.docRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Document{doc}); err != nil {
		if delErr := s.store.Delete(ctx, doc.StorageKey); delErr != nil {
			s.log.Warn("Failed to remove orphaned upload", "key", doc.StorageKey, "error", delErr.Error())
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.Ctx(ctx).Info("Document uploaded", "document_id", doc.ID.String(), "pages", pages, "size_bytes", doc.SizeBytes)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID) ([]*types.Document, error) {
	return s.docRepo.ListMetadataByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (s *documentService) Get(ctx context.Context, userID, documentID uuid.UUID) (*types.Document, error) {
	return s.docRepo.GetOwned(dbctx.Context{Ctx: ctx}, userID, documentID)
}

func (s *documentService) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		doc, err := s.docRepo.GetOwned(dbc, userID, documentID)
		if err != nil {
			return err
		}
		key = doc.StorageKey
		if err := s.attemptRepo.DeleteByDocument(dbc, doc.ID); err != nil {
			return fmt.Errorf("delete quiz attempts: %w", err)
		}
		if err := s.quizRepo.DeleteByDocument(dbc, doc.ID); err != nil {
			return fmt.Errorf("delete assessment quizzes: %w", err)
		}
		return s.docRepo.Delete(dbc, userID, doc.ID)
	})
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		// the orphan sweep job retries local files
		s.log.Warn("Failed to delete stored file", "key", key, "error", err.Error())
	}
	return nil
}

func (s *documentService) GenerateMindMap(ctx context.Context, userID, documentID uuid.UUID) (*learning.MindMap, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.docRepo.GetOwned(dbc, userID, documentID)
	if err != nil {
		return nil, err
	}
	text, err := s.text.Ensure(ctx, doc)
	if err != nil {
		return nil, err
	}
	art, err := s.generator.Generate(ctx, learning.ArtifactMindMap, text, GenerationConfig{FileName: doc.FileName})
	if err != nil {
		return nil, err
	}
	if err := s.saveMindMap(dbc, doc.ID, art.MindMap); err != nil {
		return nil, err
	}
	return art.MindMap, nil
}

func (s *documentService) SaveMindMap(ctx context.Context, userID, documentID uuid.UUID, nodes []learning.MindMapNode, edges []learning.MindMapEdge) (*learning.MindMap, error) {
	if err := validateMindMap(nodes, edges); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.docRepo.GetOwned(dbc, userID, documentID)
	if err != nil {
		return nil, err
	}
	prev, err := doc.MindMapValue()
	if err != nil {
		return nil, fmt.Errorf("decode mind map: %w", err)
	}
	mm := &learning.MindMap{
		Nodes:       nodes,
		Edges:       edges,
		Method:      learning.MindMapMethodEdited,
		GeneratedAt: s.now().UTC(),
	}
	if mm.Edges == nil {
		mm.Edges = []learning.MindMapEdge{}
	}
	if prev != nil {
		mm.Confidence = prev.Confidence
	}
	if err := s.saveMindMap(dbc, doc.ID, mm); err != nil {
		return nil, err
	}
	return mm, nil
}

func (s *documentService) RenderMindMap(ctx context.Context, userID, documentID uuid.UUID, w io.Writer) error {
	doc, err := s.docRepo.GetOwned(dbctx.Context{Ctx: ctx}, userID, documentID)
	if err != nil {
		return err
	}
	mm, err := doc.MindMapValue()
	if err != nil {
		return fmt.Errorf("decode mind map: %w", err)
	}
	if mm == nil {
		return fmt.Errorf("%w: mind map not generated", pkgerrors.ErrNotFound)
	}
	return mindmap.RenderPNG(*mm, w)
}

func (s *documentService) SubmitQuiz(ctx context.Context, userID, documentID uuid.UUID, answers []scoring.SubmittedAnswer) (*scoring.Result, error) {
	doc, err := s.docRepo.GetOwned(dbctx.Context{Ctx: ctx}, userID, documentID)
	if err != nil {
		return nil, err
	}
	quiz, err := doc.QuizValue()
	if err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}
	if quiz == nil || len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz not generated", pkgerrors.ErrNotFound)
	}
	res := scoring.Score(quiz.Questions, answers)
	return &res, nil
}

func (s *documentService) saveMindMap(dbc dbctx.Context, docID uuid.UUID, mm *learning.MindMap) error {
	raw, err := documents.EncodeJSON(mm)
	if err != nil {
		return fmt.Errorf("encode mind map: %w", err)
	}
	return s.docRepo.SetJSONColumn(dbc, docID, documents.ColumnMindMap, raw)
}

func validateMindMap(nodes []learning.MindMapNode, edges []learning.MindMapEdge) error {
	if nodes == nil {
		return fmt.Errorf("%w: nodes are required", pkgerrors.ErrInvalidArgument)
	}
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			return fmt.Errorf("%w: node id is required", pkgerrors.ErrInvalidArgument)
		}
		if _, dup := ids[id]; dup {
			return fmt.Errorf("%w: duplicate node id %q", pkgerrors.ErrInvalidArgument, id)
		}
		ids[id] = struct{}{}
	}
	edgeIDs := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("%w: edge id is required", pkgerrors.ErrInvalidArgument)
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return fmt.Errorf("%w: duplicate edge id %q", pkgerrors.ErrInvalidArgument, e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("%w: edge %q references unknown source %q", pkgerrors.ErrInvalidArgument, e.ID, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("%w: edge %q references unknown target %q", pkgerrors.ErrInvalidArgument, e.ID, e.Target)
		}
	}
	return nil
}
