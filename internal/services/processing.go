package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/domain/documents"
	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/observability"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/lease"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type ProcessingType string

const (
	ProcessSummary       ProcessingType = "summary"
	ProcessQuiz          ProcessingType = "quiz"
	ProcessMindMap       ProcessingType = "mindmap"
	ProcessRoadmap       ProcessingType = "roadmap"
	ProcessComprehensive ProcessingType = "comprehensive"

	MaxQuestionCount = 30
)

// Artifacts returns the artifact types built for t, in generation order.
func (t ProcessingType) Artifacts() []learning.ArtifactType {
	switch t {
	case ProcessSummary:
		return []learning.ArtifactType{learning.ArtifactSummary}
	case ProcessQuiz:
		return []learning.ArtifactType{learning.ArtifactQuiz}
	case ProcessMindMap:
		return []learning.ArtifactType{learning.ArtifactMindMap}
	case ProcessRoadmap:
		return []learning.ArtifactType{learning.ArtifactRoadmap}
	case ProcessComprehensive:
		return []learning.ArtifactType{learning.ArtifactSummary, learning.ArtifactQuiz, learning.ArtifactMindMap}
	default:
		return nil
	}
}

// RequiredCredits counts the model-backed artifacts t generates.
func (t ProcessingType) RequiredCredits() int {
	n := 0
	for _, a := range t.Artifacts() {
		if a.RequiresCredit() {
			n++
		}
	}
	return n
}

type ProcessOptions struct {
	SummaryType   string
	LearnerLevel  string
	QuestionCount *int
}

type ProcessResult struct {
	DocumentID      uuid.UUID         `json:"documentId"`
	ProcessingType  ProcessingType    `json:"processingType"`
	Summary         *learning.Summary `json:"summary,omitempty"`
	Quiz            *learning.Quiz    `json:"quiz,omitempty"`
	MindMap         *learning.MindMap `json:"mindMap,omitempty"`
	Roadmap         *learning.Roadmap `json:"roadmap,omitempty"`
	Credits         int               `json:"credits"`
	IsSubscribed    bool              `json:"isSubscribed"`
	CreditsConsumed int               `json:"creditsConsumed"`
}

type ArtifactSet struct {
	DocumentID uuid.UUID         `json:"documentId"`
	Summary    *learning.Summary `json:"summary,omitempty"`
	Quiz       *learning.Quiz    `json:"quiz,omitempty"`
	MindMap    *learning.MindMap `json:"mindMap,omitempty"`
	Roadmap    *learning.Roadmap `json:"roadmap,omitempty"`
}

type ProcessingService interface {
	Process(ctx context.Context, userID, documentID uuid.UUID, t ProcessingType, opts ProcessOptions) (*ProcessResult, error)
	GetArtifacts(ctx context.Context, userID, documentID uuid.UUID) (*ArtifactSet, error)
}

type processingService struct {
	log       *logger.Logger
	docRepo   repos.DocumentRepo
	credits   *creditLedger
	text      *TextSource
	generator ArtifactGenerator
	lease     lease.Lease
	leaseTTL  time.Duration
}

func NewProcessingService(
	log *logger.Logger,
	docRepo repos.DocumentRepo,
	userRepo repos.UserRepo,
	text *TextSource,
	generator ArtifactGenerator,
	leases lease.Lease,
	leaseTTL time.Duration,
) ProcessingService {
	serviceLog := log.With("service", "ProcessingService")
	if leaseTTL <= 0 {
		leaseTTL = 10 * time.Minute
	}
	return &processingService{
		log:       serviceLog,
		docRepo:   docRepo,
		credits:   newCreditLedger(serviceLog, userRepo),
		text:      text,
		generator: generator,
		lease:     leases,
		leaseTTL:  leaseTTL,
	}
}

func (s *processingService) Process(ctx context.Context, userID, documentID uuid.UUID, t ProcessingType, opts ProcessOptions) (res *ProcessResult, err error) {
	cfg, err := validateProcess(t, opts)
	if err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "processing.process",
		attribute.String("processing.type", string(t)),
		attribute.String("document.id", documentID.String()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		observability.Current().IncProcessing(string(t), processingOutcome(err))
	}()

	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.docRepo.GetOwned(dbc, userID, documentID)
	if err != nil {
		return nil, err
	}
	user, err := s.credits.load(dbc, userID)
	if err != nil {
		return nil, err
	}
	if err := s.credits.require(user, t.RequiredCredits()); err != nil {
		return nil, err
	}

	for _, a := range t.Artifacts() {
		release, ok, err := s.lease.Acquire(ctx, lease.GenerationKey(doc.ID, string(a)), s.leaseTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire generation lease: %w", err)
		}
		defer release()
		if !ok {
			return nil, fmt.Errorf("%w: %s for document %s", pkgerrors.ErrGenerationInProgress, a, doc.ID)
		}
	}

	text, err := s.text.Ensure(ctx, doc)
	if err != nil {
		return nil, err
	}
	cfg.FileName = doc.FileName

	res = &ProcessResult{DocumentID: doc.ID, ProcessingType: t}
	for _, a := range t.Artifacts() {
		if a.RequiresCredit() && res.CreditsConsumed > 0 && !user.IsSubscribed {
			// re-check against the live balance; another request may have drained it
			if user, err = s.credits.load(dbc, userID); err != nil {
				return res, err
			}
			if err := s.credits.require(user, 1); err != nil {
				return res, err
			}
		}
		art, err := s.generator.Generate(ctx, a, text, cfg)
		if err != nil {
			s.log.Ctx(ctx).Warn("Artifact generation failed", "document_id", doc.ID.String(), "artifact", string(a), "error", err.Error())
			return res, err
		}
		if err := s.persist(dbc, doc.ID, art); err != nil {
			return res, err
		}
		res.set(art)
		if !a.RequiresCredit() {
			continue
		}
		charged, err := s.credits.charge(dbc, user)
		if err != nil {
			return res, err
		}
		if !charged {
			// artifact is kept; anything left in this request is unpaid
			s.refreshBalance(dbc, userID, res)
			if remaining(t.Artifacts(), a) > 0 {
				return res, fmt.Errorf("%w: balance drained during generation", pkgerrors.ErrInsufficientCredits)
			}
			return res, nil
		}
		if !user.IsSubscribed {
			res.CreditsConsumed++
		}
	}
	s.refreshBalance(dbc, userID, res)
	s.log.Ctx(ctx).Info("Processed document",
		"document_id", doc.ID.String(),
		"processing_type", string(t),
		"credits_consumed", res.CreditsConsumed,
	)
	return res, nil
}

func (s *processingService) GetArtifacts(ctx context.Context, userID, documentID uuid.UUID) (*ArtifactSet, error) {
	doc, err := s.docRepo.GetOwned(dbctx.Context{Ctx: ctx}, userID, documentID)
	if err != nil {
		return nil, err
	}
	return artifactSetOf(doc)
}

func (s *processingService) persist(dbc dbctx.Context, docID uuid.UUID, art Artifact) error {
	raw, err := documents.EncodeJSON(art.Value())
	if err != nil {
		return fmt.Errorf("encode %s: %w", art.Type, err)
	}
	if err := s.docRepo.SetJSONColumn(dbc, docID, documents.ArtifactColumn(art.Type), raw); err != nil {
		return fmt.Errorf("persist %s: %w", art.Type, err)
	}
	return nil
}

func (s *processingService) refreshBalance(dbc dbctx.Context, userID uuid.UUID, res *ProcessResult) {
	u, err := s.credits.load(dbc, userID)
	if err != nil {
		s.log.Warn("Failed to reload credit balance", "user_id", userID.String(), "error", err.Error())
		return
	}
	res.Credits = u.Credits
	res.IsSubscribed = u.IsSubscribed
}

func (r *ProcessResult) set(a Artifact) {
	switch a.Type {
	case learning.ArtifactSummary:
		r.Summary = a.Summary
	case learning.ArtifactQuiz:
		r.Quiz = a.Quiz
	case learning.ArtifactMindMap:
		r.MindMap = a.MindMap
	case learning.ArtifactRoadmap:
		r.Roadmap = a.Roadmap
	}
}

// remaining counts credit-bearing artifacts after current in order.
func remaining(order []learning.ArtifactType, current learning.ArtifactType) int {
	n := 0
	after := false
	for _, a := range order {
		if after && a.RequiresCredit() {
			n++
		}
		if a == current {
			after = true
		}
	}
	return n
}

func artifactSetOf(doc *types.Document) (*ArtifactSet, error) {
	set := &ArtifactSet{DocumentID: doc.ID}
	var err error
	if set.Summary, err = doc.SummaryValue(); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if set.Quiz, err = doc.QuizValue(); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}
	if set.MindMap, err = doc.MindMapValue(); err != nil {
		return nil, fmt.Errorf("decode mind map: %w", err)
	}
	if set.Roadmap, err = doc.RoadmapValue(); err != nil {
		return nil, fmt.Errorf("decode roadmap: %w", err)
	}
	return set, nil
}

func validateProcess(t ProcessingType, opts ProcessOptions) (GenerationConfig, error) {
	var cfg GenerationConfig
	if len(t.Artifacts()) == 0 {
		return cfg, fmt.Errorf("%w: processingType must be one of summary, quiz, mindmap, roadmap, comprehensive", pkgerrors.ErrInvalidArgument)
	}
	cfg.SummaryType = learning.SummaryMedium
	switch st := learning.SummaryType(opts.SummaryType); st {
	case "":
	case learning.SummaryShort, learning.SummaryMedium, learning.SummaryDetailed:
		cfg.SummaryType = st
	default:
		return cfg, fmt.Errorf("%w: summaryType must be short, medium or detailed", pkgerrors.ErrInvalidArgument)
	}
	cfg.LearnerLevel = learning.LevelBeginner
	switch lv := learning.LearnerLevel(opts.LearnerLevel); lv {
	case "":
	case learning.LevelBeginner, learning.LevelIntermediate, learning.LevelAdvanced:
		cfg.LearnerLevel = lv
	default:
		return cfg, fmt.Errorf("%w: learnerLevel must be beginner, intermediate or advanced", pkgerrors.ErrInvalidArgument)
	}
	cfg.QuestionCount = DefaultQuestionCount
	if opts.QuestionCount != nil {
		if *opts.QuestionCount < 1 || *opts.QuestionCount > MaxQuestionCount {
			return cfg, fmt.Errorf("%w: questionCount must be between 1 and %d", pkgerrors.ErrInvalidArgument, MaxQuestionCount)
		}
		cfg.QuestionCount = *opts.QuestionCount
	}
	return cfg, nil
}

func processingOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, pkgerrors.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, pkgerrors.ErrGenerationInProgress):
		return "conflict"
	case errors.Is(err, pkgerrors.ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, pkgerrors.ErrGenerationFailed), errors.Is(err, pkgerrors.ErrExternalService):
		return "generation_failed"
	default:
		return "error"
	}
}
