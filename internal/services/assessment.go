package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/domain/documents"
	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/progress"
	"github.com/yungbote/learnsphere-backend/internal/learning/prompts"
	"github.com/yungbote/learnsphere-backend/internal/learning/scoring"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/lease"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// AssessmentView is an assessment quiz as shown to the learner, without answers.
type AssessmentView struct {
	ID         uuid.UUID                 `json:"id"`
	DocumentID uuid.UUID                 `json:"documentId"`
	Kind       documents.AssessmentKind  `json:"kind"`
	PhaseID    *string                   `json:"phaseId,omitempty"`
	Questions  []learning.PublicQuestion `json:"questions"`
	CreatedAt  time.Time                 `json:"createdAt"`
}

type AssessmentResult struct {
	AttemptID uuid.UUID       `json:"attemptId"`
	QuizID    uuid.UUID       `json:"quizId"`
	Analysis  *scoring.Result `json:"analysis"`
}

type TrackerEntry struct {
	PhaseID        string `json:"phaseId,omitempty"`
	Title          string `json:"title"`
	Unlocked       bool   `json:"unlocked"`
	Attempts       int    `json:"attempts"`
	BestPercentage int    `json:"bestPercentage"`
	Passed         bool   `json:"passed"`
}

type Tracker struct {
	DocumentID    uuid.UUID      `json:"documentId"`
	Phases        []TrackerEntry `json:"phases"`
	Final         TrackerEntry   `json:"final"`
	OverallPassed bool           `json:"overallPassed"`
}

type AssessmentService interface {
	CreatePhaseQuiz(ctx context.Context, userID, documentID uuid.UUID, phaseID string, questionCount int) (*AssessmentView, error)
	CreateFinalQuiz(ctx context.Context, userID, documentID uuid.UUID, questionCount int) (*AssessmentView, error)
	Submit(ctx context.Context, userID, quizID uuid.UUID, answers []scoring.SubmittedAnswer) (*AssessmentResult, error)
	Tracker(ctx context.Context, userID, documentID uuid.UUID) (*Tracker, error)
}

type assessmentService struct {
	log         *logger.Logger
	docRepo     repos.DocumentRepo
	quizRepo    repos.AssessmentQuizRepo
	attemptRepo repos.QuizAttemptRepo
	credits     *creditLedger
	generator   ArtifactGenerator
	lease       lease.Lease
	leaseTTL    time.Duration
}

func NewAssessmentService(
	log *logger.Logger,
	docRepo repos.DocumentRepo,
	quizRepo repos.AssessmentQuizRepo,
	attemptRepo repos.QuizAttemptRepo,
	userRepo repos.UserRepo,
	generator ArtifactGenerator,
	leases lease.Lease,
	leaseTTL time.Duration,
) AssessmentService {
	serviceLog := log.With("service", "AssessmentService")
	if leaseTTL <= 0 {
		leaseTTL = 10 * time.Minute
	}
	return &assessmentService{
		log:         serviceLog,
		docRepo:     docRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		credits:     newCreditLedger(serviceLog, userRepo),
		generator:   generator,
		lease:       leases,
		leaseTTL:    leaseTTL,
	}
}

func (s *assessmentService) CreatePhaseQuiz(ctx context.Context, userID, documentID uuid.UUID, phaseID string, questionCount int) (*AssessmentView, error) {
	phaseID = strings.TrimSpace(phaseID)
	if phaseID == "" {
		return nil, fmt.Errorf("%w: phaseId is required", pkgerrors.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}
	doc, rm, p, err := loadRoadmap(dbc, s.docRepo, userID, documentID)
	if err != nil {
		return nil, err
	}
	phase := progress.FindPhase(*rm, phaseID)
	if phase == nil {
		return nil, fmt.Errorf("%w: phase %q not in roadmap", pkgerrors.ErrNotFound, phaseID)
	}
	if !progress.IsQuizUnlocked(*phase, p) {
		return nil, fmt.Errorf("%w: phase not complete", pkgerrors.ErrForbidden)
	}
	return s.create(dbc, doc, documents.AssessmentPhase, &phase.ID, prompts.PromptPhaseQuiz, phase.Title, curriculumOf([]learning.Phase{*phase}), questionCount)
}

func (s *assessmentService) CreateFinalQuiz(ctx context.Context, userID, documentID uuid.UUID, questionCount int) (*AssessmentView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, rm, p, err := loadRoadmap(dbc, s.docRepo, userID, documentID)
	if err != nil {
		return nil, err
	}
	if !progress.IsFinalUnlocked(*rm, p) {
		return nil, fmt.Errorf("%w: all phases must be complete", pkgerrors.ErrForbidden)
	}
	return s.create(dbc, doc, documents.AssessmentFinal, nil, prompts.PromptFinalQuiz, rm.Title, curriculumOf(rm.Phases), questionCount)
}

func (s *assessmentService) create(
	dbc dbctx.Context,
	doc *types.Document,
	kind documents.AssessmentKind,
	phaseID *string,
	name prompts.PromptName,
	heading string,
	curriculum string,
	questionCount int,
) (*AssessmentView, error) {
	if questionCount < 0 || questionCount > MaxQuestionCount {
		return nil, fmt.Errorf("%w: questionCount must be between 1 and %d", pkgerrors.ErrInvalidArgument, MaxQuestionCount)
	}
	if questionCount == 0 {
		questionCount = DefaultQuestionCount
	}
	user, err := s.credits.load(dbc, doc.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.credits.require(user, 1); err != nil {
		return nil, err
	}

	key := string(kind) + "_quiz"
	if phaseID != nil {
		key += ":" + *phaseID
	}
	release, ok, err := s.lease.Acquire(dbc.Ctx, lease.GenerationKey(doc.ID, key), s.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire generation lease: %w", err)
	}
	defer release()
	if !ok {
		return nil, fmt.Errorf("%w: %s for document %s", pkgerrors.ErrGenerationInProgress, key, doc.ID)
	}

	questions, err := s.generator.GenerateQuestions(dbc.Ctx, name, curriculum, heading, questionCount)
	if err != nil {
		return nil, err
	}
	raw, err := documents.EncodeJSON(questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}
	quiz := &types.AssessmentQuiz{
		UserID:     doc.UserID,
		DocumentID: doc.ID,
		Kind:       kind,
		PhaseID:    phaseID,
		Questions:  raw,
	}
	if _, err := s.quizRepo.Create(dbc, []*types.AssessmentQuiz{quiz}); err != nil {
		return nil, fmt.Errorf("create assessment quiz: %w", err)
	}
	if _, err := s.credits.charge(dbc, user); err != nil {
		return nil, err
	}
	s.log.Ctx(dbc.Ctx).Info("Assessment quiz created", "document_id", doc.ID.String(), "kind", string(kind), "questions", len(questions))
	return viewOf(quiz, questions), nil
}

func (s *assessmentService) Submit(ctx context.Context, userID, quizID uuid.UUID, answers []scoring.SubmittedAnswer) (*AssessmentResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	quiz, err := s.quizRepo.GetOwned(dbc, userID, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := quiz.QuestionsValue()
	if err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	res := scoring.Score(questions, answers)
	attempt := &types.QuizAttempt{
		UserID:           userID,
		AssessmentQuizID: quiz.ID,
		DocumentID:       quiz.DocumentID,
		Kind:             quiz.Kind,
		PhaseID:          quiz.PhaseID,
		CorrectCount:     res.Score,
		TotalQuestions:   res.TotalQuestions,
		Percentage:       res.Percentage,
		Passed:           res.Passed,
	}
	if _, err := s.attemptRepo.Create(dbc, []*types.QuizAttempt{attempt}); err != nil {
		return nil, fmt.Errorf("record quiz attempt: %w", err)
	}
	return &AssessmentResult{AttemptID: attempt.ID, QuizID: quiz.ID, Analysis: &res}, nil
}

func (s *assessmentService) Tracker(ctx context.Context, userID, documentID uuid.UUID) (*Tracker, error) {
	dbc := dbctx.Context{Ctx: ctx}
	_, rm, p, err := loadRoadmap(dbc, s.docRepo, userID, documentID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.ListByDocument(dbc, userID, documentID)
	if err != nil {
		return nil, err
	}

	out := &Tracker{
		DocumentID: documentID,
		Phases:     make([]TrackerEntry, 0, len(rm.Phases)),
		Final:      TrackerEntry{Title: "Final assessment", Unlocked: progress.IsFinalUnlocked(*rm, p)},
	}
	byPhase := map[string]*TrackerEntry{}
	for _, ph := range rm.Phases {
		out.Phases = append(out.Phases, TrackerEntry{
			PhaseID:  ph.ID,
			Title:    ph.Title,
			Unlocked: progress.IsQuizUnlocked(ph, p),
		})
	}
	for i := range out.Phases {
		byPhase[out.Phases[i].PhaseID] = &out.Phases[i]
	}
	for _, a := range attempts {
		var e *TrackerEntry
		switch {
		case a.Kind == documents.AssessmentFinal:
			e = &out.Final
		case a.PhaseID != nil:
			e = byPhase[*a.PhaseID]
		}
		if e == nil {
			continue
		}
		e.Attempts++
		if a.Percentage > e.BestPercentage {
			e.BestPercentage = a.Percentage
		}
		e.Passed = e.Passed || a.Passed
	}
	out.OverallPassed = out.Final.Passed && len(out.Phases) > 0
	for _, e := range out.Phases {
		out.OverallPassed = out.OverallPassed && e.Passed
	}
	return out, nil
}

func viewOf(q *types.AssessmentQuiz, questions []learning.Question) *AssessmentView {
	public := make([]learning.PublicQuestion, 0, len(questions))
	for _, qq := range questions {
		public = append(public, qq.Public())
	}
	return &AssessmentView{
		ID:         q.ID,
		DocumentID: q.DocumentID,
		Kind:       q.Kind,
		PhaseID:    q.PhaseID,
		Questions:  public,
		CreatedAt:  q.CreatedAt,
	}
}

// curriculumOf flattens phases into the text assessment prompts are built from.
func curriculumOf(phases []learning.Phase) string {
	var b strings.Builder
	for _, ph := range phases {
		fmt.Fprintf(&b, "Phase: %s\n", ph.Title)
		if ph.Description != "" {
			fmt.Fprintf(&b, "%s\n", ph.Description)
		}
		for _, m := range ph.Modules {
			fmt.Fprintf(&b, "  Module: %s\n", m.Title)
			if m.Description != "" {
				fmt.Fprintf(&b, "  %s\n", m.Description)
			}
			for _, l := range m.Lessons {
				fmt.Fprintf(&b, "    Lesson: %s\n", l.Title)
				if c := strings.TrimSpace(l.Content); c != "" {
					fmt.Fprintf(&b, "    %s\n", c)
				}
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
