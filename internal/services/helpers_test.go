package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/learning/prompts"
	"github.com/yungbote/learnsphere-backend/internal/platform/lease"
	"github.com/yungbote/learnsphere-backend/internal/platform/pdftext"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

// universalResponse satisfies the summary, quiz, roadmap and question parsers at once.
const universalResponse = `{
  "short": "Plants turn light into sugar.",
  "medium": "Photosynthesis converts light energy into chemical energy stored in glucose.",
  "detailed": "Photosynthesis happens in chloroplasts. Light reactions make ATP and NADPH; the Calvin cycle fixes carbon.",
  "keyInsights": ["Chlorophyll absorbs light"],
  "keyTerms": [{"term": "Chlorophyll", "definition": "Green pigment"}],
  "examples": ["Leaves in sunlight"],
  "questions": [
    {"id": "q1", "text": "Where does photosynthesis happen?", "options": ["Mitochondria", "Chloroplast", "Nucleus", "Ribosome"], "correctAnswer": 1, "explanation": "Chloroplasts hold chlorophyll.", "difficulty": "easy", "topic": "Cells"},
    {"id": "q2", "text": "What gas is released?", "options": ["Oxygen", "Nitrogen", "Helium", "Argon"], "correctAnswer": "Oxygen", "difficulty": "medium", "topic": "Gases"}
  ],
  "title": "Photosynthesis Path",
  "phases": [
    {"title": "Foundations", "modules": [
      {"title": "Light", "lessons": [{"title": "Photons"}, {"title": "Pigments"}]}
    ]},
    {"title": "Carbon", "modules": [
      {"title": "Calvin Cycle", "lessons": [{"title": "Fixation"}]}
    ]}
  ]
}`

type fakeLLM struct {
	mu        sync.Mutex
	jsonCalls atomic.Int32
	textCalls atomic.Int32
	response  string
	err       error
	users     []string
}

func (f *fakeLLM) Model() string { return "fake-model" }

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	f.jsonCalls.Add(1)
	f.record(user)
	if f.err != nil {
		return "", f.err
	}
	if f.response != "" {
		return f.response, nil
	}
	return universalResponse, nil
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.textCalls.Add(1)
	f.record(user)
	if f.err != nil {
		return "", f.err
	}
	return "condensed notes about photosynthesis", nil
}

func (f *fakeLLM) record(user string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, user)
}

func (f *fakeLLM) calls() int { return int(f.jsonCalls.Load() + f.textCalls.Load()) }

type testEnv struct {
	db          *gorm.DB
	llm         *fakeLLM
	leases      lease.Lease
	store       storage.Store
	userRepo    repos.UserRepo
	docRepo     repos.DocumentRepo
	processing  ProcessingService
	documents   DocumentService
	roadmaps    RoadmapService
	assessments AssessmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)
	store, err := storage.NewLocalStore(log, t.TempDir())
	require.NoError(t, err)

	llm := &fakeLLM{}
	leases := lease.NewMemory()
	userRepo := repos.NewUserRepo(db, log)
	docRepo := repos.NewDocumentRepo(db, log)
	quizRepo := repos.NewAssessmentQuizRepo(db, log)
	attemptRepo := repos.NewQuizAttemptRepo(db, log)

	text := NewTextSource(log, docRepo, store, pdftext.New(log, nil))
	gen := NewArtifactGenerator(log, llm, prompts.Budget{})

	return &testEnv{
		db:          db,
		llm:         llm,
		leases:      leases,
		store:       store,
		userRepo:    userRepo,
		docRepo:     docRepo,
		processing:  NewProcessingService(log, docRepo, userRepo, text, gen, leases, 0),
		documents:   NewDocumentService(db, log, docRepo, quizRepo, attemptRepo, store, text, gen, 10<<20),
		roadmaps:    NewRoadmapService(log, docRepo),
		assessments: NewAssessmentService(log, docRepo, quizRepo, attemptRepo, userRepo, gen, leases, 0),
	}
}

func (e *testEnv) seed(t *testing.T, credits int) (*types.User, *types.Document) {
	t.Helper()
	ctx := context.Background()
	text := "Photosynthesis converts light energy into chemical energy. Chlorophyll in the chloroplast absorbs light energy. " +
		"The Calvin cycle fixes carbon dioxide into glucose. Light reactions produce oxygen and chemical energy."
	u := testutil.SeedUser(t, ctx, e.db, uuid.NewString()+"@example.com", credits)
	d := testutil.SeedDocument(t, ctx, e.db, u.ID, &text)
	return u, d
}

func (e *testEnv) balance(t *testing.T, userID uuid.UUID) int {
	t.Helper()
	var u types.User
	require.NoError(t, e.db.First(&u, "id = ?", userID).Error)
	return u.Credits
}

func samplePDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	for _, l := range lines {
		pdf.Cell(0, 8, l)
		pdf.Ln(8)
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

var errBoom = errors.New("boom")
