package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/artifacts"
	"github.com/yungbote/learnsphere-backend/internal/learning/mindmap"
	"github.com/yungbote/learnsphere-backend/internal/learning/prompts"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/gemini"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

const DefaultQuestionCount = 10

type GenerationConfig struct {
	SummaryType   learning.SummaryType
	LearnerLevel  learning.LearnerLevel
	QuestionCount int
	FileName      string
}

// Artifact carries exactly one generated value, matching Type.
type Artifact struct {
	Type    learning.ArtifactType
	Summary *learning.Summary
	Quiz    *learning.Quiz
	MindMap *learning.MindMap
	Roadmap *learning.Roadmap
}

// Value returns the populated artifact for persistence.
func (a Artifact) Value() any {
	switch a.Type {
	case learning.ArtifactSummary:
		return a.Summary
	case learning.ArtifactQuiz:
		return a.Quiz
	case learning.ArtifactMindMap:
		return a.MindMap
	case learning.ArtifactRoadmap:
		return a.Roadmap
	default:
		return nil
	}
}

type ArtifactGenerator interface {
	Generate(ctx context.Context, t learning.ArtifactType, text string, cfg GenerationConfig) (Artifact, error)
	// GenerateQuestions builds assessment questions from curriculum text.
	GenerateQuestions(ctx context.Context, name prompts.PromptName, curriculum, heading string, count int) ([]learning.Question, error)
}

type artifactGenerator struct {
	log    *logger.Logger
	llm    gemini.Client
	budget prompts.Budget
	now    func() time.Time
}

func NewArtifactGenerator(log *logger.Logger, llm gemini.Client, budget prompts.Budget) ArtifactGenerator {
	return &artifactGenerator{
		log:    log.With("service", "ArtifactGenerator"),
		llm:    llm,
		budget: budget.Normalized(),
		now:    time.Now,
	}
}

func (g *artifactGenerator) Generate(ctx context.Context, t learning.ArtifactType, text string, cfg GenerationConfig) (Artifact, error) {
	cfg = withGenerationDefaults(cfg)
	if t == learning.ArtifactMindMap {
		mm := mindmap.Build(text, cfg.FileName)
		mm.GeneratedAt = g.now().UTC()
		return Artifact{Type: t, MindMap: &mm}, nil
	}

	var name prompts.PromptName
	switch t {
	case learning.ArtifactSummary:
		name = prompts.PromptSummary
	case learning.ArtifactQuiz:
		name = prompts.PromptQuiz
	case learning.ArtifactRoadmap:
		name = prompts.PromptRoadmap
	default:
		return Artifact{}, fmt.Errorf("%w: unknown artifact type %q", pkgerrors.ErrInvalidArgument, t)
	}

	fitted, err := g.fitToBudget(ctx, text, cfg.FileName)
	if err != nil {
		return Artifact{}, err
	}
	raw, err := g.call(ctx, name, prompts.Input{
		Text:          fitted,
		FileName:      cfg.FileName,
		SummaryType:   string(cfg.SummaryType),
		LearnerLevel:  string(cfg.LearnerLevel),
		QuestionCount: cfg.QuestionCount,
	})
	if err != nil {
		return Artifact{}, err
	}

	now := g.now()
	switch t {
	case learning.ArtifactSummary:
		s, err := artifacts.ParseSummary(raw, cfg.SummaryType, cfg.LearnerLevel, now)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Type: t, Summary: &s}, nil
	case learning.ArtifactQuiz:
		q, err := artifacts.ParseQuiz(raw, now)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Type: t, Quiz: &q}, nil
	default:
		rm, err := artifacts.ParseRoadmap(raw, cfg.LearnerLevel, mindmap.TitleFromFileName(cfg.FileName), now)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Type: t, Roadmap: &rm}, nil
	}
}

func (g *artifactGenerator) GenerateQuestions(ctx context.Context, name prompts.PromptName, curriculum, heading string, count int) ([]learning.Question, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	fitted, err := g.fitToBudget(ctx, curriculum, heading)
	if err != nil {
		return nil, err
	}
	raw, err := g.call(ctx, name, prompts.Input{
		Text:          fitted,
		FileName:      heading,
		PhaseTitle:    heading,
		QuestionCount: count,
	})
	if err != nil {
		return nil, err
	}
	return artifacts.ParseQuestions(raw)
}

func (g *artifactGenerator) call(ctx context.Context, name prompts.PromptName, in prompts.Input) (string, error) {
	p, err := prompts.Build(name, in)
	if err != nil {
		return "", fmt.Errorf("build %s prompt: %w", name, err)
	}
	if p.Mode == prompts.ModeText {
		return g.llm.GenerateText(ctx, p.System, p.User)
	}
	return g.llm.GenerateJSON(ctx, p.System, p.User)
}

// fitToBudget returns text unchanged when it fits the prompt budget. Longer
// text is condensed chunk by chunk and the joined notes are truncated to the
// budget if they still overflow.
func (g *artifactGenerator) fitToBudget(ctx context.Context, text, fileName string) (string, error) {
	if g.budget.Fits(text) {
		return text, nil
	}
	chunks := g.budget.Chunk(text)
	g.log.Info("Condensing long document", "chars", len(text), "chunks", len(chunks))

	notes := make([]string, len(chunks))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.budget.MapConcurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		eg.Go(func() error {
			out, err := g.call(egctx, prompts.PromptCondense, prompts.Input{
				Text:       chunk,
				FileName:   fileName,
				ChunkIndex: i + 1,
				ChunkCount: len(chunks),
			})
			if err != nil {
				return err
			}
			notes[i] = strings.TrimSpace(out)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}
	return prompts.Truncate(strings.Join(notes, "\n\n"), g.budget.CharBudget), nil
}

func withGenerationDefaults(cfg GenerationConfig) GenerationConfig {
	if cfg.SummaryType == "" {
		cfg.SummaryType = learning.SummaryMedium
	}
	if cfg.LearnerLevel == "" {
		cfg.LearnerLevel = learning.LevelBeginner
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	return cfg
}
