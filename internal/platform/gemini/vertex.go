package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/time/rate"

	"github.com/yungbote/learnsphere-backend/internal/observability"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// VertexClient serves the same Client contract through Vertex AI using
// application default credentials.
type VertexClient struct {
	log         *logger.Logger
	base        *genai.Client
	model       string
	temperature float32
	limiter     *rate.Limiter
}

func NewVertexClient(ctx context.Context, log *logger.Logger, cfg Config) (*VertexClient, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.VertexProjectID) == "" {
		return nil, fmt.Errorf("missing VERTEX_PROJECT_ID")
	}
	region := strings.TrimSpace(cfg.VertexRegion)
	if region == "" {
		region = "us-central1"
	}
	base, err := genai.NewClient(ctx, cfg.VertexProjectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &VertexClient{
		log:         log.With("service", "VertexGeminiClient"),
		base:        base,
		model:       model,
		temperature: float32(cfg.Temperature),
		limiter:     newLimiter(cfg.RateRPS, cfg.RateBurst),
	}, nil
}

func (c *VertexClient) Model() string { return c.model }

func (c *VertexClient) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

func (c *VertexClient) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, "application/json")
}

func (c *VertexClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, "text/plain")
}

func (c *VertexClient) generate(ctx context.Context, system, user, mime string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", pkgerrors.ErrExternalService, err)
	}

	m := c.base.GenerativeModel(c.model)
	if strings.TrimSpace(system) != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: mime,
		Temperature:      genai.Ptr[float32](c.temperature),
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		observability.Current().ObserveLLMRequest(c.model, "error", time.Since(start))
		c.log.Warn("Vertex request failed", "model", c.model, "error", err.Error())
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrExternalService, err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		observability.Current().ObserveLLMRequest(c.model, "blocked", time.Since(start))
		return "", fmt.Errorf("%w: prompt blocked: %s", pkgerrors.ErrGenerationFailed, resp.PromptFeedback.BlockReason.String())
	}

	text := vertexText(resp)
	if text == "" {
		observability.Current().ObserveLLMRequest(c.model, "empty", time.Since(start))
		return "", fmt.Errorf("%w: empty model response", pkgerrors.ErrGenerationFailed)
	}
	observability.Current().ObserveLLMRequest(c.model, "ok", time.Since(start))
	return text, nil
}

func vertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if txt, ok := p.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
