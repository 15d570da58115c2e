package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/yungbote/learnsphere-backend/internal/observability"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/envutil"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// Client is a blocking single-shot text generator. Implementations make exactly
// one upstream attempt per call.
type Client interface {
	// GenerateJSON asks the model for a JSON document and returns the raw text.
	GenerateJSON(ctx context.Context, system, user string) (string, error)
	GenerateText(ctx context.Context, system, user string) (string, error)
	Model() string
}

type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	RateRPS     float64
	RateBurst   int
	Temperature float64

	VertexProjectID string
	VertexRegion    string
}

func ConfigFromEnv() Config {
	return Config{
		Provider:        envutil.String("LLM_PROVIDER", "gemini"),
		APIKey:          envutil.String("GEMINI_API_KEY", ""),
		Model:           envutil.String("GEMINI_MODEL", DefaultModel),
		BaseURL:         envutil.String("GEMINI_BASE_URL", DefaultBaseURL),
		Timeout:         time.Duration(envutil.Int("GEMINI_TIMEOUT_SECONDS", 120)) * time.Second,
		RateRPS:         envutil.Float("GEMINI_RATE_LIMIT_RPS", 2),
		RateBurst:       envutil.Int("GEMINI_RATE_LIMIT_BURST", 4),
		Temperature:     envutil.Float("GEMINI_TEMPERATURE", 0.3),
		VertexProjectID: envutil.String("VERTEX_PROJECT_ID", ""),
		VertexRegion:    envutil.String("VERTEX_REGION", "us-central1"),
	}
}

// New returns the client for cfg.Provider ("gemini" or "vertex").
func New(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		return NewRESTClient(log, cfg)
	case "vertex":
		vc, err := NewVertexClient(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		return vc, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

type restClient struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func NewRESTClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &restClient{
		log:         log.With("service", "GeminiClient"),
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     newLimiter(cfg.RateRPS, cfg.RateBurst),
	}, nil
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (c *restClient) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *restClient) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, "application/json")
}

func (c *restClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, "text/plain")
}

func (c *restClient) generate(ctx context.Context, system, user, mime string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", pkgerrors.ErrExternalService, err)
	}

	temp := c.temperature
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: mime,
			Temperature:      &temp,
		},
	}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	start := time.Now()
	path := "/v1beta/models/" + c.model + ":generateContent"
	raw, err := c.doOnce(ctx, http.MethodPost, path, req)
	if err != nil {
		observability.Current().ObserveLLMRequest(c.model, "error", time.Since(start))
		c.log.Warn("Gemini request failed", "model", c.model, "error", err.Error())
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrExternalService, err)
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		observability.Current().ObserveLLMRequest(c.model, "decode_error", time.Since(start))
		return "", fmt.Errorf("%w: gemini decode error: %v", pkgerrors.ErrExternalService, err)
	}
	if resp.PromptFeedback.BlockReason != "" {
		observability.Current().ObserveLLMRequest(c.model, "blocked", time.Since(start))
		return "", fmt.Errorf("%w: prompt blocked: %s", pkgerrors.ErrGenerationFailed, resp.PromptFeedback.BlockReason)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		observability.Current().ObserveLLMRequest(c.model, "empty", time.Since(start))
		return "", fmt.Errorf("%w: empty model response", pkgerrors.ErrGenerationFailed)
	}
	observability.Current().ObserveLLMRequest(c.model, "ok", time.Since(start))
	c.log.Debug("Gemini request completed", "model", c.model, "duration_ms", time.Since(start).Milliseconds(), "chars", len(text))
	return text, nil
}

func extractText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (c *restClient) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return raw, nil
}

// truncate caps s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
