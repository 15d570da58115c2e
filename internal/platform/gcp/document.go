package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/learnsphere-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// OCR turns scanned PDF bytes into plain text with a Document AI OCR processor.
type OCR interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
	Close() error
}

type OCRConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

func (c OCRConfig) Enabled() bool {
	return strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.ProcessorID) != ""
}

type documentOCR struct {
	log       *logger.Logger
	cfg       OCRConfig
	docClient *documentai.DocumentProcessorClient
}

func NewDocumentOCR(ctx context.Context, log *logger.Logger, cfg OCRConfig) (OCR, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROJECT_ID or DOCUMENTAI_PROCESSOR_ID")
	}
	slog := log.With("service", "gcp.DocumentOCR")

	if strings.TrimSpace(cfg.Location) == "" {
		cfg.Location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptions()...)
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog.Info("Document AI initialized", "endpoint", endpoint)
	return &documentOCR{log: slog, cfg: cfg, docClient: c}, nil
}

func (s *documentOCR) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentOCR) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(data) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", s.cfg.ProjectID, s.cfg.Location, s.cfg.ProcessorID)
	resp, err := s.docClient.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return "", nil
	}
	text := normalizeOCRText(resp.Document.GetText())
	s.log.Debug("Document AI OCR completed", "pages", len(resp.Document.GetPages()), "chars", len(text))
	return text, nil
}
