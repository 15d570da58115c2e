package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/gcp"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

var ErrNotPDF = errors.New("file is not a PDF")

func init() {
	api.DisableConfigDir()
}

// Extractor turns PDF bytes into plain text. Scanned documents fall back to OCR
// when one is configured; otherwise empty text is a valid result.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type extractor struct {
	log *logger.Logger
	ocr gcp.OCR
}

func New(log *logger.Logger, ocr gcp.OCR) Extractor {
	return &extractor{log: log.With("service", "PDFTextExtractor"), ocr: ocr}
}

func (e *extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrExtractionFailed, ErrNotPDF)
	}
	text, err := extractPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrExtractionFailed, err)
	}
	if text != "" || e.ocr == nil {
		return text, nil
	}

	e.log.Info("No embedded text layer, running OCR", "bytes", len(data))
	text, err = e.ocr.ExtractText(ctx, data, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("%w: ocr: %v", pkgerrors.ErrExtractionFailed, err)
	}
	return text, nil
}

// IsPDF sniffs the %PDF- magic within the first KB, as some producers prepend junk.
func IsPDF(b []byte) bool {
	head := b
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

// Inspect validates the document structure and returns its page count.
func Inspect(data []byte) (int, error) {
	if !IsPDF(data) {
		return 0, ErrNotPDF
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return n, nil
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
