package services

import (
	"context"
	"fmt"
	"io"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/platform/pdftext"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

// TextSource loads a document's extracted text, running extraction once
// and persisting the result the first time it is needed.
type TextSource struct {
	log       *logger.Logger
	docRepo   repos.DocumentRepo
	store     storage.Store
	extractor pdftext.Extractor
}

func NewTextSource(log *logger.Logger, docRepo repos.DocumentRepo, store storage.Store, extractor pdftext.Extractor) *TextSource {
	return &TextSource{log: log.With("service", "TextSource"), docRepo: docRepo, store: store, extractor: extractor}
}

func (d *TextSource) Ensure(ctx context.Context, doc *types.Document) (string, error) {
	if doc.ExtractedText != nil {
		return *doc.ExtractedText, nil
	}
	rc, err := d.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("%w: read stored file: %v", pkgerrors.ErrExtractionFailed, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read stored file: %v", pkgerrors.ErrExtractionFailed, err)
	}
	text, err := d.extractor.Extract(ctx, data)
	if err != nil {
		d.log.Warn("Text extraction failed", "document_id", doc.ID.String(), "error", err.Error())
		return "", err
	}
	if err := d.docRepo.SetExtractedText(dbctx.Context{Ctx: ctx}, doc.ID, text); err != nil {
		return "", fmt.Errorf("persist extracted text: %w", err)
	}
	doc.ExtractedText = &text
	d.log.Info("Extracted document text", "document_id", doc.ID.String(), "chars", len(text))
	return text, nil
}
