package pdftext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	assert.True(t, IsPDF([]byte("\xef\xbb\xbf%PDF-1.4")))
	assert.False(t, IsPDF([]byte("PK\x03\x04 not a pdf")))
	assert.False(t, IsPDF(nil))
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := New(logger.Nop(), nil).Extract(context.Background(), []byte("hello world"))
	assert.True(t, errors.Is(err, pkgerrors.ErrExtractionFailed))
}

func TestInspectRejectsNonPDF(t *testing.T) {
	_, err := Inspect([]byte("plain text"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", collapseWhitespace(" a\n\tb  c "))
}
