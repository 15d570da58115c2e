package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

func TestFromMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("load document: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("process: %w", pkgerrors.ErrInsufficientCredits), http.StatusPaymentRequired, "insufficient_credits"},
		{pkgerrors.ErrGenerationInProgress, http.StatusConflict, "conflict"},
		{pkgerrors.ErrExtractionFailed, http.StatusUnprocessableEntity, "extraction_failed"},
		{fmt.Errorf("quiz: %w", pkgerrors.ErrGenerationFailed), http.StatusBadGateway, "generation_failed"},
		{fmt.Errorf("gemini: %w", pkgerrors.ErrExternalService), http.StatusBadGateway, "external_service_error"},
	}
	for _, tc := range cases {
		got := From(tc.err)
		require.NotNil(t, got)
		assert.Equal(t, tc.status, got.Status, tc.err.Error())
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
		assert.True(t, got.Operational)
	}
}

func TestFromUnknownIsInternal(t *testing.T) {
	got := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.False(t, got.Operational)
	assert.Nil(t, From(nil))
}

func TestFromKeepsExistingAPIError(t *testing.T) {
	orig := Validation("invalid_type", "processingType must be one of summary, quiz, mindmap, roadmap, comprehensive")
	got := From(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, got)
	assert.Equal(t, "invalid_type", got.Code)
}
