package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) Client {
	t.Helper()
	c, err := NewRESTClient(logger.Nop(), Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestGenerateJSONSendsRequestAndReadsParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", body.GenerationConfig.ResponseMimeType)
		require.NotNil(t, body.SystemInstruction)
		assert.Equal(t, "be terse", body.SystemInstruction.Parts[0].Text)
		assert.Equal(t, "summarize", body.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv).GenerateJSON(context.Background(), "be terse", "summarize")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestGenerateMakesSingleAttemptOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateText(context.Background(), "", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrExternalService))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateBlockedPromptIsGenerationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateJSON(context.Background(), "", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrGenerationFailed))
}

func TestNewRESTClientRequiresKey(t *testing.T) {
	_, err := NewRESTClient(logger.Nop(), Config{})
	assert.Error(t, err)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	// "é" is two bytes; cutting at 2 would split it
	out := truncate("aéb", 2)
	assert.Equal(t, "a...", out)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "aé...", truncate("aébc", 3))
}
