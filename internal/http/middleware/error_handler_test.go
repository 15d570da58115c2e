package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/http/response"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

func serveWithError(t *testing.T, verbose bool, h gin.HandlerFunc) (int, response.ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logger.Nop(), verbose))
	r.GET("/x", h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestErrorHandlerMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: 1 required, 0 available", pkgerrors.ErrInsufficientCredits), http.StatusPaymentRequired, "insufficient_credits"},
		{fmt.Errorf("%w: summary", pkgerrors.ErrGenerationInProgress), http.StatusConflict, "conflict"},
		{pkgerrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: bad", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "validation_failed"},
		{fmt.Errorf("%w: no text", pkgerrors.ErrExtractionFailed), http.StatusUnprocessableEntity, "extraction_failed"},
		{fmt.Errorf("%w: empty", pkgerrors.ErrGenerationFailed), http.StatusBadGateway, "generation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, env := serveWithError(t, false, func(c *gin.Context) { response.Fail(c, tc.err) })
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.err.Error(), env.Error.Message)
		})
	}
}

func TestErrorHandlerMasksUnexpectedErrorsInProduction(t *testing.T) {
	boom := errors.New("pq: connection refused on 10.0.0.3")

	status, env := serveWithError(t, false, func(c *gin.Context) { response.Fail(c, boom) })
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", env.Error.Message)
	assert.Equal(t, "internal_error", env.Error.Code)

	_, env = serveWithError(t, true, func(c *gin.Context) { response.Fail(c, boom) })
	assert.Equal(t, boom.Error(), env.Error.Message)
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	status, env := serveWithError(t, false, func(c *gin.Context) { panic("nil map") })
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", env.Error.Message)
	assert.Empty(t, env.Error.Stack)

	_, env = serveWithError(t, true, func(c *gin.Context) { panic("nil map") })
	assert.Contains(t, env.Error.Message, "nil map")
	assert.NotEmpty(t, env.Error.Stack)
}
