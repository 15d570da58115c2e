package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnsphere-backend/internal/platform/apierr"
	"github.com/yungbote/learnsphere-backend/internal/platform/ctxutil"
)

const maskedMessage = "internal server error"

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
	Stack     string `json:"stack,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Fail hands err to the error handler middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Render writes ae as the error envelope. Without verbose, non-operational
// errors are masked and stacks are dropped.
func Render(c *gin.Context, ae *apierr.Error, stack string, verbose bool) {
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	body := APIError{Message: ae.Error(), Code: ae.Code}
	if body.Code == "" {
		body.Code = "internal_error"
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		body.RequestID = td.RequestID
	}
	switch {
	case verbose:
		body.Stack = stack
	case !ae.Operational:
		body.Message = maskedMessage
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}
