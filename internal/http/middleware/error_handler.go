package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnsphere-backend/internal/http/response"
	"github.com/yungbote/learnsphere-backend/internal/platform/apierr"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// ErrorHandler recovers panics and renders the last error a handler recorded.
// verbose is true outside production.
func ErrorHandler(log *logger.Logger, verbose bool) gin.HandlerFunc {
	log = log.With("middleware", "ErrorHandler")
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := string(debug.Stack())
			log.Error("Panic recovered", "path", c.Request.URL.Path, "panic", fmt.Sprint(r), "stack", stack)
			if c.Writer.Written() {
				return
			}
			response.Render(c, apierr.Internal(fmt.Errorf("panic: %v", r)), stack, verbose)
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ae := apierr.From(err)
		if ae.Status == 0 || ae.Status >= 500 {
			log.Error("Request failed", "path", c.FullPath(), "code", ae.Code, "error", err.Error())
		}
		response.Render(c, ae, "", verbose)
	}
}
