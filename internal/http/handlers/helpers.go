package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnsphere-backend/internal/http/response"
	"github.com/yungbote/learnsphere-backend/internal/platform/apierr"
	"github.com/yungbote/learnsphere-backend/internal/platform/ctxutil"
)

// currentUser returns the authenticated user id, failing the request when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.Fail(c, apierr.Unauthenticated(""))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	return parseUUID(c, name, c.Param(name))
}

func parseUUID(c *gin.Context, field, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		response.Fail(c, apierr.Validation("invalid_id", fmt.Sprintf("%s must be a uuid", field)))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, apierr.Validation("invalid_request", err.Error()))
		return false
	}
	return true
}
