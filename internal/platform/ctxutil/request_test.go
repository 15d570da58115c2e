package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))

	uid := uuid.New()
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1", RequestID: "r-1"})
	ctx = WithRequestData(ctx, &RequestData{TokenString: "secret", UserID: uid})

	assert.Equal(t, []interface{}{"trace_id", "t-1", "request_id", "r-1", "user_id", uid.String()}, LogFields(ctx))
	assert.Equal(t, "r-1", GetTraceData(ctx).RequestID)
	assert.Nil(t, GetRequestData(nil))
}
