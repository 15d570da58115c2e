package lease

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

func TestGenerationKey(t *testing.T) {
	id := uuid.MustParse("3f0c3c1e-7a4d-4b43-9a11-0d6f5f0f1a2b")
	assert.Equal(t, "learnsphere:gen:3f0c3c1e-7a4d-4b43-9a11-0d6f5f0f1a2b:quiz", GenerationKey(id, "quiz"))
}

func exerciseLease(t *testing.T, l Lease, key string) {
	t.Helper()
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	release()
	release()

	release2, ok, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestMemoryLease(t *testing.T) {
	exerciseLease(t, NewMemory(), "learnsphere:gen:test:summary")
}

func TestMemoryLeaseExpires(t *testing.T) {
	m := NewMemory().(*memoryLease)
	now := time.Now()
	m.now = func() time.Time { return now }

	_, ok, _ := m.Acquire(context.Background(), "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = m.Acquire(context.Background(), "k", time.Second)
	assert.True(t, ok, "expired holder must not block")
}

func TestRedisLease(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis lease tests")
	}
	rdb, err := NewRedisClient(context.Background(), addr)
	require.NoError(t, err)
	defer rdb.Close()

	exerciseLease(t, NewRedis(logger.Nop(), rdb), "learnsphere:gen:test:"+uuid.NewString())
}
