package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(logger.Nop(), t.TempDir())
	require.NoError(t, err)

	key := DocumentKey("u1", "d1")
	assert.Equal(t, "documents/u1/d1.pdf", key)
	require.NoError(t, s.Put(ctx, key, strings.NewReader("%PDF-1.4"), "application/pdf"))

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "%PDF-1.4", string(b))

	keys, err := s.List(ctx, "documents/u1/")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestLocalStoreKeysCannotEscapeRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(logger.Nop(), dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "../../escape.pdf", strings.NewReader("x"), ""))

	keys, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.pdf"}, keys)
}
