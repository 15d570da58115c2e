package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/scoring"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

func TestUploadListDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, _ := env.seed(t, 0)

	data := samplePDF(t, "Photosynthesis basics", "Chlorophyll absorbs light.")
	doc, err := env.documents.Upload(ctx, u.ID, UploadedFile{FileName: "../notes/leaf.pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "leaf.pdf", doc.FileName)
	assert.Equal(t, 1, doc.PageCount)
	assert.Equal(t, int64(len(data)), doc.SizeBytes)
	assert.Equal(t, storage.DocumentKey(u.ID.String(), doc.ID.String()), doc.StorageKey)

	rc, err := env.store.Get(ctx, doc.StorageKey)
	require.NoError(t, err)
	_ = rc.Close()

	list, err := env.documents.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, env.documents.Delete(ctx, u.ID, doc.ID))
	_, err = env.store.Get(ctx, doc.StorageKey)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
	_, err = env.documents.Get(ctx, u.ID, doc.ID)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestUploadRejectsBadFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, _ := env.seed(t, 0)

	_, err := env.documents.Upload(ctx, u.ID, UploadedFile{FileName: "a.pdf"})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	_, err = env.documents.Upload(ctx, u.ID, UploadedFile{FileName: "a.txt", Data: []byte("plain text")})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	_, err = env.documents.Upload(ctx, u.ID, UploadedFile{FileName: "a.pdf", Data: []byte("%PDF-1.4 truncated")})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
}

func TestDeleteForeignDocument(t *testing.T) {
	env := newTestEnv(t)
	_, d := env.seed(t, 0)
	other, _ := env.seed(t, 0)

	err := env.documents.Delete(context.Background(), other.ID, d.ID)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestMindMapGenerateEditRender(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, d := env.seed(t, 0)

	var buf bytes.Buffer
	err := env.documents.RenderMindMap(ctx, u.ID, d.ID, &buf)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	mm, err := env.documents.GenerateMindMap(ctx, u.ID, d.ID)
	require.NoError(t, err)
	require.NotEmpty(t, mm.Nodes)
	assert.Equal(t, learning.MindMapMethodStatistical, mm.Method)

	nodes := []learning.MindMapNode{{ID: "root", Label: "Leaf"}, {ID: "a", Label: "Light", Level: 1}}
	edges := []learning.MindMapEdge{{ID: "e-root-a", Source: "root", Target: "a"}}
	saved, err := env.documents.SaveMindMap(ctx, u.ID, d.ID, nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, learning.MindMapMethodEdited, saved.Method)
	assert.Equal(t, mm.Confidence, saved.Confidence)

	_, err = env.documents.SaveMindMap(ctx, u.ID, d.ID, nodes, []learning.MindMapEdge{{ID: "x", Source: "root", Target: "nope"}})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	require.NoError(t, env.documents.RenderMindMap(ctx, u.ID, d.ID, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	assert.Equal(t, 0, env.llm.calls())
}

func TestSubmitDocumentQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, d := env.seed(t, 1)

	_, err := env.documents.SubmitQuiz(ctx, u.ID, d.ID, nil)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	_, err = env.processing.Process(ctx, u.ID, d.ID, ProcessQuiz, ProcessOptions{})
	require.NoError(t, err)

	one := 1
	res, err := env.documents.SubmitQuiz(ctx, u.ID, d.ID, []scoring.SubmittedAnswer{
		{QuestionID: "q1", SelectedIndex: &one},
		{QuestionID: "q2", Answer: "Helium"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 50, res.Percentage)
	assert.False(t, res.Passed)
}
