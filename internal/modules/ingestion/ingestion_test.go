package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

// lengthEmbedder maps text to a 3-d vector derived from its length.
type lengthEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (e *lengthEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		out[i] = []float32{float32(len(in)), 1, 0.5}
	}
	return out, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func admission(t *testing.T) modes.Config {
	t.Helper()
	m, ok := modes.NewCatalog().Lookup("admission")
	require.True(t, ok)
	return m
}

func TestIngestModeSplitsEmbedsAndUpserts(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("Học phí ngành Luật là 15.204.000đ cho 12 tín chỉ. ", 60)
	writeFile(t, filepath.Join(root, "admission", "hoc-phi.txt"), long)
	writeFile(t, filepath.Join(root, "admission", "nganh", "luat.md"), "# Ngành Luật\n\nMã ngành 7380101.")
	writeFile(t, filepath.Join(root, "admission", "notes.docx"), "ignored")

	store := vectorstore.NewMemory()
	emb := &lengthEmbedder{}
	p, err := New(logger.NewNop(), store, emb, Config{BatchSize: 2})
	require.NoError(t, err)

	sum, err := p.IngestMode(context.Background(), admission(t), root)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Files)
	assert.Greater(t, sum.Chunks, 2)
	assert.Equal(t, []string{"notes.docx"}, sum.Skipped)

	ok, err := store.CollectionExists(context.Background(), "vhu_admission")
	require.NoError(t, err)
	assert.True(t, ok)

	matches, err := store.Search(context.Background(), "vhu_admission", []float32{1, 1, 0.5}, 100)
	require.NoError(t, err)
	assert.Len(t, matches, sum.Chunks)
	for _, m := range matches {
		assert.LessOrEqual(t, len([]rune(m.Text)), 1000)
		assert.Contains(t, []string{"hoc-phi.txt", "nganh/luat.md"}, m.Source)
	}
}

func TestIngestModeIsRepeatable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "admission", "a.txt"), "Trường Đại học Văn Hiến tuyển sinh năm 2025.")

	store := vectorstore.NewMemory()
	p, err := New(logger.NewNop(), store, &lengthEmbedder{}, DefaultConfig())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := p.IngestMode(context.Background(), admission(t), root)
		require.NoError(t, err)
	}
	matches, err := store.Search(context.Background(), "vhu_admission", []float32{1, 1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestIngestModeWithoutFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "admission"), 0o755))

	p, err := New(logger.NewNop(), vectorstore.NewMemory(), &lengthEmbedder{}, DefaultConfig())
	require.NoError(t, err)
	_, err = p.IngestMode(context.Background(), admission(t), root)
	assert.True(t, errors.Is(err, ErrNoDocuments))
}

func TestIngestRejectsModeWithoutIndex(t *testing.T) {
	web, _ := modes.NewCatalog().Lookup("web-search")
	p, err := New(logger.NewNop(), vectorstore.NewMemory(), &lengthEmbedder{}, DefaultConfig())
	require.NoError(t, err)
	_, err = p.IngestMode(context.Background(), web, t.TempDir())
	assert.Error(t, err)
}
