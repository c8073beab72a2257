package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

func TestKeyNormalisation(t *testing.T) {
	assert.Equal(t, "admission:học phí ngành luật", Key(modes.Admission, "  Học   phí\tngành LUẬT \n"))
	assert.NotEqual(t, Key(modes.Admission, "x"), Key(modes.StudentSupport, "x"))
}

func newBadger(t *testing.T) *badgerBackend {
	t.Helper()
	b, err := NewBadger(logger.NewNop(), BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestAnswerCacheRoundTripAndStats(t *testing.T) {
	ctx := context.Background()
	c := NewAnswerCache(logger.NewNop(), newBadger(t), nil)

	_, ok := c.Get(ctx, modes.Admission, "Địa chỉ trường?")
	assert.False(t, ok)

	c.Set(ctx, modes.Admission, "Địa chỉ trường?", "613 Âu Cơ, Tân Phú")
	got, ok := c.Get(ctx, modes.Admission, "  địa chỉ   trường? ")
	require.True(t, ok)
	assert.Equal(t, "613 Âu Cơ, Tân Phú", got)

	_, ok = c.Get(ctx, modes.StudentSupport, "Địa chỉ trường?")
	assert.False(t, ok)

	assert.Equal(t, Stats{Hits: 1, Misses: 2, Sets: 1}, c.Stats())
}

func TestAnswerCacheSkipsEmptyAnswersAndUnknownModes(t *testing.T) {
	ctx := context.Background()
	c := NewAnswerCache(logger.NewNop(), newBadger(t), map[modes.Mode]time.Duration{modes.Admission: time.Hour})

	c.Set(ctx, modes.Admission, "q", "   ")
	c.Set(ctx, modes.WebSearch, "q", "answer")
	assert.Equal(t, int64(0), c.Stats().Sets)
}

func TestBadgerExpiry(t *testing.T) {
	ctx := context.Background()
	b := newBadger(t)
	require.NoError(t, b.Set(ctx, "k", "v", time.Second))
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(1100 * time.Millisecond)
	_, ok, err = b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}
func (failingBackend) Set(context.Context, string, string, time.Duration) error {
	return errors.New("down")
}
func (failingBackend) Close() error { return nil }

func TestAnswerCacheBackendErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	c := NewAnswerCache(logger.NewNop(), failingBackend{}, nil)
	c.Set(ctx, modes.Admission, "q", "a")
	_, ok := c.Get(ctx, modes.Admission, "q")
	assert.False(t, ok)
	assert.Equal(t, int64(2), c.Stats().Errors)
}

func TestDisabledCache(t *testing.T) {
	var c *AnswerCache
	_, ok := c.Get(context.Background(), modes.Admission, "q")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, c.Stats())
	assert.NoError(t, c.Close())
}
