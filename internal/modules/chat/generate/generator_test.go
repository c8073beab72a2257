package generate

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type chunkStream struct {
	chunks []string
	err    error
	closed bool
}

func (s *chunkStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *chunkStream) Close() error {
	s.closed = true
	return nil
}

type fakeClient struct {
	text   string
	chunks []string
	err    error
	opts   llm.CallOptions
}

func (f *fakeClient) Generate(_ context.Context, _ string, opts ...llm.CallOption) (string, error) {
	f.opts = llm.Resolve(0.3, 512, opts...)
	return f.text, f.err
}

func (f *fakeClient) Stream(_ context.Context, _ string, opts ...llm.CallOption) (llm.Stream, error) {
	f.opts = llm.Resolve(0.3, 512, opts...)
	if f.err != nil {
		return nil, f.err
	}
	return &chunkStream{chunks: append([]string(nil), f.chunks...)}, nil
}

func (f *fakeClient) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }

func collect(t *testing.T, s Stream) []string {
	t.Helper()
	var out []string
	for {
		c, err := s.Recv()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, c)
	}
}

func TestStreamCleanedStripsIntroFromHead(t *testing.T) {
	client := &fakeClient{chunks: []string{
		"Xin chào! Tôi là MyU Bot, trợ lý tuyển sinh.\n",
		"Học phí ngành Công nghệ thông tin ",
		"là 25.000.000 đồng/học kỳ.",
		" Chúc bạn thành công.",
	}}
	g := New(logger.NewNop(), client)

	s, err := g.StreamCleaned(context.Background(), "p", "học phí CNTT")
	require.NoError(t, err)
	got := collect(t, s)

	require.Len(t, got, 3)
	assert.False(t, strings.Contains(got[0], "MyU Bot"))
	assert.Equal(t, "Học phí ngành Công nghệ thông tin", got[0])
	assert.Equal(t, "là 25.000.000 đồng/học kỳ.", got[1])
	assert.Equal(t, " Chúc bạn thành công.", got[2])
}

func TestStreamCleanedShortReplyCleanedAtEnd(t *testing.T) {
	client := &fakeClient{chunks: []string{"Trả lời:\n", "Có.", "\n\n\n\nVâng."}}
	g := New(logger.NewNop(), client)

	s, err := g.StreamCleaned(context.Background(), "p", "q")
	require.NoError(t, err)
	got := collect(t, s)

	require.Len(t, got, 1)
	assert.Equal(t, "Có.\n\nVâng.", got[0])
}

func TestStreamCleanedPropagatesError(t *testing.T) {
	boom := errors.New("model down")
	inner := &chunkStream{chunks: []string{"abc"}, err: boom}
	s := &cleanedStream{inner: inner}

	_, err := s.Recv()
	assert.ErrorIs(t, err, boom)
	require.NoError(t, s.Close())
	assert.True(t, inner.closed)
}

func TestCompleteCleansAndPassesOptions(t *testing.T) {
	client := &fakeClient{text: "Tôi là MyU Bot.\nTổng điểm: 24.5"}
	g := New(logger.NewNop(), client)

	out, err := g.Complete(context.Background(), "p", "q", llm.WithTemperature(0.7))
	require.NoError(t, err)
	assert.Equal(t, "Tổng điểm: 24.5", out)
	require.NotNil(t, client.opts.Temperature)
	assert.Equal(t, 0.7, *client.opts.Temperature)
}

func TestStreamRawErrorWrapped(t *testing.T) {
	boom := errors.New("refused")
	g := New(logger.NewNop(), &fakeClient{err: boom})
	_, err := g.StreamRaw(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
}

func TestSingleAndDrain(t *testing.T) {
	text, err := Drain(Single("Dạ, không có gì ạ!"))
	require.NoError(t, err)
	assert.Equal(t, "Dạ, không có gì ạ!", text)
}
