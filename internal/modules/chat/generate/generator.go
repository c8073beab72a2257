package generate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// firstChunkRunes is how much output is buffered before the first cleaned
// chunk is released.
const firstChunkRunes = 50

type Generator struct {
	log    *logger.Logger
	client llm.Client
}

func New(log *logger.Logger, client llm.Client) *Generator {
	return &Generator{log: log.With("component", "Generator"), client: client}
}

// Raw is a one-shot completion without post-processing. Used for
// extraction and for formatting tool results.
func (g *Generator) Raw(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error) {
	out, err := g.client.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}

// Complete is a one-shot completion with the full output cleaned.
func (g *Generator) Complete(ctx context.Context, prompt, question string, opts ...llm.CallOption) (string, error) {
	out, err := g.Raw(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}
	return Clean(out, question), nil
}

// StreamRaw passes model chunks through untouched.
func (g *Generator) StreamRaw(ctx context.Context, prompt string, opts ...llm.CallOption) (Stream, error) {
	s, err := g.client.Stream(ctx, prompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate stream: %w", err)
	}
	return s, nil
}

// StreamCleaned buffers the head of the answer until it is longer than
// firstChunkRunes, cleans it once, then passes the remaining chunks
// through. A reply shorter than the threshold is cleaned whole at the end.
func (g *Generator) StreamCleaned(ctx context.Context, prompt, question string, opts ...llm.CallOption) (Stream, error) {
	s, err := g.StreamRaw(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	return &cleanedStream{inner: s, question: question}, nil
}

type cleanedStream struct {
	inner    Stream
	question string
	head     strings.Builder
	released bool
	ended    bool
}

func (c *cleanedStream) Recv() (string, error) {
	if c.ended {
		return "", io.EOF
	}
	if c.released {
		return c.inner.Recv()
	}
	for {
		chunk, err := c.inner.Recv()
		if err == io.EOF {
			c.released = true
			c.ended = true
			if cleaned := Clean(c.head.String(), c.question); cleaned != "" {
				return cleaned, nil
			}
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		c.head.WriteString(chunk)
		if utf8.RuneCountInString(c.head.String()) <= firstChunkRunes {
			continue
		}
		c.released = true
		cleaned := Clean(c.head.String(), c.question)
		c.head.Reset()
		if cleaned == "" {
			return c.inner.Recv()
		}
		return cleaned, nil
	}
}

func (c *cleanedStream) Close() error {
	return c.inner.Close()
}
