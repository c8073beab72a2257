package llm

import (
	"context"
	"errors"
)

// Stream is a finite, single-consumer sequence of text chunks. Recv returns
// io.EOF when exhausted. Close abandons the underlying call.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Client is the language-model capability used by the chat core and ingestion.
type Client interface {
	Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error)
	Stream(ctx context.Context, prompt string, opts ...CallOption) (Stream, error)
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

var ErrEmptyResponse = errors.New("llm returned no content")

type CallOptions struct {
	Temperature *float64
	MaxTokens   int
}

type CallOption func(*CallOptions)

func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// Resolve applies opts over client defaults.
func Resolve(defaultTemp float64, defaultMax int, opts ...CallOption) CallOptions {
	o := CallOptions{Temperature: &defaultTemp, MaxTokens: defaultMax}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
