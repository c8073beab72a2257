package llm

import (
	"context"
	"io"
	"sync"
)

// Emit hands one chunk to the consumer. It returns an error once the consumer
// has closed the stream.
type Emit func(chunk string) error

// Pipe adapts a callback-style producer to a pull Stream. produce runs in its
// own goroutine with a context that is cancelled by Close.
func Pipe(ctx context.Context, produce func(ctx context.Context, emit Emit) error) Stream {
	ctx, cancel := context.WithCancel(ctx)
	p := &pipe{
		chunks: make(chan string),
		errc:   make(chan error, 1),
		cancel: cancel,
	}
	go func() {
		defer close(p.chunks)
		p.errc <- produce(ctx, func(chunk string) error {
			if chunk == "" {
				return nil
			}
			select {
			case p.chunks <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	return p
}

type pipe struct {
	chunks chan string
	errc   chan error
	cancel context.CancelFunc

	mu     sync.Mutex
	err    error
	ended  bool
	closed bool
}

func (p *pipe) Recv() (string, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", io.EOF
	}
	if p.ended {
		err := p.err
		p.mu.Unlock()
		return "", err
	}
	p.mu.Unlock()

	chunk, ok := <-p.chunks
	if ok {
		return chunk, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ended {
		p.ended = true
		p.err = <-p.errc
		if p.err == nil {
			p.err = io.EOF
		}
	}
	return "", p.err
}

func (p *pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	return nil
}
