package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestPipeDeliversChunksThenEOF(t *testing.T) {
	s := Pipe(context.Background(), func(ctx context.Context, emit Emit) error {
		for _, c := range []string{"Xin ", "", "chào"} {
			if err := emit(c); err != nil {
				return err
			}
		}
		return nil
	})

	var got []string
	for {
		c, err := s.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		got = append(got, c)
	}
	if len(got) != 2 || got[0] != "Xin " || got[1] != "chào" {
		t.Fatalf("unexpected chunks %q", got)
	}
	if _, err := s.Recv(); err != io.EOF {
		t.Fatalf("expected sticky EOF, got %v", err)
	}
}

func TestPipeSurfacesProducerError(t *testing.T) {
	boom := errors.New("model down")
	s := Pipe(context.Background(), func(ctx context.Context, emit Emit) error {
		_ = emit("partial")
		return boom
	})
	if c, err := s.Recv(); err != nil || c != "partial" {
		t.Fatalf("expected partial chunk, got %q %v", c, err)
	}
	if _, err := s.Recv(); !errors.Is(err, boom) {
		t.Fatalf("expected producer error, got %v", err)
	}
}

func TestPipeCloseCancelsProducer(t *testing.T) {
	stopped := make(chan struct{})
	s := Pipe(context.Background(), func(ctx context.Context, emit Emit) error {
		defer close(stopped)
		for {
			if err := emit("x"); err != nil {
				return err
			}
		}
	})
	if _, err := s.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	_ = s.Close()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("producer still running after Close")
	}
	if _, err := s.Recv(); err != io.EOF {
		t.Fatalf("expected EOF after Close, got %v", err)
	}
}
