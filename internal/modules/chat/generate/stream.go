package generate

import (
	"io"
	"strings"
	"sync"

	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
)

// Stream is a finite, single-consumer sequence of text chunks. Recv returns
// io.EOF once the sequence is exhausted.
type Stream = llm.Stream

type singleStream struct {
	mu   sync.Mutex
	text string
	done bool
}

// Single returns a stream that yields text once. Used by paths that bypass
// the model or already hold the full answer.
func Single(text string) Stream {
	return &singleStream{text: text}
}

func (s *singleStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return "", io.EOF
	}
	s.done = true
	return s.text, nil
}

func (s *singleStream) Close() error {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	return nil
}

// Drain reads a stream to the end and returns the concatenated text. The
// stream is closed on return.
func Drain(s Stream) (string, error) {
	defer s.Close()
	var b strings.Builder
	for {
		chunk, err := s.Recv()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}
