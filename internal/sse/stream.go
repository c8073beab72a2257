package sse

import (
	"net/http"
	"sync"

	ginsse "github.com/gin-contrib/sse"
)

// Frame is the JSON body of one chat stream event. Exactly one field is set.
type Frame struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Writer emits chat stream frames: data frames, an optional error frame, and
// an empty terminating frame.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
	closed  bool
}

func NewWriter(w http.ResponseWriter) *Writer {
	f, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: f}
}

func (sw *Writer) start() {
	if sw.started {
		return
	}
	sw.started = true
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	sw.w.WriteHeader(http.StatusOK)
}

func (sw *Writer) write(data any) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return nil
	}
	sw.start()
	if err := ginsse.Encode(sw.w, ginsse.Event{Data: data}); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

// Message sends one text fragment.
func (sw *Writer) Message(chunk string) error {
	return sw.write(Frame{Message: chunk})
}

// Error sends an error frame and ends the stream.
func (sw *Writer) Error(msg string) error {
	if err := sw.write(Frame{Error: msg}); err != nil {
		return err
	}
	return sw.Done()
}

// Done sends the terminating empty frame. Later writes are dropped.
func (sw *Writer) Done() error {
	if err := sw.write(""); err != nil {
		return err
	}
	sw.mu.Lock()
	sw.closed = true
	sw.mu.Unlock()
	return nil
}

func (sw *Writer) Started() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.started
}
