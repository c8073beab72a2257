package sse

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriterFramesMessagesAndTerminator(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	if w.Started() {
		t.Fatalf("writer must not start before the first frame")
	}
	if err := w.Message("Xin chào"); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if err := w.Message(" bạn"); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if err := w.Done(); err != nil {
		t.Fatalf("Done: %v", err)
	}
	if err := w.Message("late"); err != nil {
		t.Fatalf("Message after Done: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: got=%q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `{"message":"Xin chào"}`) || !strings.Contains(body, `{"message":" bạn"}`) {
		t.Fatalf("missing message frames: %q", body)
	}
	if !strings.HasSuffix(body, "data:\n\n") {
		t.Fatalf("missing terminating frame: %q", body)
	}
	if strings.Contains(body, "late") {
		t.Fatalf("frame written after Done: %q", body)
	}
}

func TestWriterErrorEndsStream(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	if err := w.Error("Xin lỗi"); err != nil {
		t.Fatalf("Error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `{"error":"Xin lỗi"}`) {
		t.Fatalf("missing error frame: %q", body)
	}
	if strings.Count(body, "data:") != 2 {
		t.Fatalf("want error frame plus terminator, got %q", body)
	}
}
