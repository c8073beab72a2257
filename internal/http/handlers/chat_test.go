package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/generate"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/orchestrator"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/prompt"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type fakeChat struct {
	begin     func(req orchestrator.TurnRequest) (*orchestrator.TurnHandle, error)
	completed []string
	history   []domain.Turn
	cleared   []string
}

func (f *fakeChat) BeginTurn(_ context.Context, req orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
	return f.begin(req)
}

func (f *fakeChat) Companion(_ context.Context, req orchestrator.CompanionRequest) (*orchestrator.TurnHandle, error) {
	return f.begin(orchestrator.TurnRequest{Message: req.Message, SessionID: req.SessionID, Mode: "web-search"})
}

func (f *fakeChat) CompleteTurn(_ context.Context, _ *orchestrator.TurnHandle, finalText string) error {
	f.completed = append(f.completed, finalText)
	return nil
}

func (f *fakeChat) ListModes(context.Context) []orchestrator.ModeStatus { return nil }
func (f *fakeChat) NewSessionID() string                                { return "session_1_abc" }

func (f *fakeChat) History(context.Context, string) []domain.Turn { return f.history }

func (f *fakeChat) Clear(_ context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return nil
}

func (f *fakeChat) Conversations(context.Context, string) ([]orchestrator.ConversationSummary, error) {
	return nil, nil
}

type brokenStream struct{ sent bool }

func (s *brokenStream) Recv() (string, error) {
	if !s.sent {
		s.sent = true
		return "Điểm chuẩn", nil
	}
	return "", errors.New("model connection reset")
}

func (s *brokenStream) Close() error { return nil }

func newTestRouter(chat *fakeChat) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(logger.NewNop(), chat)
	r := gin.New()
	r.POST("/chat", h.Chat)
	r.POST("/web-search", h.WebSearch)
	r.GET("/history/:sessionId", h.GetHistory)
	r.POST("/clear", h.ClearHistory)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatStreamsFramesAndPersistsOnce(t *testing.T) {
	chat := &fakeChat{begin: func(req orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
		if req.Message != "xin chào" || req.SessionID != "s1" || req.Mode != "admission" {
			t.Fatalf("unexpected request: %+v", req)
		}
		return &orchestrator.TurnHandle{Stream: generate.Single("Chào bạn!"), SessionID: "s1"}, nil
	}}
	rec := post(newTestRouter(chat), "/chat", `{"message":"xin chào","sessionId":"s1","mode":"admission"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: got=%q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data:{"message":"Chào bạn!"}`) {
		t.Fatalf("missing message frame: %q", body)
	}
	if !strings.HasSuffix(body, "data:\n\n") {
		t.Fatalf("missing terminating frame: %q", body)
	}
	if len(chat.completed) != 1 || chat.completed[0] != "Chào bạn!" {
		t.Fatalf("persisted: got=%v", chat.completed)
	}
}

func TestChatValidationErrorIsJSONBeforeStream(t *testing.T) {
	chat := &fakeChat{begin: func(orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
		return nil, &orchestrator.Error{Kind: orchestrator.KindValidation, Message: "Tin nhắn không hợp lệ"}
	}}
	rec := post(newTestRouter(chat), "/chat", `{"message":""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type: got=%q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Tin nhắn không hợp lệ") {
		t.Fatalf("body: %q", rec.Body.String())
	}
	if len(chat.completed) != 0 {
		t.Fatalf("validation failure must not persist")
	}
}

func TestChatMalformedBodyIsRejected(t *testing.T) {
	chat := &fakeChat{begin: func(orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
		t.Fatalf("BeginTurn must not run for a malformed body")
		return nil, nil
	}}
	rec := post(newTestRouter(chat), "/chat", `{"message":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d", rec.Code)
	}
}

func TestChatBeginFailureSendsApologyFrame(t *testing.T) {
	chat := &fakeChat{begin: func(orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
		return nil, &orchestrator.Error{Kind: orchestrator.KindRetrievalUnavailable, Message: "index load failed"}
	}}
	rec := post(newTestRouter(chat), "/chat", `{"message":"học phí ngành CNTT"}`)

	body := rec.Body.String()
	if !strings.Contains(body, `"error":"`+prompt.Apology+`"`) {
		t.Fatalf("missing apology frame: %q", body)
	}
	if strings.Contains(body, "index load failed") {
		t.Fatalf("internal detail leaked: %q", body)
	}
	if !strings.HasSuffix(body, "data:\n\n") {
		t.Fatalf("missing terminating frame: %q", body)
	}
}

func TestChatStreamFailureDoesNotPersist(t *testing.T) {
	chat := &fakeChat{begin: func(orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
		return &orchestrator.TurnHandle{Stream: &brokenStream{}, SessionID: "s2"}, nil
	}}
	rec := post(newTestRouter(chat), "/chat", `{"message":"điểm chuẩn"}`)

	body := rec.Body.String()
	if !strings.Contains(body, `{"message":"Điểm chuẩn"}`) {
		t.Fatalf("partial chunk not forwarded: %q", body)
	}
	if !strings.Contains(body, prompt.Apology) {
		t.Fatalf("missing apology frame: %q", body)
	}
	if len(chat.completed) != 0 {
		t.Fatalf("failed stream must not persist, got=%v", chat.completed)
	}
}

func TestWebSearchUsesSameStreamContract(t *testing.T) {
	chat := &fakeChat{begin: func(req orchestrator.TurnRequest) (*orchestrator.TurnHandle, error) {
		return &orchestrator.TurnHandle{Stream: generate.Single("Hôm nay trời đẹp."), SessionID: req.SessionID}, nil
	}}
	rec := post(newTestRouter(chat), "/web-search", `{"message":"thời tiết hôm nay","sessionId":"w1"}`)

	if !strings.Contains(rec.Body.String(), `{"message":"Hôm nay trời đẹp."}`) {
		t.Fatalf("body: %q", rec.Body.String())
	}
	if len(chat.completed) != 1 {
		t.Fatalf("companion turn not persisted")
	}
}

func TestHistorySkipsSystemTurns(t *testing.T) {
	chat := &fakeChat{history: []domain.Turn{
		{Role: domain.RoleSystem, Content: "hidden"},
		{Role: domain.RoleUser, Content: "hỏi"},
		{Role: domain.RoleAssistant, Content: "đáp"},
	}}
	req := httptest.NewRequest(http.MethodGet, "/history/s1", nil)
	rec := httptest.NewRecorder()
	newTestRouter(chat).ServeHTTP(rec, req)

	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if strings.Contains(body, "hidden") {
		t.Fatalf("system turn exposed: %q", body)
	}
	if !strings.Contains(body, `"sessionId":"s1"`) || !strings.Contains(body, "đáp") {
		t.Fatalf("body: %q", body)
	}
}

func TestClearDefaultsSessionID(t *testing.T) {
	chat := &fakeChat{}
	r := newTestRouter(chat)

	req := httptest.NewRequest(http.MethodPost, "/clear", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d", rec.Code)
	}

	post(r, "/clear", `{"sessionId":"s9"}`)
	if len(chat.cleared) != 2 || chat.cleared[0] != orchestrator.DefaultSessionID || chat.cleared[1] != "s9" {
		t.Fatalf("cleared: got=%v", chat.cleared)
	}
}
