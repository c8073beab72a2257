package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/http/middleware"
	"github.com/yungbote/myu-chat-backend/internal/http/response"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/orchestrator"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/prompt"
	"github.com/yungbote/myu-chat-backend/internal/platform/apierr"
	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/sse"
)

// ChatService is the slice of the orchestrator the HTTP layer drives.
type ChatService interface {
	BeginTurn(ctx context.Context, req orchestrator.TurnRequest) (*orchestrator.TurnHandle, error)
	Companion(ctx context.Context, req orchestrator.CompanionRequest) (*orchestrator.TurnHandle, error)
	CompleteTurn(ctx context.Context, h *orchestrator.TurnHandle, finalText string) error
	ListModes(ctx context.Context) []orchestrator.ModeStatus
	NewSessionID() string
	History(ctx context.Context, sessionID string) []domain.Turn
	Clear(ctx context.Context, sessionID string) error
	Conversations(ctx context.Context, userID string) ([]orchestrator.ConversationSummary, error)
}

type ChatHandler struct {
	log  *logger.Logger
	chat ChatService
}

func NewChatHandler(log *logger.Logger, chat ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

type chatReq struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId" binding:"omitempty,max=200"`
	Mode      string `json:"mode" binding:"omitempty,max=64"`
}

// POST /v1/api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	ctx := c.Request.Context()
	handle, err := h.chat.BeginTurn(ctx, orchestrator.TurnRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		Mode:      req.Mode,
		Metadata:  requestMetadata(c),
	})
	h.serveTurn(c, handle, err)
}

type webSearchReq struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId" binding:"omitempty,max=200"`
}

// POST /v1/api/chat/web-search
func (h *ChatHandler) WebSearch(c *gin.Context) {
	var req webSearchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	handle, err := h.chat.Companion(c.Request.Context(), orchestrator.CompanionRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		Metadata:  requestMetadata(c),
	})
	h.serveTurn(c, handle, err)
}

// serveTurn streams the answer and persists it once the stream is drained.
// Validation failures are answered as JSON before any frame is written.
func (h *ChatHandler) serveTurn(c *gin.Context, handle *orchestrator.TurnHandle, err error) {
	if err != nil {
		var oe *orchestrator.Error
		if errors.As(err, &oe) && oe.Kind == orchestrator.KindValidation {
			response.RespondAPIError(c, apierr.BadRequest("validation_error", errors.New(oe.Message)))
			return
		}
		h.log.Error("Chat turn failed to start", "kind", orchestrator.KindOf(err), "error", err)
		_ = c.Error(err)
		_ = sse.NewWriter(c.Writer).Error(prompt.Apology)
		return
	}
	c.Set(middleware.ContextKeySessionID, handle.SessionID)

	ctx := c.Request.Context()
	sw := sse.NewWriter(c.Writer)
	defer handle.Stream.Close()

	var full strings.Builder
	chunks := 0
	for {
		chunk, err := handle.Stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.log.Error("Chat stream failed", "session_id", handle.SessionID, "path", handle.Path, "chunks", chunks, "error", err)
			_ = c.Error(err)
			_ = sw.Error(prompt.Apology)
			return
		}
		if ctx.Err() != nil {
			h.log.Info("Client left before the answer finished", "session_id", handle.SessionID, "chunks", chunks)
			return
		}
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		chunks++
		if err := sw.Message(chunk); err != nil {
			h.log.Info("Chat stream write failed", "session_id", handle.SessionID, "error", err)
			return
		}
	}

	if err := h.chat.CompleteTurn(context.WithoutCancel(ctx), handle, full.String()); err != nil {
		h.log.Warn("Chat turn not persisted", "session_id", handle.SessionID, "error", err)
	}
	h.log.Debug("Chat stream complete", "session_id", handle.SessionID, "mode", handle.Mode, "path", handle.Path, "chunks", chunks, "used_web", handle.UsedWeb)
	_ = sw.Done()
}

func requestMetadata(c *gin.Context) domain.Metadata {
	return domain.Metadata{
		UserID:    ctxutil.UserID(c.Request.Context()),
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

// GET /v1/api/chat/modes
func (h *ChatHandler) ListModes(c *gin.Context) {
	modes := h.chat.ListModes(c.Request.Context())
	response.RespondOK(c, gin.H{"success": true, "modes": modes, "total": len(modes)})
}

// POST /v1/api/chat/conversation
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"success":   true,
		"sessionId": h.chat.NewSessionID(),
		"message":   "Session ID đã được tạo. Conversation sẽ được lưu khi có message đầu tiên.",
	})
}

// GET /v1/api/chat/conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	convs, err := h.chat.Conversations(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		h.log.Error("List conversations failed", "error", err)
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, "list_conversations_failed", errors.New("Lỗi máy chủ nội bộ.")))
		return
	}
	response.RespondOK(c, gin.H{"success": true, "conversations": convs, "total": len(convs)})
}

type historyMessage struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// GET /v1/api/chat/history/:sessionId
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionId"))
	c.Set(middleware.ContextKeySessionID, sessionID)
	turns := h.chat.History(c.Request.Context(), sessionID)
	msgs := make([]historyMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role == domain.RoleSystem {
			continue
		}
		msgs = append(msgs, historyMessage{Role: t.Role, Content: t.Content})
	}
	response.RespondOK(c, gin.H{"success": true, "sessionId": sessionID, "messages": msgs})
}

type clearReq struct {
	SessionID string `json:"sessionId" binding:"omitempty,max=200"`
}

// POST /v1/api/chat/clear
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	var req clearReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondAPIError(c, apierr.BadRequest("invalid_request", err))
			return
		}
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = orchestrator.DefaultSessionID
	}
	c.Set(middleware.ContextKeySessionID, sessionID)
	if err := h.chat.Clear(c.Request.Context(), sessionID); err != nil {
		h.log.Error("Clear history failed", "session_id", sessionID, "error", err)
		response.RespondOK(c, gin.H{"success": false, "message": "Không thể xóa lịch sử hội thoại"})
		return
	}
	response.RespondOK(c, gin.H{"success": true, "message": "Cuộc hội thoại đã được xóa thành công."})
}
