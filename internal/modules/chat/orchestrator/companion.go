package orchestrator

import (
	"context"
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/intent"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/prompt"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

const companionTemperature = 0.7

type CompanionRequest struct {
	Message   string
	SessionID string
	Metadata  chat.Metadata
}

// Companion runs a free-form chat turn with optional web lookup. It follows
// the same BeginTurn/CompleteTurn contract; the answer is never cached.
func (o *Orchestrator) Companion(ctx context.Context, req CompanionRequest) (h *TurnHandle, err error) {
	ctx, span := observability.Tracer().Start(ctx, "chat.Companion")
	defer func() { endSpan(span, h, err) }()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, validationError("Tin nhắn không được để trống")
	}
	sessionID := sessionOrDefault(req.SessionID)

	recent := prompt.RecentForCompanion(o.store.Load(ctx, sessionID))

	var found string
	if intent.WantsWebSearch(message) {
		found = o.gate.Web().Search(ctx, message)
	}

	stream, err := o.gen.StreamRaw(ctx, prompt.Companion(message, recent, found), llm.WithTemperature(companionTemperature))
	if err != nil {
		o.countTurn(modes.WebSearch, PathCompanion, "error")
		return nil, &Error{Kind: KindGeneration, Message: "không thể tạo câu trả lời", Err: err}
	}
	o.log.Info("companion turn started",
		"session_id", sessionID,
		"searched", found != "",
		"message", logger.Preview(message, 80),
	)
	return &TurnHandle{
		Stream:    stream,
		SessionID: sessionID,
		Mode:      modes.WebSearch,
		Path:      PathCompanion,
		UsedWeb:   found != "",
		message:   message,
		metadata:  req.Metadata,
	}, nil
}
