package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/cache"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/generate"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/intent"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/prompt"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/retrieval"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/store"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// DefaultSessionID is used when a request carries no session id.
const DefaultSessionID = "default"

// Path is the branch a turn took.
type Path string

const (
	PathGratitude Path = "gratitude"
	PathGreeting  Path = "greeting"
	PathTool      Path = "tool"
	PathCached    Path = "cache"
	PathRefusal   Path = "refusal"
	PathQA        Path = "qa"
	PathCompanion Path = "companion"
)

type TurnRequest struct {
	Message   string
	SessionID string
	Mode      string
	// Metadata is attached to the conversation if this turn creates it.
	Metadata chat.Metadata
}

// TurnHandle carries the answer stream and the obligation to persist it.
// CompleteTurn must be called once the stream has been fully drained;
// a turn whose stream failed is simply dropped.
type TurnHandle struct {
	Stream    generate.Stream
	SessionID string
	Mode      modes.Mode
	Path      Path
	UsedWeb   bool

	message   string
	metadata  chat.Metadata
	cacheable bool
	completed atomic.Bool
}

// CollectionProber reports whether a vector collection has been ingested.
type CollectionProber interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

type Deps struct {
	Log        *logger.Logger
	Catalog    *modes.Catalog
	Classifier intent.Classifier
	Gate       *retrieval.Gate
	Generator  *generate.Generator
	Store      *store.Store
	// Cache and Collections are optional.
	Cache       *cache.AnswerCache
	Collections CollectionProber
	Now         func() time.Time
}

type Orchestrator struct {
	log        *logger.Logger
	catalog    *modes.Catalog
	classifier intent.Classifier
	gate       *retrieval.Gate
	gen        *generate.Generator
	store      *store.Store
	cache      *cache.AnswerCache
	probe      CollectionProber
	now        func() time.Time
}

func New(deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Log == nil:
		return nil, errors.New("orchestrator: logger required")
	case deps.Gate == nil:
		return nil, errors.New("orchestrator: retrieval gate required")
	case deps.Generator == nil:
		return nil, errors.New("orchestrator: generator required")
	case deps.Store == nil:
		return nil, errors.New("orchestrator: store required")
	}
	if deps.Catalog == nil {
		deps.Catalog = modes.NewCatalog()
	}
	if deps.Classifier == nil {
		deps.Classifier = intent.NewRuleClassifier()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		log:        deps.Log.With("component", "ChatOrchestrator"),
		catalog:    deps.Catalog,
		classifier: deps.Classifier,
		gate:       deps.Gate,
		gen:        deps.Generator,
		store:      deps.Store,
		cache:      deps.Cache,
		probe:      deps.Collections,
		now:        deps.Now,
	}, nil
}

// BeginTurn validates the request and produces the answer stream. Nothing is
// persisted until CompleteTurn.
func (o *Orchestrator) BeginTurn(ctx context.Context, req TurnRequest) (h *TurnHandle, err error) {
	ctx, span := observability.Tracer().Start(ctx, "chat.BeginTurn")
	defer func() { endSpan(span, h, err) }()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, validationError("Tin nhắn không được để trống")
	}
	sessionID := sessionOrDefault(req.SessionID)
	modeID := strings.TrimSpace(req.Mode)
	if modeID == "" {
		modeID = string(modes.Default)
	}
	mode, ok := o.catalog.Lookup(modeID)
	if !ok {
		return nil, validationError("Mode không hợp lệ: %s. Các mode hợp lệ: %s", modeID, strings.Join(o.catalog.IDs(), ", "))
	}
	span.SetAttributes(attribute.String("chat.mode", string(mode.ID)))

	if err := o.gate.Prepare(ctx, mode); err != nil {
		o.countTurn(mode.ID, "", "error")
		return nil, &Error{
			Kind:    KindRetrievalUnavailable,
			Message: fmt.Sprintf("Vector Store cho mode %s chưa sẵn sàng", mode.ID),
			Err:     err,
		}
	}

	history := o.store.Load(ctx, sessionID)
	class := o.classifier.Classify(intent.Input{Text: message, FirstTurn: len(history) == 0})

	handle := func(stream generate.Stream, path Path) *TurnHandle {
		o.log.Info("chat turn started",
			"session_id", sessionID,
			"mode", mode.ID,
			"path", path,
			"message", logger.Preview(message, 80),
		)
		return &TurnHandle{Stream: stream, SessionID: sessionID, Mode: mode.ID, Path: path, message: message, metadata: req.Metadata}
	}

	switch class.Kind {
	case intent.Gratitude:
		return handle(generate.Single(prompt.GratitudeReply), PathGratitude), nil
	case intent.Greeting:
		return handle(generate.Single(prompt.GreetingReply), PathGreeting), nil
	case intent.Calculation:
		answer, err := o.toolTurn(ctx, message, history)
		if err == nil {
			return handle(generate.Single(answer), PathTool), nil
		}
		o.log.Warn("tool path failed, falling back to grounded answer", "session_id", sessionID, "error", err)
	}

	recent := prompt.RecentForQA(history, message)
	cacheable := len(recent) == 0 && o.cache.Enabled()
	if cacheable {
		if answer, ok := o.cache.Get(ctx, mode.ID, message); ok {
			return handle(generate.Single(answer), PathCached), nil
		}
	}

	decision, err := o.gate.Decide(ctx, mode, message, class.Shape)
	if err != nil {
		o.countTurn(mode.ID, PathQA, "error")
		return nil, &Error{
			Kind:    KindRetrievalUnavailable,
			Message: fmt.Sprintf("không thể truy xuất dữ liệu cho mode %s", mode.ID),
			Err:     err,
		}
	}
	if decision.Outcome == retrieval.OutcomeRefuse {
		return handle(generate.Single(mode.Refusal), PathRefusal), nil
	}

	stream, err := o.gen.StreamCleaned(ctx, prompt.QA(prompt.QAInput{
		Mode:     mode,
		Context:  decision.Context,
		History:  recent,
		Question: message,
	}), message)
	if err != nil {
		o.countTurn(mode.ID, PathQA, "error")
		return nil, &Error{Kind: KindGeneration, Message: "không thể tạo câu trả lời", Err: err}
	}
	h = handle(stream, PathQA)
	h.UsedWeb = decision.Web
	h.cacheable = cacheable
	return h, nil
}

// CompleteTurn appends the user message and the assembled answer to the
// session history. Writes for one session are serialised. It may be called
// once per handle.
func (o *Orchestrator) CompleteTurn(ctx context.Context, h *TurnHandle, finalText string) error {
	if h == nil {
		return errors.New("complete turn: nil handle")
	}
	if !h.completed.CompareAndSwap(false, true) {
		return ErrTurnAlreadyCompleted
	}
	ctx, span := observability.Tracer().Start(ctx, "chat.CompleteTurn", trace.WithAttributes(
		attribute.String("chat.mode", string(h.Mode)),
		attribute.String("chat.path", string(h.Path)),
	))
	defer span.End()

	unlock := o.store.Lock(h.SessionID)
	defer unlock()

	now := o.now()
	turns := o.store.Load(ctx, h.SessionID)
	turns = append(turns,
		chat.NewTurn(chat.RoleUser, h.message, now),
		chat.NewTurn(chat.RoleAssistant, finalText, now),
	)
	if err := o.store.Save(ctx, h.SessionID, turns, h.metadata); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.countTurn(h.Mode, h.Path, "error")
		return &Error{Kind: KindStore, Message: "không thể lưu lịch sử", Err: err}
	}

	if h.cacheable {
		o.cache.Set(ctx, h.Mode, h.message, finalText)
	}
	o.countTurn(h.Mode, h.Path, "ok")
	return nil
}

func (o *Orchestrator) countTurn(mode modes.Mode, path Path, status string) {
	observability.Current().IncChatTurn(string(mode), string(path), status)
}

func endSpan(span trace.Span, h *TurnHandle, err error) {
	if h != nil {
		span.SetAttributes(attribute.String("chat.path", string(h.Path)), attribute.Bool("chat.used_web", h.UsedWeb))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func sessionOrDefault(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return DefaultSessionID
	}
	return id
}
