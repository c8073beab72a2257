package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/intent"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/prompt"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type Outcome string

const (
	// OutcomeAnswer means generation proceeds with Decision.Context.
	OutcomeAnswer Outcome = "answer"
	// OutcomeRefuse means the mode's canned refusal is returned without a
	// model call.
	OutcomeRefuse Outcome = "refuse"
)

type Decision struct {
	Outcome  Outcome
	Context  string
	Passages []Passage
	// Web is true when the context came from (or was looked up on) the web.
	Web bool
}

// K sizes retrieval by question shape.
func K(shape intent.Shape) int {
	switch shape {
	case intent.ShapeListing:
		return 30
	case intent.ShapeTuition:
		return 15
	default:
		return 8
	}
}

type Gate struct {
	log   *logger.Logger
	cache *IndexCache
	judge Judge
	web   *WebChain
}

func NewGate(log *logger.Logger, cache *IndexCache, judge Judge, web *WebChain) *Gate {
	if judge == nil {
		judge = KeywordJudge{}
	}
	return &Gate{log: log.With("component", "RetrievalGate"), cache: cache, judge: judge, web: web}
}

// Prepare loads the mode's index. Modes without an index are a no-op.
func (g *Gate) Prepare(ctx context.Context, mode modes.Config) error {
	if !mode.RequiresIndex() {
		return nil
	}
	if _, err := g.cache.Get(ctx, mode.Collection); err != nil {
		if errors.Is(err, ErrIndexUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return nil
}

// Decide runs retrieval for one question. Web-search mode never touches a
// vector index and always answers, with a "no results" placeholder when the
// web has nothing. Indexed modes refuse when the passages are not relevant.
func (g *Gate) Decide(ctx context.Context, mode modes.Config, query string, shape intent.Shape) (Decision, error) {
	start := time.Now()
	metrics := observability.Current()

	if !mode.RequiresIndex() {
		found := g.web.Search(ctx, query)
		if strings.TrimSpace(found) == "" {
			metrics.ObserveRetrieval(string(mode.ID), "web_empty", time.Since(start))
			return Decision{Outcome: OutcomeAnswer, Context: prompt.NoWebResults, Web: true}, nil
		}
		metrics.ObserveRetrieval(string(mode.ID), "web", time.Since(start))
		return Decision{Outcome: OutcomeAnswer, Context: found, Web: true}, nil
	}

	idx, err := g.cache.Get(ctx, mode.Collection)
	if err != nil {
		metrics.ObserveRetrieval(string(mode.ID), "unavailable", time.Since(start))
		if errors.Is(err, ErrIndexUnavailable) {
			return Decision{}, err
		}
		return Decision{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	k := K(shape)
	passages, err := idx.Search(ctx, query, k)
	if err != nil {
		metrics.ObserveRetrieval(string(mode.ID), "error", time.Since(start))
		return Decision{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	g.log.Debug("retrieved passages", "mode", mode.ID, "k", k, "found", len(passages))

	if !g.judge.Relevant(passages, query) {
		metrics.ObserveRetrieval(string(mode.ID), "refuse", time.Since(start))
		return Decision{Outcome: OutcomeRefuse, Passages: passages}, nil
	}
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	metrics.ObserveRetrieval(string(mode.ID), "hit", time.Since(start))
	return Decision{Outcome: OutcomeAnswer, Context: strings.Join(texts, "\n\n"), Passages: passages}, nil
}

// Web exposes the web chain for turns that search without a mode gate.
func (g *Gate) Web() *WebChain { return g.web }
