package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/websearch"
)

const webMaxResults = 3

// WebChain queries searchers in order and stops at the first one that
// returns results. Provider errors are logged and skipped.
type WebChain struct {
	log       *logger.Logger
	searchers []websearch.Searcher
}

func NewWebChain(log *logger.Logger, searchers ...websearch.Searcher) *WebChain {
	kept := make([]websearch.Searcher, 0, len(searchers))
	for _, s := range searchers {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &WebChain{log: log.With("component", "WebChain"), searchers: kept}
}

// Search returns formatted results, or "" when every provider came back
// empty or failed.
func (w *WebChain) Search(ctx context.Context, query string) string {
	if w == nil {
		return ""
	}
	metrics := observability.Current()
	for _, s := range w.searchers {
		results, err := s.Search(ctx, query, webMaxResults)
		if err != nil {
			metrics.IncWebSearch(s.Name(), "error")
			w.log.Warn("web search provider failed", "provider", s.Name(), "error", err)
			continue
		}
		if len(results) == 0 {
			metrics.IncWebSearch(s.Name(), "empty")
			continue
		}
		metrics.IncWebSearch(s.Name(), "ok")
		return FormatWebResults(results)
	}
	return ""
}

// FormatWebResults renders hits as "[i] title\ncontent\nNguồn: url" blocks
// separated by blank lines.
func FormatWebResults(results []websearch.Result) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("[%d] %s\n%s\nNguồn: %s", i+1, r.Title, r.Content, r.URL))
	}
	return strings.Join(parts, "\n\n")
}
