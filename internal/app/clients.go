package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/http/handlers"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/cache"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/duckduckgo"
	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/ollama"
	"github.com/yungbote/myu-chat-backend/internal/platform/openai"
	"github.com/yungbote/myu-chat-backend/internal/platform/tavily"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
	"github.com/yungbote/myu-chat-backend/internal/platform/websearch"
)

type Clients struct {
	LLM          llm.Client
	Vectors      vectorstore.Store
	WebSearch    []websearch.Searcher
	CacheBackend cache.Backend
	checks       map[string]handlers.Pinger
}

func wireLLM(log *logger.Logger, provider string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "ollama", "":
		c, err := ollama.NewClient(log, ollama.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init ollama client: %w", err)
		}
		return c, nil
	case "openai":
		c, err := openai.NewClient(log, openai.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (ollama|openai)", provider)
	}
}

// wireWebSearch orders providers: Tavily when a key is configured, then the
// fallback scraper.
func wireWebSearch(log *logger.Logger, fallback string) []websearch.Searcher {
	var out []websearch.Searcher
	if tcfg := tavily.ConfigFromEnv(); strings.TrimSpace(tcfg.APIKey) != "" {
		out = append(out, tavily.NewClient(log, tcfg, nil))
	} else {
		log.Warn("TAVILY_API_KEY not set; Tavily web search disabled")
	}
	switch strings.ToLower(strings.TrimSpace(fallback)) {
	case "duckduckgo":
		out = append(out, duckduckgo.NewClient(log, duckduckgo.ConfigFromEnv(), nil))
	case "none", "":
	default:
		log.Warn("Unknown WEB_SEARCH_FALLBACK; no fallback provider", "value", fallback)
	}
	return out
}

func wireCacheBackend(ctx context.Context, log *logger.Logger, driver string, checks map[string]handlers.Pinger) (cache.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "none", "":
		log.Info("Answer cache disabled")
		return nil, nil
	case "redis":
		b, err := cache.NewRedis(log, cache.RedisConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init redis answer cache: %w", err)
		}
		checks["redis"] = b
		observability.Current().StartRedisCollector(ctx, log, b.Client())
		return b, nil
	case "badger":
		b, err := cache.NewBadger(log, cache.BadgerConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init badger answer cache: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported CACHE_DRIVER %q (redis|badger|none)", driver)
	}
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{checks: map[string]handlers.Pinger{}}

	client, err := wireLLM(log, cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	c.LLM = client

	vs, err := resolveVectorStore(ctx, log, cfg.VectorProvider)
	if err != nil {
		return nil, err
	}
	c.Vectors = vs

	c.WebSearch = wireWebSearch(log, cfg.WebSearchFallback)

	backend, err := wireCacheBackend(ctx, log, cfg.CacheDriver, c.checks)
	if err != nil {
		return nil, err
	}
	c.CacheBackend = backend
	return c, nil
}
