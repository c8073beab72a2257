package app

import (
	"fmt"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/cache"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/generate"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/intent"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/orchestrator"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/retrieval"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/store"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Chat    *orchestrator.Orchestrator
	Cache   *cache.AnswerCache
	Catalog *modes.Catalog
}

func wireServices(log *logger.Logger, cfg Config, clients *Clients, storage *Storage) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := modes.LoadCatalog(cfg.ModesConfigPath)
	if err != nil {
		return Services{}, err
	}

	indices := retrieval.NewIndexCache(retrieval.VectorLoader{Store: clients.Vectors, Embedder: clients.LLM})
	gate := retrieval.NewGate(log, indices, retrieval.KeywordJudge{}, retrieval.NewWebChain(log, clients.WebSearch...))
	answers := cache.NewAnswerCache(log, clients.CacheBackend, cache.DefaultTTLs)

	chat, err := orchestrator.New(orchestrator.Deps{
		Log:         log,
		Catalog:     catalog,
		Classifier:  intent.NewRuleClassifier(),
		Gate:        gate,
		Generator:   generate.New(log, clients.LLM),
		Store:       store.New(log, storage.Conversations),
		Cache:       answers,
		Collections: clients.Vectors,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init chat orchestrator: %w", err)
	}

	return Services{
		Auth:    services.NewAuthService(log, cfg.JWTSecretKey),
		Chat:    chat,
		Cache:   answers,
		Catalog: catalog,
	}, nil
}
