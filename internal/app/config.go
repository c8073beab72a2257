package app

import (
	"strings"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreSQLite   StoreDriver = "sqlite"
	StoreMongo    StoreDriver = "mongo"
	StoreMemory   StoreDriver = "memory"
)

type VectorProvider string

const (
	VectorProviderQdrant   VectorProvider = "qdrant"
	VectorProviderWeaviate VectorProvider = "weaviate"
	VectorProviderMemory   VectorProvider = "memory"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	JWTSecretKey string

	StoreDriver StoreDriver
	SQLitePath  string

	LLMProvider    string
	VectorProvider VectorProvider

	WebSearchFallback string
	CacheDriver       string
	ModesConfigPath   string

	GlobalRatePer15m int
	ChatRatePerMin   int
	CORSOrigins      []string

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:              envutil.String("PORT", "4321"),
		Environment:       envutil.String("APP_ENV", "development"),
		Version:           envutil.String("APP_VERSION", "dev"),
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", ""),
		StoreDriver:       StoreDriver(strings.ToLower(envutil.String("STORE_DRIVER", string(StorePostgres)))),
		SQLitePath:        envutil.String("SQLITE_PATH", "myu_chat.db"),
		LLMProvider:       strings.ToLower(envutil.String("LLM_PROVIDER", "ollama")),
		VectorProvider:    VectorProvider(strings.ToLower(envutil.String("VECTOR_PROVIDER", string(VectorProviderQdrant)))),
		WebSearchFallback: strings.ToLower(envutil.String("WEB_SEARCH_FALLBACK", "duckduckgo")),
		CacheDriver:       strings.ToLower(envutil.String("CACHE_DRIVER", "none")),
		ModesConfigPath:   envutil.String("MODES_CONFIG_PATH", ""),
		GlobalRatePer15m:  envutil.Int("RATE_LIMIT_GLOBAL_PER_15M", 100),
		ChatRatePerMin:    envutil.Int("RATE_LIMIT_CHAT_PER_MIN", 20),
		CORSOrigins:       envutil.List("CORS_ALLOWED_ORIGINS", nil),
		ShutdownTimeout:   envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated request will be rejected")
	}
	log.Info("Configuration loaded",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"store_driver", cfg.StoreDriver,
		"llm_provider", cfg.LLMProvider,
		"vector_provider", cfg.VectorProvider,
		"cache_driver", cfg.CacheDriver,
		"web_search_fallback", cfg.WebSearchFallback,
	)
	return cfg
}
