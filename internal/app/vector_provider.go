package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/qdrant"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
	"github.com/yungbote/myu-chat-backend/internal/platform/weaviate"
)

var (
	newQdrantVectorStore = func(ctx context.Context, log *logger.Logger, cfg qdrant.Config) (vectorstore.Store, error) {
		vs, err := qdrant.NewVectorStore(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		return vs, nil
	}
	newWeaviateVectorStore = func(log *logger.Logger, cfg weaviate.Config) (vectorstore.Store, error) {
		vs, err := weaviate.NewVectorStore(log, cfg)
		if err != nil {
			return nil, err
		}
		return vs, nil
	}
	resolveQdrantConfig = qdrant.ResolveConfigFromEnv
	weaviateConfig      = weaviate.ConfigFromEnv
)

type VectorProviderBootstrapErrorCode string

const (
	VectorProviderBootstrapErrorInvalidProvider     VectorProviderBootstrapErrorCode = "invalid_provider"
	VectorProviderBootstrapErrorMissingQdrantURL    VectorProviderBootstrapErrorCode = "missing_qdrant_url"
	VectorProviderBootstrapErrorInvalidQdrantURL    VectorProviderBootstrapErrorCode = "invalid_qdrant_url"
	VectorProviderBootstrapErrorInvalidQdrantVector VectorProviderBootstrapErrorCode = "invalid_qdrant_vector_dim"
	VectorProviderBootstrapErrorQdrantConfigFailed  VectorProviderBootstrapErrorCode = "qdrant_config_failed"
	VectorProviderBootstrapErrorConnectFailed       VectorProviderBootstrapErrorCode = "connect_failed"
	VectorProviderBootstrapErrorProviderInitFailed  VectorProviderBootstrapErrorCode = "provider_init_failed"
)

type VectorProviderBootstrapError struct {
	Code     VectorProviderBootstrapErrorCode
	Provider string
	Cause    error
}

func (e *VectorProviderBootstrapError) Error() string {
	if e == nil {
		return "vector provider bootstrap failed"
	}
	return fmt.Sprintf("vector provider bootstrap failed (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *VectorProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveVectorStore builds the store named by VECTOR_PROVIDER, wrapped with
// operation metrics.
func resolveVectorStore(ctx context.Context, log *logger.Logger, provider VectorProvider) (vectorstore.Store, error) {
	name := strings.TrimSpace(strings.ToLower(string(provider)))
	metrics := observability.Current()
	metrics.SetVectorStoreProviderActive(name)

	var (
		vs  vectorstore.Store
		err error
	)
	switch VectorProvider(name) {
	case VectorProviderQdrant:
		var cfg qdrant.Config
		cfg, err = resolveQdrantConfig()
		if err == nil {
			log.Info("Selecting vector store provider", "provider", name, "qdrant_url", cfg.URL, "collection_prefix", cfg.CollectionPrefix, "vector_dim", cfg.VectorDim)
			vs, err = newQdrantVectorStore(ctx, log, cfg)
		}
	case VectorProviderWeaviate:
		cfg := weaviateConfig()
		log.Info("Selecting vector store provider", "provider", name, "weaviate_url", cfg.URL, "class_prefix", cfg.ClassPrefix)
		vs, err = newWeaviateVectorStore(log, cfg)
	case VectorProviderMemory:
		log.Warn("Using the in-process vector store; indices do not survive a restart", "provider", name)
		vs = vectorstore.NewMemory()
	default:
		err = &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorInvalidProvider,
			Provider: name,
			Cause:    fmt.Errorf("unsupported vector provider %q", name),
		}
	}
	if err != nil {
		classified := classifyVectorProviderBootstrapError(name, err)
		code := vectorProviderBootstrapErrorCode(classified)
		metrics.ObserveVectorStoreBootstrap(name, "error", string(code))
		log.Error("Vector store provider bootstrap failed", "provider", name, "error_code", code, "error", classified)
		return nil, classified
	}
	metrics.ObserveVectorStoreBootstrap(name, "success", "none")
	return instrumentVectorStore(name, vs), nil
}

func classifyVectorProviderBootstrapError(provider string, err error) error {
	var already *VectorProviderBootstrapError
	if errors.As(err, &already) {
		return err
	}
	wrap := func(code VectorProviderBootstrapErrorCode) error {
		return &VectorProviderBootstrapError{Code: code, Provider: provider, Cause: err}
	}

	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return wrap(VectorProviderBootstrapErrorConnectFailed)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return wrap(VectorProviderBootstrapErrorConnectFailed)
	}
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "ready check failed") || strings.Contains(errLower, "connection refused") {
		return wrap(VectorProviderBootstrapErrorConnectFailed)
	}

	var cfgErr *qdrant.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case qdrant.ConfigErrorMissingURL:
			return wrap(VectorProviderBootstrapErrorMissingQdrantURL)
		case qdrant.ConfigErrorInvalidURL:
			return wrap(VectorProviderBootstrapErrorInvalidQdrantURL)
		case qdrant.ConfigErrorInvalidVectorDim:
			return wrap(VectorProviderBootstrapErrorInvalidQdrantVector)
		default:
			return wrap(VectorProviderBootstrapErrorQdrantConfigFailed)
		}
	}
	return wrap(VectorProviderBootstrapErrorProviderInitFailed)
}

func vectorProviderBootstrapErrorCode(err error) VectorProviderBootstrapErrorCode {
	var bootstrapErr *VectorProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return VectorProviderBootstrapErrorConnectFailed
}
