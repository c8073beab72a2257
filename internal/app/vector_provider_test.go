package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/qdrant"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
	"github.com/yungbote/myu-chat-backend/internal/platform/weaviate"
)

func TestResolveVectorStoreQdrantSelected(t *testing.T) {
	origCfg, origNew := resolveQdrantConfig, newQdrantVectorStore
	t.Cleanup(func() {
		resolveQdrantConfig, newQdrantVectorStore = origCfg, origNew
	})

	resolveQdrantConfig = func() (qdrant.Config, error) {
		return qdrant.Config{URL: "http://qdrant:6333", CollectionPrefix: "myu"}, nil
	}
	var captured qdrant.Config
	stub := vectorstore.NewMemory()
	newQdrantVectorStore = func(_ context.Context, _ *logger.Logger, cfg qdrant.Config) (vectorstore.Store, error) {
		captured = cfg
		return stub, nil
	}

	vs, err := resolveVectorStore(context.Background(), logger.NewNop(), VectorProviderQdrant)
	if err != nil {
		t.Fatalf("resolveVectorStore: %v", err)
	}
	if err := vs.EnsureCollection(context.Background(), "vhu_admission", 3); err != nil {
		t.Fatalf("EnsureCollection through wrapper: %v", err)
	}
	if ok, _ := stub.CollectionExists(context.Background(), "vhu_admission"); !ok {
		t.Fatalf("wrapper did not reach the qdrant store")
	}
	if captured.URL != "http://qdrant:6333" {
		t.Fatalf("qdrant.URL: got=%q", captured.URL)
	}
}

func TestResolveVectorStoreClassifiesQdrantConfigErrors(t *testing.T) {
	origCfg := resolveQdrantConfig
	t.Cleanup(func() { resolveQdrantConfig = origCfg })

	cases := []struct {
		code qdrant.ConfigErrorCode
		want VectorProviderBootstrapErrorCode
	}{
		{qdrant.ConfigErrorMissingURL, VectorProviderBootstrapErrorMissingQdrantURL},
		{qdrant.ConfigErrorInvalidURL, VectorProviderBootstrapErrorInvalidQdrantURL},
		{qdrant.ConfigErrorInvalidVectorDim, VectorProviderBootstrapErrorInvalidQdrantVector},
		{qdrant.ConfigErrorInvalidDistance, VectorProviderBootstrapErrorQdrantConfigFailed},
	}
	for _, tc := range cases {
		code := tc.code
		resolveQdrantConfig = func() (qdrant.Config, error) {
			return qdrant.Config{}, &qdrant.ConfigError{Code: code}
		}
		_, err := resolveVectorStore(context.Background(), logger.NewNop(), VectorProviderQdrant)
		if got := vectorProviderBootstrapErrorCode(err); got != tc.want {
			t.Fatalf("%s: code got=%s want=%s", tc.code, got, tc.want)
		}
	}
}

func TestResolveVectorStoreConnectFailure(t *testing.T) {
	origNew := newWeaviateVectorStore
	t.Cleanup(func() { newWeaviateVectorStore = origNew })
	newWeaviateVectorStore = func(*logger.Logger, weaviate.Config) (vectorstore.Store, error) {
		return nil, errors.New("dial tcp 127.0.0.1:8080: connection refused")
	}

	_, err := resolveVectorStore(context.Background(), logger.NewNop(), VectorProviderWeaviate)
	var bootstrapErr *VectorProviderBootstrapError
	if !errors.As(err, &bootstrapErr) {
		t.Fatalf("expected VectorProviderBootstrapError, got %T (%v)", err, err)
	}
	if bootstrapErr.Code != VectorProviderBootstrapErrorConnectFailed || bootstrapErr.Provider != "weaviate" {
		t.Fatalf("unexpected bootstrap error: %+v", bootstrapErr)
	}
}

func TestResolveVectorStoreRejectsUnknownProvider(t *testing.T) {
	_, err := resolveVectorStore(context.Background(), logger.NewNop(), VectorProvider("pinecone"))
	if got := vectorProviderBootstrapErrorCode(err); got != VectorProviderBootstrapErrorInvalidProvider {
		t.Fatalf("code: got=%s want=%s", got, VectorProviderBootstrapErrorInvalidProvider)
	}
}

func TestResolveVectorStoreMemory(t *testing.T) {
	vs, err := resolveVectorStore(context.Background(), logger.NewNop(), VectorProviderMemory)
	if err != nil || vs == nil {
		t.Fatalf("memory provider: vs=%v err=%v", vs, err)
	}
}
