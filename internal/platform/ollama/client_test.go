package ollama

import (
	"testing"

	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(nil, ConfigFromEnv()); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewClient(logger.NewNop(), Config{ServerURL: "http://localhost:11434"}); err == nil {
		t.Fatalf("expected error without model")
	}
}

func TestNewClientFallsBackToChatModelForEmbeddings(t *testing.T) {
	c, err := NewClient(logger.NewNop(), Config{ServerURL: "http://localhost:11434", Model: "gemma2:2b"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.embedder == nil || c.chat == nil {
		t.Fatalf("expected both models to be initialised")
	}
}
