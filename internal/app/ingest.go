package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/modules/ingestion"
	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// Ingester builds vector indices from local documents. It wires only the
// LLM embedder and the vector store.
type Ingester struct {
	Log      *logger.Logger
	Catalog  *modes.Catalog
	Pipeline *ingestion.Pipeline
}

func NewIngester(ctx context.Context) (*Ingester, error) {
	log, _, err := newLogger()
	if err != nil {
		return nil, err
	}
	cfg := LoadConfig(log)

	catalog, err := modes.LoadCatalog(cfg.ModesConfigPath)
	if err != nil {
		return nil, err
	}
	embedder, err := wireLLM(log, cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	vs, err := resolveVectorStore(ctx, log, cfg.VectorProvider)
	if err != nil {
		return nil, err
	}
	p, err := ingestion.New(log, vs, embedder, ingestion.Config{
		ChunkSize:    envutil.Int("INGEST_CHUNK_SIZE", 1000),
		ChunkOverlap: envutil.Int("INGEST_CHUNK_OVERLAP", 200),
		BatchSize:    envutil.Int("INGEST_BATCH_SIZE", 32),
		Concurrency:  envutil.Int("INGEST_CONCURRENCY", 4),
	})
	if err != nil {
		return nil, err
	}
	return &Ingester{Log: log, Catalog: catalog, Pipeline: p}, nil
}

// Run ingests one mode, or every indexed mode when mode is "all".
func (i *Ingester) Run(ctx context.Context, mode, root string) ([]ingestion.Summary, error) {
	mode = strings.TrimSpace(mode)
	if mode == "all" {
		return i.Pipeline.IngestAll(ctx, i.Catalog, root)
	}
	cfg, ok := i.Catalog.Lookup(mode)
	if !ok || !cfg.RequiresIndex() {
		return nil, fmt.Errorf("mode %q has no index (valid: admission, student-support, all)", mode)
	}
	sum, err := i.Pipeline.IngestMode(ctx, cfg, root)
	return []ingestion.Summary{sum}, err
}

func (i *Ingester) Close() {
	if i != nil && i.Log != nil {
		i.Log.Sync()
	}
}
