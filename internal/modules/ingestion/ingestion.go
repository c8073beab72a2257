package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

var ErrNoDocuments = errors.New("no documents to ingest")

// Embedder turns text into vectors. llm.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	Concurrency  int
}

func DefaultConfig() Config {
	return Config{ChunkSize: 1000, ChunkOverlap: 200, BatchSize: 32, Concurrency: 4}
}

type Summary struct {
	Mode       modes.Mode
	Collection string
	Files      int
	Chunks     int
	Skipped    []string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Pipeline struct {
	log      *logger.Logger
	store    vectorstore.Store
	embedder Embedder
	cfg      Config
}

func New(log *logger.Logger, store vectorstore.Store, embedder Embedder, cfg Config) (*Pipeline, error) {
	if log == nil || store == nil || embedder == nil {
		return nil, fmt.Errorf("ingestion: logger, vector store and embedder are required")
	}
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return &Pipeline{log: log.With("service", "IngestionPipeline"), store: store, embedder: embedder, cfg: cfg}, nil
}

type chunk struct {
	id     string
	source string
	text   string
}

// IngestMode rebuilds the mode's collection from root/<mode>/. Points of a
// re-ingested file are replaced; files no longer present are left alone.
func (p *Pipeline) IngestMode(ctx context.Context, mode modes.Config, root string) (Summary, error) {
	sum := Summary{Mode: mode.ID, Collection: mode.Collection, StartedAt: time.Now().UTC()}
	if !mode.RequiresIndex() {
		return sum, fmt.Errorf("mode %s has no index to ingest", mode.ID)
	}
	dir := filepath.Join(root, string(mode.ID))

	files, skipped, err := sourceFiles(dir)
	if err != nil {
		return sum, fmt.Errorf("scan %s: %w", dir, err)
	}
	sum.Skipped = skipped
	if len(files) == 0 {
		return sum, fmt.Errorf("%w in %s (add .txt, .md or .pdf files)", ErrNoDocuments, dir)
	}

	var chunks []chunk
	for _, rel := range files {
		texts, err := loadChunks(ctx, filepath.Join(dir, filepath.FromSlash(rel)), p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		if err != nil {
			return sum, fmt.Errorf("read %s: %w", rel, err)
		}
		for i, t := range texts {
			chunks = append(chunks, chunk{id: fmt.Sprintf("%s#%d", rel, i), source: rel, text: t})
		}
		sum.Files++
		p.log.Debug("loaded source file", "mode", mode.ID, "file", rel, "chunks", len(texts))
	}
	if len(chunks) == 0 {
		return sum, fmt.Errorf("%w: %s produced no text", ErrNoDocuments, dir)
	}

	vectors, err := p.embed(ctx, chunks)
	if err != nil {
		return sum, err
	}
	if err := p.store.EnsureCollection(ctx, mode.Collection, len(vectors[0])); err != nil {
		return sum, fmt.Errorf("ensure collection %s: %w", mode.Collection, err)
	}
	for _, rel := range files {
		if err := p.store.DeleteBySource(ctx, mode.Collection, rel); err != nil {
			return sum, fmt.Errorf("clear %s: %w", rel, err)
		}
	}

	for start := 0; start < len(chunks); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(chunks))
		points := make([]vectorstore.Point, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, vectorstore.Point{
				ID:     chunks[i].id,
				Vector: vectors[i],
				Text:   chunks[i].text,
				Source: chunks[i].source,
			})
		}
		if err := p.store.Upsert(ctx, mode.Collection, points); err != nil {
			return sum, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}

	sum.Chunks = len(chunks)
	sum.FinishedAt = time.Now().UTC()
	p.log.Info("mode ingested",
		"mode", mode.ID,
		"collection", mode.Collection,
		"files", sum.Files,
		"chunks", sum.Chunks,
		"skipped", len(sum.Skipped),
		"elapsed_ms", sum.FinishedAt.Sub(sum.StartedAt).Milliseconds(),
	)
	return sum, nil
}

// embed runs batches concurrently; vectors keep chunk order.
func (p *Pipeline) embed(ctx context.Context, chunks []chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for start := 0; start < len(chunks); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.text)
			}
			out, err := p.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", start, err)
			}
			if len(out) != len(texts) {
				return fmt.Errorf("embed batch at %d: got %d vectors for %d chunks", start, len(out), len(texts))
			}
			copy(vectors[start:end], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return vectors, nil
}

// IngestAll ingests every indexed mode, stopping at the first failure.
func (p *Pipeline) IngestAll(ctx context.Context, catalog *modes.Catalog, root string) ([]Summary, error) {
	var out []Summary
	for _, m := range catalog.Indexed() {
		s, err := p.IngestMode(ctx, m, root)
		out = append(out, s)
		if err != nil {
			return out, fmt.Errorf("ingest %s: %w", m.ID, err)
		}
	}
	return out, nil
}
