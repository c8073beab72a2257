package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

// ErrIndexUnavailable means a mode's index could not be loaded. It is fatal
// for the turn and never retried inside the turn.
var ErrIndexUnavailable = errors.New("retrieval index unavailable")

// Passage is one retrieved text span. It lives only for the current turn.
type Passage struct {
	Text   string
	Source string
}

// Index is the read-only retrieval capability of one mode.
type Index interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}

// Embedder turns text into vectors. llm.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Loader opens the index for a collection.
type Loader interface {
	Load(ctx context.Context, collection string) (Index, error)
}

// VectorLoader opens indices backed by a vector store. Loading fails when
// the collection was never ingested.
type VectorLoader struct {
	Store    vectorstore.Store
	Embedder Embedder
}

func (l VectorLoader) Load(ctx context.Context, collection string) (Index, error) {
	ok, err := l.Store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexUnavailable, collection, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: collection %q not found", ErrIndexUnavailable, collection)
	}
	return &vectorIndex{store: l.Store, embedder: l.Embedder, collection: collection}, nil
}

type vectorIndex struct {
	store      vectorstore.Store
	embedder   Embedder
	collection string
}

func (v *vectorIndex) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	vecs, err := v.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}
	matches, err := v.store.Search(ctx, v.collection, vecs[0], k)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCollectionNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}
	out := make([]Passage, 0, len(matches))
	for _, m := range matches {
		out = append(out, Passage{Text: m.Text, Source: m.Source})
	}
	return out, nil
}
