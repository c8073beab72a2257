package vectorstore

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned by Search when the collection was never
// created. Callers treat it as "index unavailable".
var ErrCollectionNotFound = errors.New("vector collection not found")

// Point is one indexed passage.
type Point struct {
	ID     string
	Vector []float32
	Text   string
	Source string
}

// Match is a search hit. Higher Score is closer.
type Match struct {
	ID     string
	Score  float64
	Text   string
	Source string
}

type Store interface {
	EnsureCollection(ctx context.Context, collection string, dim int) error
	CollectionExists(ctx context.Context, collection string) (bool, error)
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, k int) ([]Match, error)
	DeleteBySource(ctx context.Context, collection, source string) error
}
