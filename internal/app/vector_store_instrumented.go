package app

import (
	"context"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

type instrumentedVectorStore struct {
	provider string
	inner    vectorstore.Store
	metrics  *observability.Metrics
}

var _ vectorstore.Store = (*instrumentedVectorStore)(nil)

func instrumentVectorStore(provider string, inner vectorstore.Store) vectorstore.Store {
	if inner == nil {
		return nil
	}
	return &instrumentedVectorStore{
		provider: provider,
		inner:    inner,
		metrics:  observability.Current(),
	}
}

func (s *instrumentedVectorStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	start := time.Now()
	err := s.inner.EnsureCollection(ctx, collection, dim)
	s.observe("ensure_collection", err, time.Since(start))
	return err
}

func (s *instrumentedVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	start := time.Now()
	ok, err := s.inner.CollectionExists(ctx, collection)
	s.observe("collection_exists", err, time.Since(start))
	return ok, err
}

func (s *instrumentedVectorStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	start := time.Now()
	err := s.inner.Upsert(ctx, collection, points)
	s.observe("upsert", err, time.Since(start))
	return err
}

func (s *instrumentedVectorStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]vectorstore.Match, error) {
	start := time.Now()
	out, err := s.inner.Search(ctx, collection, vector, k)
	s.observe("search", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) DeleteBySource(ctx context.Context, collection, source string) error {
	start := time.Now()
	err := s.inner.DeleteBySource(ctx, collection, source)
	s.observe("delete_by_source", err, time.Since(start))
	return err
}

func (s *instrumentedVectorStore) observe(operation string, err error, dur time.Duration) {
	if s == nil || s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveVectorStoreOperation(s.provider, operation, status, dur)
}
