package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Memory is a process-local Store using cosine similarity. It backs tests and
// the "memory" provider for local development.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	dim    int
	points map[string]Point
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{collections: map[string]*memCollection{}}
}

func (m *Memory) EnsureCollection(_ context.Context, collection string, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.collections[collection]; ok {
		if c.dim != dim {
			return fmt.Errorf("collection %q dimension mismatch: have=%d want=%d", collection, c.dim, dim)
		}
		return nil
	}
	m.collections[collection] = &memCollection{dim: dim, points: map[string]Point{}}
	return nil
}

func (m *Memory) CollectionExists(_ context.Context, collection string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[collection]
	return ok, nil
}

func (m *Memory) Upsert(_ context.Context, collection string, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return ErrCollectionNotFound
	}
	for _, p := range points {
		if len(p.Vector) != c.dim {
			return fmt.Errorf("point %q dimension mismatch: expected=%d got=%d", p.ID, c.dim, len(p.Vector))
		}
		c.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(_ context.Context, collection string, vector []float32, k int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	out := make([]Match, 0, len(c.points))
	for _, p := range c.points {
		out = append(out, Match{ID: p.ID, Score: cosine(vector, p.Vector), Text: p.Text, Source: p.Source})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *Memory) DeleteBySource(_ context.Context, collection, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return nil
	}
	for id, p := range c.points {
		if p.Source == source {
			delete(c.points, id)
		}
	}
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
