package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/internal/domain"
)

// MemoryIndex is an in-memory search.Index doing exact Euclidean scans. It
// backs tests and single-node deployments that run without a Qdrant server.
type MemoryIndex struct {
	mu          sync.RWMutex
	collections map[string]map[int64][]float32
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{collections: map[string]map[int64][]float32{}}
}

// CreateCollection creates an empty collection. Existing collections are
// kept as they are.
func (m *MemoryIndex) CreateCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = map[int64][]float32{}
	}
	return nil
}

// DropCollection deletes a collection and all its points.
func (m *MemoryIndex) DropCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

// Insert upserts one point per id.
func (m *MemoryIndex) Insert(_ context.Context, name string, ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrValidation, len(ids), len(vectors))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	collection, ok := m.collections[name]
	if !ok {
		collection = map[int64][]float32{}
		m.collections[name] = collection
	}
	for i, id := range ids {
		vector := make([]float32, len(vectors[i]))
		copy(vector, vectors[i])
		collection[id] = vector
	}
	return nil
}

// Delete removes the points with the given ids. Missing ids are ignored.
func (m *MemoryIndex) Delete(_ context.Context, name string, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	collection, ok := m.collections[name]
	if !ok {
		return nil
	}
	for _, id := range ids {
		delete(collection, id)
	}
	return nil
}

// Search returns up to topK nearest neighbors, ascending by distance.
func (m *MemoryIndex) Search(_ context.Context, name string, vector []float32, topK int) ([]search.Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	collection, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: collection %s not found", domain.ErrIndexUnavailable, name)
	}

	hits := make([]search.Hit, 0, len(collection))
	for id, stored := range collection {
		hits = append(hits, search.NewHit(id, euclidean(vector, stored)))
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance() == hits[j].Distance() {
			return hits[i].ID() < hits[j].ID()
		}
		return hits[i].Distance() < hits[j].Distance()
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func euclidean(a, b []float32) float32 {
	var sum float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
