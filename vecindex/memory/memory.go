// Package memory implements an in-process vector index with an exact cosine
// scan. It backs sqlite deployments and tests; production deployments use
// the pgvector index.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/vectool/vectool/vecindex"
)

type entry struct {
	vector  []float32
	payload vecindex.Payload
}

// Index is an in-memory vector index. Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string // insertion order, keeps scans deterministic
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{entries: map[string]entry{}}
}

// EnsureCollection is a no-op for the in-memory index.
func (x *Index) EnsureCollection(_ context.Context) error {
	return nil
}

// Len returns the number of entries in the index.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Upsert inserts or replaces the entry under id.
func (x *Index) Upsert(_ context.Context, id string, vector []float32, payload vecindex.Payload) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	vec := make([]float32, len(vector))
	copy(vec, vector)
	if _, ok := x.entries[id]; !ok {
		x.order = append(x.order, id)
	}
	x.entries[id] = entry{vector: vec, payload: payload}
	return nil
}

// Search scans all entries and returns the top-limit by cosine similarity.
func (x *Index) Search(_ context.Context, vector []float32, limit int) ([]vecindex.Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]vecindex.Hit, 0, len(x.entries))
	for _, id := range x.order {
		e, ok := x.entries[id]
		if !ok {
			continue
		}
		hits = append(hits, vecindex.Hit{
			ID:      id,
			Payload: e.payload,
			Score:   cosineSimilarity(vector, e.vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Delete removes the entry under id. Deleting a missing id succeeds.
func (x *Index) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.entries[id]; !ok {
		return nil
	}
	delete(x.entries, id)
	for i, key := range x.order {
		if key == id {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
