// Package vecindex defines the vector index boundary used for semantic tool
// search. The index stores one entry per embedded tool, keyed by a generated
// reference id, and answers k-nearest-neighbor queries by cosine similarity.
package vecindex

import "context"

// Payload is the non-vector metadata attached to an index entry. It mirrors
// the tool's text fields as of the last successful synchronization and is
// used to hydrate search hits back to relational rows.
type Payload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Hit is a single vector search result.
type Hit struct {
	ID      string
	Payload Payload
	Score   float32 // cosine similarity, higher is more similar
}

// Index is the vector index interface.
type Index interface {
	// EnsureCollection provisions the collection with the configured
	// dimensionality and cosine distance metric. Called once at startup.
	EnsureCollection(ctx context.Context) error

	// Upsert inserts or replaces the entry under id, overwriting both the
	// vector and the payload.
	Upsert(ctx context.Context, id string, vector []float32, payload Payload) error

	// Search returns the top-limit entries nearest to vector, ordered by
	// descending cosine similarity.
	Search(ctx context.Context, vector []float32, limit int) ([]Hit, error)

	// Delete removes the entry under id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
