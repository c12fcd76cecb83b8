package store

import (
	"context"

	"github.com/google/uuid"
)

// SearchResultSummary is one entry of a recorded search result list.
// It is persisted as part of the search history row.
type SearchResultSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Metadata    map[string]any `json:"metadata"`
	Score       float32        `json:"score"`
}

// SearchHistory represents one recorded search query. Entries are append-only;
// they are never mutated or deleted.
type SearchHistory struct {
	ID             string
	Query          string
	Results        []SearchResultSummary
	ResultCount    int
	ResponseTimeMs int
	CreatedTs      int64
}

// FindSearchHistory is the find condition for search history entries.
type FindSearchHistory struct {
	ID     *string
	Limit  *int
	Offset *int
}

// CreateSearchHistory appends one search history entry.
func (s *Store) CreateSearchHistory(ctx context.Context, create *SearchHistory) (*SearchHistory, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	return s.driver.CreateSearchHistory(ctx, create)
}

// ListSearchHistory lists search history entries, most recent first.
func (s *Store) ListSearchHistory(ctx context.Context, find *FindSearchHistory) ([]*SearchHistory, error) {
	return s.driver.ListSearchHistory(ctx, find)
}
