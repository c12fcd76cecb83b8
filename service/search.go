package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vectool/vectool/store"
)

// SearchResponse is the result of one semantic search.
type SearchResponse struct {
	Query          string
	Results        []store.SearchResultSummary
	ResultCount    int
	ResponseTimeMs int
}

// Search embeds the query, retrieves the nearest index entries and hydrates
// each hit back to its relational row. Hits whose row no longer exists are
// silently dropped, so the result count may be less than limit. Result order
// is the index's order; no secondary sort is applied. One search history
// entry is appended per query.
func (s *ToolService) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		return nil, errors.Errorf("limit must be positive: %d", limit)
	}

	start := time.Now()

	vector, err := s.embedder.Embed(ctx, query)
	s.metrics.ObserveEmbedding(err)
	if err != nil {
		s.metrics.ObserveSearch(time.Since(start).Seconds(), 0, err)
		return nil, err
	}

	hits, err := s.index.Search(ctx, vector, limit)
	if err != nil {
		s.metrics.ObserveSearch(time.Since(start).Seconds(), 0, err)
		return nil, err
	}

	results := []store.SearchResultSummary{}
	for _, hit := range hits {
		tool, err := s.store.GetTool(ctx, hit.Payload.ID)
		if err != nil {
			s.metrics.ObserveSearch(time.Since(start).Seconds(), 0, err)
			return nil, err
		}
		if tool == nil {
			// Stale index entry; the row was deleted out from under it.
			continue
		}
		results = append(results, store.SearchResultSummary{
			ID:          tool.ID,
			Name:        tool.Name,
			Description: tool.Description,
			Tags:        tool.Tags,
			Metadata:    tool.Metadata,
			Score:       hit.Score,
		})
	}

	// Elapsed time is measured up to just before the history write.
	elapsed := int(time.Since(start).Milliseconds())

	_, err = s.store.CreateSearchHistory(ctx, &store.SearchHistory{
		Query:          query,
		Results:        results,
		ResultCount:    len(results),
		ResponseTimeMs: elapsed,
	})
	if err != nil {
		s.metrics.ObserveSearch(time.Since(start).Seconds(), len(results), err)
		return nil, err
	}

	s.metrics.ObserveSearch(time.Since(start).Seconds(), len(results), nil)

	return &SearchResponse{
		Query:          query,
		Results:        results,
		ResultCount:    len(results),
		ResponseTimeMs: elapsed,
	}, nil
}
