// Package service implements the tool registry operations: CRUD with vector
// index synchronization, semantic search, and embedding backfill.
package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vectool/vectool/ai"
	"github.com/vectool/vectool/metrics"
	"github.com/vectool/vectool/store"
	"github.com/vectool/vectool/vecindex"
)

// ToolService coordinates the relational store, the embedding provider and
// the vector index. All dependencies are injected once at construction; the
// service itself is stateless.
type ToolService struct {
	store    *store.Store
	embedder ai.EmbeddingService
	index    vecindex.Index
	metrics  *metrics.Metrics
}

// New creates a new ToolService. metrics may be nil.
func New(s *store.Store, embedder ai.EmbeddingService, index vecindex.Index, m *metrics.Metrics) *ToolService {
	return &ToolService{
		store:    s,
		embedder: embedder,
		index:    index,
		metrics:  m,
	}
}

// CreateToolRequest is the input for CreateTool.
type CreateToolRequest struct {
	Name        string
	Description string
	Tags        []string
	Metadata    map[string]any
}

// UpdateToolRequest is the input for UpdateTool. Nil fields are left unchanged.
type UpdateToolRequest struct {
	Name        *string
	Description *string
	Tags        *[]string
	Metadata    *map[string]any
}

// CreateTool inserts the tool, embeds its text and attaches the vector
// reference. The relational insert happens first because the tool id is part
// of the index payload; the vector reference is attached only after the index
// upsert succeeded, so the record is briefly live but unsearchable.
func (s *ToolService) CreateTool(ctx context.Context, req *CreateToolRequest) (*store.Tool, error) {
	if req.Name == "" {
		return nil, errors.New("tool name required")
	}

	tool, err := s.store.CreateTool(ctx, &store.Tool{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	vectorID, err := s.syncOnCreate(ctx, tool)
	if err != nil {
		return nil, err
	}

	return s.store.AttachToolVector(ctx, tool.ID, vectorID)
}

// GetTool gets a tool by id. Returns store.ErrToolNotFound if it does not exist.
func (s *ToolService) GetTool(ctx context.Context, id string) (*store.Tool, error) {
	tool, err := s.store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool == nil {
		return nil, store.ErrToolNotFound
	}
	return tool, nil
}

// ListTools lists tools, most recent first.
func (s *ToolService) ListTools(ctx context.Context, offset, limit int) ([]*store.Tool, error) {
	return s.store.ListTools(ctx, &store.FindTool{Limit: &limit, Offset: &offset})
}

// UpdateTool applies the update and re-synchronizes the vector index entry.
// A tool that was never synchronized keeps its text changes out of the index;
// see syncOnUpdate.
func (s *ToolService) UpdateTool(ctx context.Context, id string, req *UpdateToolRequest) (*store.Tool, error) {
	tool, err := s.store.UpdateTool(ctx, &store.UpdateTool{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	if err := s.syncOnUpdate(ctx, tool); err != nil {
		return nil, err
	}

	return tool, nil
}

// DeleteTool removes the vector index entry first, then the relational row.
// Returns store.ErrToolNotFound if the tool does not exist.
func (s *ToolService) DeleteTool(ctx context.Context, id string) error {
	tool, err := s.store.GetTool(ctx, id)
	if err != nil {
		return err
	}
	if tool == nil {
		return store.ErrToolNotFound
	}

	if err := s.syncOnDelete(ctx, tool.VectorID); err != nil {
		return err
	}

	return s.store.DeleteTool(ctx, &store.DeleteTool{ID: id})
}
