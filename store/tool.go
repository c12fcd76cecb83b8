package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrToolNotFound is returned when an operation targets a tool that does not exist.
var ErrToolNotFound = errors.New("tool not found")

// Tool represents a registered tool record.
type Tool struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	Metadata    map[string]any
	// VectorID links the record to its entry in the vector index.
	// It stays nil until the record has been embedded and indexed.
	VectorID  *string
	CreatedTs int64
	UpdatedTs int64
}

// FindTool is the find condition for tools.
type FindTool struct {
	ID       *string
	VectorID *string
	// WithoutVector selects only tools that have no vector reference yet.
	WithoutVector bool
	Limit         *int
	Offset        *int
}

// UpdateTool is the update condition for a tool. Nil fields are left unchanged.
type UpdateTool struct {
	ID          string
	Name        *string
	Description *string
	Tags        *[]string
	Metadata    *map[string]any
	VectorID    *string
}

// DeleteTool is the delete condition for a tool.
type DeleteTool struct {
	ID string
}

// CreateTool creates a new tool record. The vector reference is always nil at
// creation time; it is attached separately once the embedding has been indexed.
func (s *Store) CreateTool(ctx context.Context, create *Tool) (*Tool, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	if create.Tags == nil {
		create.Tags = []string{}
	}
	if create.Metadata == nil {
		create.Metadata = map[string]any{}
	}
	create.VectorID = nil
	return s.driver.CreateTool(ctx, create)
}

// GetTool gets a tool by its id. Returns nil if no such tool exists.
func (s *Store) GetTool(ctx context.Context, id string) (*Tool, error) {
	list, err := s.driver.ListTools(ctx, &FindTool{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListTools lists tools matching the find condition.
func (s *Store) ListTools(ctx context.Context, find *FindTool) ([]*Tool, error) {
	return s.driver.ListTools(ctx, find)
}

// UpdateTool updates a tool and returns the updated record.
func (s *Store) UpdateTool(ctx context.Context, update *UpdateTool) (*Tool, error) {
	return s.driver.UpdateTool(ctx, update)
}

// DeleteTool deletes a tool by its id.
func (s *Store) DeleteTool(ctx context.Context, delete *DeleteTool) error {
	return s.driver.DeleteTool(ctx, delete)
}

// AttachToolVector records the vector reference for a tool after its embedding
// has been written to the vector index.
func (s *Store) AttachToolVector(ctx context.Context, toolID, vectorID string) (*Tool, error) {
	return s.driver.UpdateTool(ctx, &UpdateTool{ID: toolID, VectorID: &vectorID})
}

// FindToolsWithoutVector finds tools that have not been embedded yet.
func (s *Store) FindToolsWithoutVector(ctx context.Context) ([]*Tool, error) {
	return s.driver.ListTools(ctx, &FindTool{WithoutVector: true})
}
