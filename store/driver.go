package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for the database driver.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	CreateTool(ctx context.Context, create *Tool) (*Tool, error)
	ListTools(ctx context.Context, find *FindTool) ([]*Tool, error)
	UpdateTool(ctx context.Context, update *UpdateTool) (*Tool, error)
	DeleteTool(ctx context.Context, delete *DeleteTool) error

	CreateSearchHistory(ctx context.Context, create *SearchHistory) (*SearchHistory, error)
	ListSearchHistory(ctx context.Context, find *FindSearchHistory) ([]*SearchHistory, error)
}
