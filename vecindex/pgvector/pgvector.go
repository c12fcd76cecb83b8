// Package pgvector implements the vector index on PostgreSQL with the
// pgvector extension.
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/vectool/vectool/vecindex"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Index is a pgvector-backed vector index. It holds its own connection and
// shares no transaction with the relational store; a write here and a write
// there are two independent operations.
type Index struct {
	db         *sql.DB
	table      string
	dimensions int
}

// New creates a pgvector index over the given connection.
func New(db *sql.DB, table string, dimensions int) (*Index, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, errors.Errorf("invalid vector table name: %s", table)
	}
	if dimensions <= 0 {
		return nil, errors.Errorf("invalid vector dimensions: %d", dimensions)
	}
	return &Index{db: db, table: table, dimensions: dimensions}, nil
}

// Open opens a dedicated connection for the index.
func Open(dsn, table string, dimensions int) (*Index, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vector db with dsn: %s", dsn)
	}
	return New(db, table, dimensions)
}

func (x *Index) Close() error {
	return x.db.Close()
}

// EnsureCollection creates the extension and the vector table if missing.
func (x *Index) EnsureCollection(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}'
		);
	`, x.table, x.dimensions)

	if _, err := x.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrapf(err, "failed to provision vector table %s", x.table)
	}
	return nil
}

// Upsert inserts or replaces the entry under id.
func (x *Index) Upsert(ctx context.Context, id string, vector []float32, payload vecindex.Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			payload = EXCLUDED.payload
	`, x.table)

	if _, err := x.db.ExecContext(ctx, stmt, id, pgvector.NewVector(vector), data); err != nil {
		return errors.Wrap(err, "failed to upsert vector")
	}
	return nil
}

// Search returns the top-limit entries by cosine similarity.
// The <=> operator computes cosine distance (1 - cosine_similarity),
// so ordering by distance ASC yields the most similar entries first.
func (x *Index) Search(ctx context.Context, vector []float32, limit int) ([]vecindex.Hit, error) {
	query := fmt.Sprintf(`
		SELECT id, payload, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $2
		LIMIT $3
	`, x.table)

	v := pgvector.NewVector(vector)
	rows, err := x.db.QueryContext(ctx, query, v, v, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search vectors")
	}
	defer rows.Close()

	hits := []vecindex.Hit{}
	for rows.Next() {
		var hit vecindex.Hit
		var payload []byte
		if err := rows.Scan(&hit.ID, &payload, &hit.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &hit.Payload); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal payload")
			}
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// Delete removes the entry under id. Deleting a missing id succeeds.
func (x *Index) Delete(ctx context.Context, id string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, x.table)
	if _, err := x.db.ExecContext(ctx, stmt, id); err != nil {
		return errors.Wrap(err, "failed to delete vector")
	}
	return nil
}
