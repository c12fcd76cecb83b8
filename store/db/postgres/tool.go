package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vectool/vectool/store"
)

// CreateTool inserts a new tool row. The vector_id column is left NULL;
// it is attached by a separate UpdateTool call once the embedding is indexed.
func (d *DB) CreateTool(ctx context.Context, create *store.Tool) (*store.Tool, error) {
	metadata, err := json.Marshal(create.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool metadata")
	}

	stmt := `
		INSERT INTO tool (id, name, description, tags, metadata)
		VALUES (` + placeholders(5) + `)
		RETURNING created_ts, updated_ts
	`
	err = d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.Name,
		create.Description,
		pq.Array(create.Tags),
		metadata,
	).Scan(&create.CreatedTs, &create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tool")
	}

	return create, nil
}

// ListTools lists tool rows matching the find condition, most recent first.
func (d *DB) ListTools(ctx context.Context, find *store.FindTool) ([]*store.Tool, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.VectorID != nil {
		where, args = append(where, "vector_id = "+placeholder(len(args)+1)), append(args, *find.VectorID)
	}
	if find.WithoutVector {
		where = append(where, "vector_id IS NULL")
	}

	query := `
		SELECT id, name, description, tags, metadata, vector_id, created_ts, updated_ts
		FROM tool
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET " + placeholder(len(args)+1)
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tools")
	}
	defer rows.Close()

	list := []*store.Tool{}
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, tool)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// UpdateTool applies the non-nil fields of the update and returns the updated row.
func (d *DB) UpdateTool(ctx context.Context, update *store.UpdateTool) (*store.Tool, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.Tags != nil {
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, pq.Array(*update.Tags))
	}
	if update.Metadata != nil {
		metadata, err := json.Marshal(*update.Metadata)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal tool metadata")
		}
		set, args = append(set, "metadata = "+placeholder(len(args)+1)), append(args, metadata)
	}
	if update.VectorID != nil {
		set, args = append(set, "vector_id = "+placeholder(len(args)+1)), append(args, *update.VectorID)
	}
	set = append(set, "updated_ts = CAST(EXTRACT(EPOCH FROM NOW()) AS BIGINT)")

	stmt := `
		UPDATE tool
		SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)+1) + `
		RETURNING id, name, description, tags, metadata, vector_id, created_ts, updated_ts
	`
	args = append(args, update.ID)

	tool, err := scanTool(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrToolNotFound
		}
		return nil, errors.Wrap(err, "failed to update tool")
	}

	return tool, nil
}

// DeleteTool deletes a tool row.
func (d *DB) DeleteTool(ctx context.Context, delete *store.DeleteTool) error {
	stmt := `DELETE FROM tool WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete tool")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrToolNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTool(row scanner) (*store.Tool, error) {
	var tool store.Tool
	var metadata []byte
	err := row.Scan(
		&tool.ID,
		&tool.Name,
		&tool.Description,
		pq.Array(&tool.Tags),
		&metadata,
		&tool.VectorID,
		&tool.CreatedTs,
		&tool.UpdatedTs,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &tool.Metadata); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal tool metadata")
		}
	}
	if tool.Metadata == nil {
		tool.Metadata = map[string]any{}
	}
	if tool.Tags == nil {
		tool.Tags = []string{}
	}

	return &tool, nil
}
