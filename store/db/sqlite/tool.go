package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/vectool/vectool/store"
)

// Tags and metadata are stored as JSON text; SQLite has no array or JSONB columns.

// CreateTool inserts a new tool row with a NULL vector_id.
func (d *DB) CreateTool(ctx context.Context, create *store.Tool) (*store.Tool, error) {
	tags, err := json.Marshal(create.Tags)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool tags")
	}
	metadata, err := json.Marshal(create.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool metadata")
	}

	stmt := `
		INSERT INTO tool (id, name, description, tags, metadata)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_ts, updated_ts
	`
	err = d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.Name,
		create.Description,
		string(tags),
		string(metadata),
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
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.VectorID != nil {
		where, args = append(where, "vector_id = ?"), append(args, *find.VectorID)
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
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
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
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = ?"), append(args, *update.Description)
	}
	if update.Tags != nil {
		tags, err := json.Marshal(*update.Tags)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal tool tags")
		}
		set, args = append(set, "tags = ?"), append(args, string(tags))
	}
	if update.Metadata != nil {
		metadata, err := json.Marshal(*update.Metadata)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal tool metadata")
		}
		set, args = append(set, "metadata = ?"), append(args, string(metadata))
	}
	if update.VectorID != nil {
		set, args = append(set, "vector_id = ?"), append(args, *update.VectorID)
	}
	set = append(set, "updated_ts = strftime('%s', 'now')")

	stmt := `
		UPDATE tool
		SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
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
	stmt := `DELETE FROM tool WHERE id = ?`
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

type scanner interface {
	Scan(dest ...any) error
}

func scanTool(row scanner) (*store.Tool, error) {
	var tool store.Tool
	var tags, metadata string
	err := row.Scan(
		&tool.ID,
		&tool.Name,
		&tool.Description,
		&tags,
		&metadata,
		&tool.VectorID,
		&tool.CreatedTs,
		&tool.UpdatedTs,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &tool.Tags); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal tool tags")
	}
	if err := json.Unmarshal([]byte(metadata), &tool.Metadata); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal tool metadata")
	}
	if tool.Tags == nil {
		tool.Tags = []string{}
	}
	if tool.Metadata == nil {
		tool.Metadata = map[string]any{}
	}

	return &tool, nil
}
