package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/vectool/vectool/store"
)

// CreateSearchHistory appends one search history row.
func (d *DB) CreateSearchHistory(ctx context.Context, create *store.SearchHistory) (*store.SearchHistory, error) {
	results, err := json.Marshal(create.Results)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search results")
	}

	stmt := `
		INSERT INTO search_history (id, query, results, result_count, response_time_ms)
		VALUES (` + placeholders(5) + `)
		RETURNING created_ts
	`
	err = d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.Query,
		results,
		create.ResultCount,
		create.ResponseTimeMs,
	).Scan(&create.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create search history")
	}

	return create, nil
}

// ListSearchHistory lists search history rows, most recent first.
func (d *DB) ListSearchHistory(ctx context.Context, find *store.FindSearchHistory) ([]*store.SearchHistory, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}

	query := `
		SELECT id, query, results, result_count, response_time_ms, created_ts
		FROM search_history
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
		return nil, errors.Wrap(err, "failed to list search history")
	}
	defer rows.Close()

	list := []*store.SearchHistory{}
	for rows.Next() {
		var entry store.SearchHistory
		var results []byte
		err := rows.Scan(
			&entry.ID,
			&entry.Query,
			&results,
			&entry.ResultCount,
			&entry.ResponseTimeMs,
			&entry.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan search history")
		}

		if len(results) > 0 {
			if err := json.Unmarshal(results, &entry.Results); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal search results")
			}
		}

		list = append(list, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
