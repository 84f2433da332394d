package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"warehouse-route-service/internal/platform/obs"
)

// SQLMatrixCache is a Postgres-backed matrix cache.
// A matrix is stored as one header row plus one JSON-encoded row per origin.
type SQLMatrixCache struct {
	DB *sql.DB
}

func NewSQLMatrixCache(db *sql.DB) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db}
}

func (s *SQLMatrixCache) Get(ctx context.Context, key string) (_ [][]int64, _ bool, err error) {
	defer obs.Time(ctx, "matrix.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("matrix cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get matrix cache: key must not be empty")
	}

	var size int
	err = s.DB.QueryRowContext(ctx, `
	SELECT size FROM matrix_groups WHERE group_key = $1;
	`, key).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: query matrix_groups: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT row_index, costs
    FROM matrix_rows
    WHERE group_key = $1
    ORDER BY row_index;
	`, key)
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: query matrix_rows: %w", err)
	}
	defer rows.Close()

	m, err := scanMatrixRows(rows, size)
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache key=%q: %w", key, err)
	}
	return m, true, nil
}

func (s *SQLMatrixCache) Put(ctx context.Context, key string, matrix [][]int64) (err error) {
	defer obs.Time(ctx, "matrix.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO matrix_groups (group_key, size, updated_at)
    VALUES ($1, $2, now())
	ON CONFLICT (group_key) DO UPDATE
	SET size = EXCLUDED.size,
		updated_at = EXCLUDED.updated_at;
	`, key, len(matrix)); err != nil {
		return fmt.Errorf("insert matrix cache: upsert group: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM matrix_rows WHERE group_key = $1;`, key); err != nil {
		return fmt.Errorf("insert matrix cache: clear rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matrix_rows (group_key, row_index, costs)
    VALUES ($1, $2, $3);
	`)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range matrix {
		costs, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("insert matrix cache row=%d: encode: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, key, i, string(costs)); err != nil {
			return fmt.Errorf("insert matrix cache row=%d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert matrix cache commit: %w", err)
	}
	return nil
}

// scanMatrixRows decodes ordered (row_index, costs) rows into a size x size matrix.
func scanMatrixRows(rows *sql.Rows, size int) ([][]int64, error) {
	out := make([][]int64, 0, size)
	for rows.Next() {
		var idx int
		var costs string
		if err := rows.Scan(&idx, &costs); err != nil {
			return nil, fmt.Errorf("scan rows: %w", err)
		}
		if idx != len(out) {
			return nil, fmt.Errorf("row %d missing", len(out))
		}

		var row []int64
		if err := json.Unmarshal([]byte(costs), &row); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", idx, err)
		}
		if len(row) != size {
			return nil, fmt.Errorf("row %d has %d entries, want %d", idx, len(row), size)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("got %d rows, want %d", len(out), size)
	}
	return out, nil
}
