package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed matrix cache with the same layout as SQLMatrixCache.
// Used by the single-binary deployment where no Postgres is available.
type SqliteMatrixCache struct {
	DB *sql.DB
}

func NewSqliteMatrixCache(db *sql.DB) *SqliteMatrixCache {
	return &SqliteMatrixCache{DB: db}
}

func (s *SqliteMatrixCache) Get(ctx context.Context, key string) ([][]int64, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("matrix cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get matrix cache: key must not be empty")
	}

	var size int
	err := s.DB.QueryRowContext(ctx, `SELECT size FROM matrix_groups WHERE group_key = ?;`, key).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: query matrix_groups: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
        row_index,
        costs
    FROM matrix_rows
    WHERE group_key = ?
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

func (s *SqliteMatrixCache) Put(ctx context.Context, key string, matrix [][]int64) error {
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
	INSERT OR REPLACE INTO matrix_groups (group_key, size, updated_at)
    VALUES (?, ?, CURRENT_TIMESTAMP);
	`, key, len(matrix)); err != nil {
		return fmt.Errorf("insert matrix cache: upsert group: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM matrix_rows WHERE group_key = ?;`, key); err != nil {
		return fmt.Errorf("insert matrix cache: clear rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matrix_rows (
        group_key,
        row_index,
        costs
    )
    VALUES (?, ?, ?)
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
