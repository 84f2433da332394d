package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

const createSqliteMatrixGroupsQuery = `
	CREATE TABLE IF NOT EXISTS matrix_groups (
        group_key TEXT PRIMARY KEY,
        size INTEGER NOT NULL,
        updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
    );
	`

const createSqliteMatrixRowsQuery = `
	CREATE TABLE IF NOT EXISTS matrix_rows (
        group_key TEXT NOT NULL,
        row_index INTEGER NOT NULL,
        costs TEXT NOT NULL,
        PRIMARY KEY (group_key, row_index)
    );
	`

const createPostgresMatrixGroupsQuery = `
	CREATE TABLE IF NOT EXISTS matrix_groups (
        group_key TEXT PRIMARY KEY,
        size INTEGER NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );
	`

const createPostgresMatrixRowsQuery = `
	CREATE TABLE IF NOT EXISTS matrix_rows (
        group_key TEXT NOT NULL REFERENCES matrix_groups(group_key) ON DELETE CASCADE,
        row_index INTEGER NOT NULL,
        costs TEXT NOT NULL,
        PRIMARY KEY (group_key, row_index)
    );
	`

// InitSqliteSchema creates the matrix cache tables in a SQLite database.
func InitSqliteSchema(db *sql.DB) error {
	return initSchema(db, createSqliteMatrixGroupsQuery, createSqliteMatrixRowsQuery)
}

// InitPostgresSchema creates the matrix cache tables in Postgres.
func InitPostgresSchema(db *sql.DB) error {
	return initSchema(db, createPostgresMatrixGroupsQuery, createPostgresMatrixRowsQuery)
}

func initSchema(db *sql.DB, statements ...string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
