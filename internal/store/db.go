package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

const memoryPath = ":memory:"

// NewDB opens the session database at path, creating its folder if needed.
// ":memory:" opens a throwaway database.
func NewDB(path string) (*sql.DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating database folder: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	// keep extensions next to the database instead of ~/.duckdb
	if path != memoryPath {
		if _, err := db.Exec(fmt.Sprintf("SET extension_directory = '%s'", filepath.Dir(path))); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting extension directory: %w", err)
		}
	}

	return db, nil
}
