// Package storage persists monitored websites in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS websites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner TEXT NOT NULL,
	url TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_websites_owner ON websites(owner);
`

// Store is the website storage collaborator used by the monitor workflow.
// Owners are platform-scoped user keys; the per-owner website limit is
// enforced by the workflow, not here.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite website store, creating the schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddWebsite inserts one website record for owner.
func (s *Store) AddWebsite(ctx context.Context, owner, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	owner = strings.TrimSpace(owner)
	url = strings.TrimSpace(url)
	if owner == "" {
		return fmt.Errorf("owner is required")
	}
	if url == "" {
		return fmt.Errorf("url is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO websites (owner, url, created_at) VALUES (?, ?, ?)`,
		owner, url, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert website: %w", err)
	}
	return nil
}

// ListWebsites returns the owner's websites in insertion order.
func (s *Store) ListWebsites(ctx context.Context, owner string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT url FROM websites WHERE owner = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan website row: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate website rows: %w", err)
	}
	return urls, nil
}

// RemoveWebsite deletes the oldest record matching (owner, url). Removing
// a website that is not stored is not an error.
func (s *Store) RemoveWebsite(ctx context.Context, owner, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	owner = strings.TrimSpace(owner)
	url = strings.TrimSpace(url)
	if owner == "" {
		return fmt.Errorf("owner is required")
	}
	if url == "" {
		return fmt.Errorf("url is required")
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM websites WHERE id = (
			SELECT id FROM websites WHERE owner = ? AND url = ? ORDER BY id LIMIT 1
		)`, owner, url)
	if err != nil {
		return fmt.Errorf("delete website: %w", err)
	}
	return nil
}
