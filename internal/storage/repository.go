// Package storage persists all fintrack state in a single SQLite database.
// Queries live in per-entity files; everything money-valued round-trips
// through decimal text to keep amounts exact.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// FK enforcement is off by default in SQLite; the schema relies on
	// ON DELETE SET NULL / CASCADE, so turn it on per connection.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetSessionByToken resolves a bearer token to the session it identifies.
// Expiry is checked by the caller so an expired session is distinguishable
// from a missing one in logs.
func (r *SQLiteRepository) GetSessionByToken(ctx context.Context, token string) (core.Session, error) {
	var (
		s         core.Session
		expiresAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, expires_at, user_id FROM sessions WHERE token = ?`,
		token,
	).Scan(&s.ID, &s.Token, &expiresAt, &s.UserID)
	if err == sql.ErrNoRows {
		return core.Session{}, ErrNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("get session: %w", err)
	}
	if s.ExpiresAt, err = decodeTime(expiresAt); err != nil {
		return core.Session{}, err
	}
	return s, nil
}
