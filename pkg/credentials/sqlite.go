package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/storefront/pkg/notifyclient"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS credentials (
	profile    TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore is a durable CredentialStore.
type SQLiteStore struct {
	db      *sql.DB
	profile string
	now     func() time.Time
}

var _ notifyclient.CredentialStore = (*SQLiteStore)(nil)

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithProfile selects the row the store reads and writes.
func WithProfile(profile string) SQLiteOption {
	return func(s *SQLiteStore) {
		if profile != "" {
			s.profile = profile
		}
	}
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrOpenStore, fmt.Errorf("create directory: %w", err))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Join(ErrOpenStore, err)
	}

	s := &SQLiteStore{db: db, profile: "default", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpenStore, err)
	}
	return s, nil
}

// Open builds a SQLiteStore from cfg.
func Open(cfg Config) (*SQLiteStore, error) {
	return NewSQLiteStore(cfg.ResolvedPath(), WithProfile(cfg.Profile))
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Token returns the stored token or notifyclient.ErrNoCredential.
func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE profile = ?`, s.profile).Scan(&token)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", notifyclient.ErrNoCredential
	case err != nil:
		return "", fmt.Errorf("credentials: read token: %w", err)
	}
	return token, nil
}

// SetToken stores token, replacing any previous one.
func (s *SQLiteStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (profile, token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		s.profile, token, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("credentials: write token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("credentials: clear token: %w", err)
	}
	return nil
}
