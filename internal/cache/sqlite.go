package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pharmaguard-server/internal/domain"
)

// SQLiteStore implements domain.ExplanationStore on SQLite, the default
// durable backend. Entries survive process restarts.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite explanation store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS explanations (
		cache_key TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		template_id TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_explanations_template ON explanations(template_id);
	CREATE INDEX IF NOT EXISTS idx_explanations_created_at ON explanations(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Get returns the entry for key, or (nil, nil) on a miss.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	entry := &domain.CacheEntry{}
	err := s.db.QueryRowContext(ctx, `
		SELECT cache_key, text, template_id, provider, model, created_at
		FROM explanations
		WHERE cache_key = ?
	`, key).Scan(&entry.Key, &entry.Text, &entry.TemplateID, &entry.Provider, &entry.Model, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return entry, nil
}

// Put appends an entry. Idempotent for identical content; a different
// text under an existing key violates the content-addressing invariant
// and fails with CacheKeyConflict, keeping the original entry.
func (s *SQLiteStore) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	existing, err := s.Get(ctx, entry.Key)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Text == entry.Text {
			return nil
		}
		return fmt.Errorf("key %s: %w", entry.Key, domain.ErrCacheKeyConflict)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// INSERT OR IGNORE keeps the first writer's entry if two processes
	// race past the existence check; the digest key guarantees their
	// contents are interchangeable.
	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO explanations (cache_key, text, template_id, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Key, entry.Text, entry.TemplateID, entry.Provider, entry.Model, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Count returns the number of cached explanations.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM explanations").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
