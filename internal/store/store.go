package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yangwenmai/leetreview/internal/model"
)

// DefaultKey is the document key the collection lives under.
const DefaultKey = "problems"

// ErrVersionConflict is returned by Save when another writer replaced the
// document after the caller last loaded it.
var ErrVersionConflict = errors.New("document version conflict")

// Verify at compile time that Store implements all interfaces.
var (
	_ DocumentReader = (*Store)(nil)
	_ DocumentWriter = (*Store)(nil)
)

// Store keeps the collection as a single JSON document in SQLite.
type Store struct {
	db  *sql.DB
	key string
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db, key: DefaultKey}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
// Add a new migration function in the migrations slice below.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema v%d is newer than supported v%d", version, currentSchemaVersion)
	}

	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: documents table
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}
	return nil
}

// migrateV1 creates the key-value document table (v0 → v1).
func (s *Store) migrateV1() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		version    INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Load reads the collection document. A missing document yields an empty
// snapshot at version 0. A document that no longer decodes is logged and
// treated as empty; its version is kept so the next Save replaces it.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var (
		raw     string
		version int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, version FROM documents WHERE key = ?`, s.key).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{Items: []model.Item{}}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read document %q: %w", s.key, err)
	}

	var items []model.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("discarding corrupt document", "key", s.key, "version", version, "error", err)
		return Snapshot{Items: []model.Item{}, Version: version}, nil
	}
	if items == nil {
		items = []model.Item{}
	}
	return Snapshot{Items: items, Version: version}, nil
}

// Save atomically replaces the document if it is still at version.
func (s *Store) Save(ctx context.Context, items []model.Item, version int64) (int64, error) {
	if items == nil {
		items = []model.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("encode document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM documents WHERE key = ?`, s.key).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return 0, fmt.Errorf("read version: %w", err)
	}
	if current != version {
		return 0, fmt.Errorf("%w: have v%d, stored v%d", ErrVersionConflict, version, current)
	}

	next := current + 1
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (key, value, version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		s.key, string(payload), next, now,
	); err != nil {
		return 0, fmt.Errorf("write document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}
