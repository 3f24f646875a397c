package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lalith-99/autoapprove/internal/models"
	"github.com/lalith-99/autoapprove/internal/repository"
)

const snapshotKey = "bot_data"

// SnapshotStore keeps the bot document as a JSON text column in SQLite.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore returns a store that keeps the snapshot in one row.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Name identifies the backend in logs.
func (s *SnapshotStore) Name() string {
	return "sqlite"
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS bot_snapshots (
			key        TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create bot_snapshots: %w", err)
	}
	return nil
}

// Load reads the snapshot row. No row yields repository.ErrNotFound.
func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM bot_snapshots WHERE key = ?`, snapshotKey).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save upserts the snapshot row.
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `
		INSERT INTO bot_snapshots (key, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, snapshotKey, string(doc), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
