package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lalith-99/autoapprove/internal/models"
	"github.com/lalith-99/autoapprove/internal/repository"
)

// snapshotKey is the primary key of the single row holding the document.
const snapshotKey = "bot_data"

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SnapshotStore keeps the whole bot document in one jsonb row. It is the
// same full-overwrite model as the JSON file, just on a server.
type SnapshotStore struct {
	pool DB
}

// NewSnapshotStore returns a store that keeps the snapshot in one jsonb row.
func NewSnapshotStore(pool DB) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Name identifies the backend in logs.
func (s *SnapshotStore) Name() string {
	return "postgres"
}

// EnsureSchema creates the snapshot table if it is missing.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS bot_snapshots (
			key        text PRIMARY KEY,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create bot_snapshots: %w", err)
	}
	return nil
}

// Load reads the snapshot row. No row yields repository.ErrNotFound.
func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	query := `
		SELECT doc
		FROM bot_snapshots
		WHERE key = $1`

	var doc []byte
	err := s.pool.QueryRow(ctx, query, snapshotKey).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
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

	// Upsert keeps exactly one row; the document is replaced wholesale.
	query := `
		INSERT INTO bot_snapshots (key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, query, snapshotKey, doc); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
