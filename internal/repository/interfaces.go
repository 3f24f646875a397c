package repository

import (
	"context"
	"errors"

	"github.com/lalith-99/autoapprove/internal/models"
)

// ErrNotFound is returned by SnapshotRepository.Load when nothing has been
// persisted yet. Callers treat it as "start empty".
var ErrNotFound = errors.New("snapshot not found")

// Every method takes a context.Context first: the postgres, sqlite and redis
// implementations do network or disk I/O and honour cancellation. The file
// implementation only checks ctx.Err() before touching the disk.

// SnapshotRepository persists the whole bot document. There are no partial
// writes: Save always replaces what Load would return.
type SnapshotRepository interface {
	// Load returns the last saved snapshot, or ErrNotFound.
	Load(ctx context.Context) (*models.Snapshot, error)

	// Save overwrites the stored snapshot with snap.
	Save(ctx context.Context, snap *models.Snapshot) error

	// Name identifies the backend in logs ("file", "postgres", "sqlite").
	Name() string
}

// SessionRepository holds per-user transient flags. Nothing here is part of
// the snapshot; the in-memory implementation loses everything on restart.
type SessionRepository interface {
	// SetAwaitingRequest arms or clears the "next text is a content request" flag.
	SetAwaitingRequest(ctx context.Context, userID int64, awaiting bool) error

	// AwaitingRequest reports whether the flag is armed for userID.
	AwaitingRequest(ctx context.Context, userID int64) (bool, error)
}
