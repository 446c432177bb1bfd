// Package store persists relaxed layout snapshots.
//
// A [Store] keeps [graph.Snapshot] values by their UUID. Two backends are
// provided:
//   - [FileStore]: one JSON file per snapshot, for the CLI and single-node servers
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Missing snapshots are reported with an errors.ErrCodeNotFound error, and
// malformed IDs with errors.ErrCodeInvalidInput, so callers can map both to
// user-facing responses without inspecting backend errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/graph"
	"github.com/matzehuels/netforce/pkg/observability"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get returns the snapshot with the given ID.
	Get(ctx context.Context, id string) (*graph.Snapshot, error)

	// Put stores snap under snap.ID, replacing any previous version.
	Put(ctx context.Context, snap *graph.Snapshot) error

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all snapshots, newest first.
	List(ctx context.Context) ([]graph.Summary, error)

	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
}

// checkPut validates a snapshot before it is written.
func checkPut(snap *graph.Snapshot) error {
	if snap == nil {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot is nil")
	}
	if err := errors.ValidateSnapshotID(snap.ID); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot %s", snap.ID)
	}
	return nil
}

// observe reports a finished store call to the registered hooks.
func observe(ctx context.Context, backend, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, backend, op, time.Since(start), err)
}

// NewRecord returns a shallow copy of snap with a fresh ID and creation time,
// ready for Put. Cached layouts are shared, so every stored copy gets its own
// identity.
func NewRecord(snap *graph.Snapshot) *graph.Snapshot {
	rec := *snap
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	return &rec
}
