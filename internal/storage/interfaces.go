// Package storage provides composable storage interfaces for the memview
// system. Backends implement MemoryStore independently; decorators
// (circuit breaker, change notification) compose around any of them.
package storage

import (
	"context"
	"errors"

	"github.com/scrypster/memview/pkg/types"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotAuthenticated indicates a mutation was attempted without an
	// established identity. Callers must surface this, never retry it.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidInput indicates malformed input parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// FieldUpdate describes a partial update of a record. Nil fields are left
// untouched. A successful update always sets a fresh updatedAt.
type FieldUpdate struct {
	Fact *string
	Tags *[]string
}

// MemoryStore provides per-user CRUD over memory records.
//
// List returns the user's full record set as raw documents ordered by
// creation time descending; it is the snapshot the live collection view
// consumes. All mutations are keyed by (userID, id) and fail fast with
// ErrNotAuthenticated when userID is empty.
type MemoryStore interface {
	// List retrieves every record for the user, newest first.
	List(ctx context.Context, userID string) ([]types.RawDocument, error)

	// Put creates or replaces a record (upsert semantics). A record with
	// no createdAt gets the current time.
	Put(ctx context.Context, userID string, m types.Memory) error

	// Delete removes a record. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, userID, id string) error

	// SetPinned sets the pin flag. Returns ErrNotFound if the record
	// doesn't exist.
	SetPinned(ctx context.Context, userID, id string, pinned bool) error

	// UpdateFields applies a partial update and stamps a new updatedAt.
	// Returns ErrNotFound if the record doesn't exist.
	UpdateFields(ctx context.Context, userID, id string, update FieldUpdate) error

	// Close releases the underlying resources.
	Close() error
}
