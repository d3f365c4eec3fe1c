package storage

import (
	"context"
	"log"

	"github.com/scrypster/memview/internal/notify"
	"github.com/scrypster/memview/pkg/types"
)

// NotifyingStore decorates a MemoryStore so that every successful mutation
// emits a change event. The live collection view picks those events up and
// pushes a fresh snapshot; mutations themselves stay fire-and-forget.
type NotifyingStore struct {
	inner  MemoryStore
	writer *notify.EventWriter
}

// NewNotifyingStore wraps a store with mutation event emission.
func NewNotifyingStore(inner MemoryStore, writer *notify.EventWriter) *NotifyingStore {
	return &NotifyingStore{inner: inner, writer: writer}
}

// List passes through untouched; reads emit no events.
func (n *NotifyingStore) List(ctx context.Context, userID string) ([]types.RawDocument, error) {
	return n.inner.List(ctx, userID)
}

// Put stores a record and emits a put event on success.
func (n *NotifyingStore) Put(ctx context.Context, userID string, m types.Memory) error {
	if err := n.inner.Put(ctx, userID, m); err != nil {
		return err
	}
	n.emit(notify.EventPut, userID, m.ID)
	return nil
}

// Delete removes a record and emits a delete event on success.
func (n *NotifyingStore) Delete(ctx context.Context, userID, id string) error {
	if err := n.inner.Delete(ctx, userID, id); err != nil {
		return err
	}
	n.emit(notify.EventDelete, userID, id)
	return nil
}

// SetPinned updates the pin flag and emits a pin event on success.
func (n *NotifyingStore) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	if err := n.inner.SetPinned(ctx, userID, id, pinned); err != nil {
		return err
	}
	n.emit(notify.EventPin, userID, id)
	return nil
}

// UpdateFields applies a partial update and emits an update event on success.
func (n *NotifyingStore) UpdateFields(ctx context.Context, userID, id string, update FieldUpdate) error {
	if err := n.inner.UpdateFields(ctx, userID, id, update); err != nil {
		return err
	}
	n.emit(notify.EventUpdate, userID, id)
	return nil
}

// Close closes the underlying store.
func (n *NotifyingStore) Close() error {
	return n.inner.Close()
}

// emit writes the event file. A failure here means a snapshot refresh may
// be delayed until the next mutation; the mutation itself already succeeded.
func (n *NotifyingStore) emit(eventType, userID, id string) {
	if err := n.writer.Notify(eventType, userID, id); err != nil {
		log.Printf("storage: failed to emit %s event for %s: %v", eventType, id, err)
	}
}
