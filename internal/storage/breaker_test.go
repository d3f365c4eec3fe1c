package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/scrypster/memview/pkg/types"
)

// failingStore fails every call with the configured error.
type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) List(ctx context.Context, userID string) ([]types.RawDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []types.RawDocument{}, nil
}

func (f *failingStore) Put(ctx context.Context, userID string, m types.Memory) error {
	f.calls++
	return f.err
}

func (f *failingStore) Delete(ctx context.Context, userID, id string) error {
	f.calls++
	return f.err
}

func (f *failingStore) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	f.calls++
	return f.err
}

func (f *failingStore) UpdateFields(ctx context.Context, userID, id string, update FieldUpdate) error {
	f.calls++
	return f.err
}

func (f *failingStore) Close() error { return nil }

func TestBreakerStore_TripsAfterConsecutiveFailures(t *testing.T) {
	inner := &failingStore{err: errors.New("connection refused")}
	store := NewBreakerStore(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.List(ctx, "alice"); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}

	// Circuit is now open: calls are rejected without reaching the backend.
	callsBefore := inner.calls
	_, err := store.List(ctx, "alice")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Errorf("expected backend not to be called while open, calls went %d -> %d", callsBefore, inner.calls)
	}
}

func TestBreakerStore_DomainErrorsDoNotTrip(t *testing.T) {
	inner := &failingStore{err: ErrNotFound}
	store := NewBreakerStore(inner)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := store.Delete(ctx, "alice", "ghost")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: expected ErrNotFound to keep flowing through, got %v", i, err)
		}
	}
}

func TestBreakerStore_SuccessPassesThrough(t *testing.T) {
	inner := &failingStore{}
	store := NewBreakerStore(inner)

	docs, err := store.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if docs == nil {
		t.Error("expected empty slice, got nil")
	}
}
