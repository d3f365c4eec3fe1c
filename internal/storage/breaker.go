package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/memview/pkg/types"
)

// ErrCircuitOpen is returned when the store's circuit breaker is open and
// rejects requests to prevent hammering an unhealthy backend.
var ErrCircuitOpen = errors.New("storage circuit breaker is open")

// BreakerConfig holds the circuit breaker configuration for a store.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 3
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning
	// to half-open. Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of successes required in
	// half-open state to close the circuit again. Default: 2
	HalfOpenMaxSuccesses uint32
}

// BreakerStore decorates a MemoryStore with a circuit breaker. It is meant
// for remote backends (PostgreSQL); failures of the core's own logic never
// flow through here.
//
// Domain errors (ErrNotFound, ErrNotAuthenticated, ErrInvalidInput) count
// as successes: they mean the backend answered, just not the way the
// caller hoped.
type BreakerStore struct {
	inner   MemoryStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps a store with default breaker settings.
func NewBreakerStore(inner MemoryStore) *BreakerStore {
	return NewBreakerStoreWithConfig(inner, BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewBreakerStoreWithConfig wraps a store with custom breaker settings.
func NewBreakerStoreWithConfig(inner MemoryStore, config BreakerConfig) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "StorageCircuitBreaker",
		MaxRequests: config.HalfOpenMaxSuccesses,
		Interval:    0, // don't clear counts periodically
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrNotAuthenticated) ||
				errors.Is(err, ErrInvalidInput)
		},
	}

	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return result, err
}

// List retrieves the user's records through the breaker.
func (b *BreakerStore) List(ctx context.Context, userID string) ([]types.RawDocument, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.inner.List(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.RawDocument), nil
}

// Put stores a record through the breaker.
func (b *BreakerStore) Put(ctx context.Context, userID string, m types.Memory) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.Put(ctx, userID, m)
	})
	return err
}

// Delete removes a record through the breaker.
func (b *BreakerStore) Delete(ctx context.Context, userID, id string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.Delete(ctx, userID, id)
	})
	return err
}

// SetPinned updates the pin flag through the breaker.
func (b *BreakerStore) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.SetPinned(ctx, userID, id, pinned)
	})
	return err
}

// UpdateFields applies a partial update through the breaker.
func (b *BreakerStore) UpdateFields(ctx context.Context, userID, id string, update FieldUpdate) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.UpdateFields(ctx, userID, id, update)
	})
	return err
}

// Close closes the underlying store. Close bypasses the breaker.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}
