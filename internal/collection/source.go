// Package collection maintains the live record set for one identity and the
// subscription plumbing that feeds it. Derived views (graph, search, stats)
// are pure functions over the snapshot this package publishes.
package collection

import (
	"context"
	"log"
	"sync"

	"github.com/scrypster/memview/internal/notify"
	"github.com/scrypster/memview/internal/storage"
	"github.com/scrypster/memview/pkg/types"
)

// Source delivers complete record snapshots for one identity. Every push is
// a full replacement sequence ordered by creation time descending, never a
// diff. Implementations must support clean unsubscribe.
type Source interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is one live feed of snapshots. The Snapshots channel is
// closed after Close returns; a pending snapshot may still be buffered.
type Subscription interface {
	// Snapshots yields the latest full record set. Slow consumers only see
	// the most recent snapshot; intermediate ones are superseded.
	Snapshots() <-chan []types.RawDocument

	// Close tears the subscription down. Safe to call more than once.
	Close() error
}

// LiveSource implements Source over a MemoryStore plus the filesystem
// change feed. Each subscription gets an initial snapshot immediately and a
// fresh one whenever a mutation event for its identity arrives.
type LiveSource struct {
	store   storage.MemoryStore
	watcher *notify.EventWatcher

	mu   sync.Mutex
	subs map[*liveSubscription]struct{}
}

// NewLiveSource creates a source reading from store and refreshing on
// mutation events under dataPath. Call Close when done.
func NewLiveSource(store storage.MemoryStore, dataPath string) (*LiveSource, error) {
	s := &LiveSource{
		store: store,
		subs:  make(map[*liveSubscription]struct{}),
	}
	s.watcher = notify.NewEventWatcher(dataPath, s.onEvent)
	if err := s.watcher.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe starts a live feed for one identity. The first snapshot is
// pushed before Subscribe returns.
func (s *LiveSource) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	docs, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub := &liveSubscription{
		source: s,
		userID: userID,
		ch:     make(chan []types.RawDocument, 1),
	}
	sub.push(docs)

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub, nil
}

// Close stops the change watcher and closes every open subscription.
func (s *LiveSource) Close() error {
	s.watcher.Stop()

	s.mu.Lock()
	subs := make([]*liveSubscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

// onEvent refreshes every subscription whose identity matches the mutation.
func (s *LiveSource) onEvent(eventType, userID, memoryID string) {
	s.mu.Lock()
	subs := make([]*liveSubscription, 0, len(s.subs))
	for sub := range s.subs {
		if sub.userID == userID {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		docs, err := s.store.List(context.Background(), sub.userID)
		if err != nil {
			log.Printf("collection: failed to refresh snapshot for %s: %v", sub.userID, err)
			continue
		}
		sub.push(docs)
	}
}

func (s *LiveSource) remove(sub *liveSubscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

type liveSubscription struct {
	source *LiveSource
	userID string

	mu     sync.Mutex
	ch     chan []types.RawDocument
	closed bool
}

func (sub *liveSubscription) Snapshots() <-chan []types.RawDocument {
	return sub.ch
}

func (sub *liveSubscription) Close() error {
	sub.source.remove(sub)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
	return nil
}

// push delivers a snapshot with latest-wins semantics: if the consumer has
// not taken the previous snapshot yet, it is replaced rather than queued.
func (sub *liveSubscription) push(docs []types.RawDocument) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	for {
		select {
		case sub.ch <- docs:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}
