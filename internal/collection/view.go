package collection

import (
	"context"
	"sort"
	"sync"

	"github.com/scrypster/memview/pkg/types"
)

// View maintains the current record set for exactly one identity and
// re-derives it on every upstream push. It owns the subscription for the
// active identity; switching identity tears the old subscription down
// before the new one is established, so a stale snapshot from a previous
// identity can never overwrite current state.
type View struct {
	source Source

	// switchMu serializes identity switches. Held across the whole
	// teardown-subscribe-install sequence so a slow Subscribe from one
	// switch can never install its subscription after a later switch
	// already tore the view down.
	switchMu sync.Mutex

	mu      sync.RWMutex
	userID  string
	records []types.Memory
	loading bool

	sub Subscription
	wg  sync.WaitGroup

	onChange func([]types.Memory)
}

// NewView creates a view with no identity. The view reports loading until
// the first SetIdentity call resolves.
func NewView(source Source) *View {
	return &View{
		source:  source,
		records: []types.Memory{},
		loading: true,
	}
}

// OnChange registers a callback invoked with each newly published record
// set. The callback runs on the subscription goroutine; snapshots applied
// before registration are not replayed.
func (v *View) OnChange(fn func([]types.Memory)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// SetIdentity switches the view to a new identity. The previous
// subscription is torn down first. Safe for concurrent use: switches are
// serialized in arrival order. An empty userID signs the view out:
// the set empties and loading flips to false immediately, since there is
// nothing to wait for.
func (v *View) SetIdentity(ctx context.Context, userID string) error {
	v.switchMu.Lock()
	defer v.switchMu.Unlock()

	v.teardown()

	v.mu.Lock()
	v.userID = userID
	v.records = []types.Memory{}
	v.loading = userID != ""
	cb := v.onChange
	v.mu.Unlock()

	if userID == "" {
		if cb != nil {
			cb([]types.Memory{})
		}
		return nil
	}

	sub, err := v.source.Subscribe(ctx, userID)
	if err != nil {
		v.mu.Lock()
		v.loading = false
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.sub = sub
	v.mu.Unlock()

	v.wg.Add(1)
	go v.run(sub)
	return nil
}

// Identity returns the currently active identity, or "" when signed out.
func (v *View) Identity() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.userID
}

// Records returns the current record set: pinned records first, source
// order preserved within each group. The returned slice is a copy.
func (v *View) Records() []types.Memory {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]types.Memory, len(v.records))
	copy(out, v.records)
	return out
}

// Loading reports whether the view is waiting for the active identity's
// first snapshot.
func (v *View) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Close tears down the active subscription.
func (v *View) Close() {
	v.switchMu.Lock()
	defer v.switchMu.Unlock()
	v.teardown()
}

func (v *View) teardown() {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	if sub != nil {
		_ = sub.Close()
	}
	v.wg.Wait()
}

func (v *View) run(sub Subscription) {
	defer v.wg.Done()
	for docs := range sub.Snapshots() {
		v.apply(docs)
	}
}

// apply normalizes one snapshot, partitions it pinned-first, and publishes.
func (v *View) apply(docs []types.RawDocument) {
	records := make([]types.Memory, 0, len(docs))
	for _, doc := range docs {
		records = append(records, types.Normalize(doc))
	}
	SortPinnedFirst(records)

	v.mu.Lock()
	v.records = records
	v.loading = false
	cb := v.onChange
	v.mu.Unlock()

	if cb != nil {
		cb(records)
	}
}

// SortPinnedFirst partitions records in place so pinned records precede
// unpinned ones. The partition is stable: relative order within each group
// is preserved from the source order.
func SortPinnedFirst(records []types.Memory) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pinned && !records[j].Pinned
	})
}
