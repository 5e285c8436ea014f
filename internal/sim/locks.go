package sim

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warfront/hexsim/internal/metrics"
)

// lockTable provides per-unit exclusive locks with bounded acquisition.
//
// An operation acquires the full set of unit locks it will read-modify-write
// before reading anything, in sorted unit-ID order so that two operations
// touching the same pair can never deadlock. The whole set is subject to a
// single bounded wait; on timeout the operation fails with CONTENDED and the
// caller may retry.
//
// Lock entries are created lazily and never removed. A destroyed unit's
// entry is harmless: later operations on its ID acquire the lock, observe
// the unit missing, and fail with UNIT_NOT_FOUND.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

// handle returns the lock channel for a unit, creating it on first use.
// A buffered channel of size 1 acts as a mutex that supports timed waits.
func (t *lockTable) handle(id string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[id] = ch
	}
	return ch
}

// acquire takes exclusive locks on all given unit IDs, in sorted order,
// within the bounded wait. On success it returns a release func that must
// be called exactly once. On timeout or context cancellation it releases
// any partial acquisition and returns a CONTENDED error.
func (t *lockTable) acquire(ctx context.Context, wait time.Duration, unitIDs ...string) (func(), error) {
	ids := make([]string, 0, len(unitIDs))
	seen := make(map[string]struct{}, len(unitIDs))
	for _, id := range unitIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := time.Now()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ids))
	release := func() {
		for _, ch := range held {
			<-ch
		}
	}

	for _, id := range ids {
		ch := t.handle(id)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-timer.C:
			release()
			return nil, errContended(unitIDs...)
		case <-ctx.Done():
			// Cancellation during acquisition is indistinguishable from
			// contention for the caller: nothing happened, retry is safe.
			release()
			return nil, errContended(unitIDs...)
		}
	}

	metrics.LockWaitSeconds.Observe(time.Since(start).Seconds())
	return release, nil
}
