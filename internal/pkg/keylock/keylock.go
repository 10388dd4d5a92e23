// Package keylock serializes work per key, e.g. per game, without making unrelated keys wait on each other.
package keylock

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

type Locker struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

func New() *Locker {
	return &Locker{
		entries: make(map[int64]*entry),
	}
}

// Lock blocks until key is free or ctx is done. The returned func releases the key and must be called exactly once.
func (that *Locker) Lock(ctx context.Context, key int64) (func(), error) {
	that.mu.Lock()
	e, ok := that.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		that.entries[key] = e
	}
	e.refs++
	that.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		that.release(key, e, false)
		return nil, fmt.Errorf("failed to lock key %d: %w", key, err)
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			that.release(key, e, true)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (that *Locker) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.entries)
}

func (that *Locker) release(key int64, e *entry, acquired bool) {
	if acquired {
		e.sem.Release(1)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(that.entries, key)
	}
}
