// Package cache implements a generic reservation cache: an LRU of slots
// that can be Ready, Pending (a fetch is already in flight) or Error, so
// concurrent callers racing to load the same key share one fetch instead
// of hammering the backing store.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// slotPhase tags a slot's current state.
type slotPhase int

const (
	slotPending slotPhase = iota
	slotReady
	slotError
)

// slot is the reservation a key maps to in the LRU: either a completed
// value or error, or a pending fetch other callers can wait on via done.
type slot[V any] struct {
	mu    sync.RWMutex
	phase slotPhase
	value V
	err   error
	done  chan struct{}
}

func newPendingSlot[V any]() *slot[V] {
	return &slot[V]{phase: slotPending, done: make(chan struct{})}
}

// Table wraps an LRU cache of reservation slots behind a mutex, so the
// lock held while consulting the LRU is always short-lived: a fetch that
// misses releases the table lock before doing any real work, and other
// callers for the same key wait on the slot's done channel rather than on
// the table lock.
type Table[K comparable, V any] struct {
	mu    sync.Mutex
	cache *lru.Cache[K, *slot[V]]
}

// New creates a table with the given maximum entry count. Capacity is
// measured in entry count, not estimated byte size, so callers should keep
// entries roughly uniform in size to reason about real memory use.
func New[K comparable, V any](size int) (*Table[K, V], error) {
	c, err := lru.New[K, *slot[V]](size)
	if err != nil {
		return nil, err
	}
	return &Table[K, V]{cache: c}, nil
}

// Len returns the number of entries currently tracked.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.Len()
}

// Purge removes the entry for k, if any.
func (t *Table[K, V]) Purge(k K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Remove(k)
}

// PurgeIf removes every entry whose key satisfies pred, returning the
// number of entries removed. This may drop a slot that is mid-fetch; the
// fetch still completes, its result is simply not retained.
func (t *Table[K, V]) PurgeIf(pred func(K) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	toRemove := make([]K, 0)
	for _, k := range t.cache.Keys() {
		if pred(k) {
			toRemove = append(toRemove, k)
		}
	}
	for _, k := range toRemove {
		t.cache.Remove(k)
	}
	return len(toRemove)
}

// Insert sets k unconditionally to a ready entry holding v, dropping
// whatever was there before.
func (t *Table[K, V]) Insert(k K, v V) {
	s := &slot[V]{phase: slotReady, value: v}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Add(k, s)
}

// GetOrFetch returns k's cached value, or runs fetch to produce and cache
// one if absent. Concurrent callers for the same missing key share a
// single fetch call: the first to observe the miss reserves a pending
// slot and calls fetch; every other caller waits on that slot's
// completion instead of calling fetch itself.
func (t *Table[K, V]) GetOrFetch(k K, fetch func() (V, error)) (V, error) {
	t.mu.Lock()
	existing, ok := t.cache.Get(k)
	if ok {
		t.mu.Unlock()
		return waitOnSlot(existing)
	}

	s := newPendingSlot[V]()
	t.cache.Add(k, s)
	t.mu.Unlock()

	value, err := fetch()

	s.mu.Lock()
	if err != nil {
		s.phase = slotError
		s.err = err
	} else {
		s.phase = slotReady
		s.value = value
	}
	close(s.done)
	s.mu.Unlock()

	if err != nil {
		t.removeIfCurrent(k, s)
	}
	return value, err
}

// waitOnSlot reads a slot's value, blocking on its done channel if the
// slot is still pending.
func waitOnSlot[V any](s *slot[V]) (V, error) {
	s.mu.RLock()
	phase := s.phase
	done := s.done
	s.mu.RUnlock()

	if phase == slotPending {
		<-done
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.value, s.err
	}
	return readyOrError(s)
}

func readyOrError[V any](s *slot[V]) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.err
}

// removeIfCurrent evicts k only if it still maps to s, so a slot that was
// already purged or replaced by a fresh Insert is left alone.
func (t *Table[K, V]) removeIfCurrent(k K, s *slot[V]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.cache.Peek(k); ok && current == s {
		t.cache.Remove(k)
	}
}
