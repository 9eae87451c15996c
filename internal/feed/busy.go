package feed

import "sync"

// Busy is a keyed set of items with a mutation in flight.
type Busy[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

// Acquire marks key busy. It reports false when key already was.
func (b *Busy[K]) Acquire(key K) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.keys == nil {
		b.keys = map[K]struct{}{}
	}
	if _, ok := b.keys[key]; ok {
		return false
	}
	b.keys[key] = struct{}{}
	return true
}

func (b *Busy[K]) Release(key K) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.keys, key)
}

func (b *Busy[K]) Busy(key K) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.keys[key]
	return ok
}
