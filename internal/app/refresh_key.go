package app

import (
	"sync"
	"sync/atomic"
)

// RefreshKey is the shared counter collaborators bump after writing to the
// store outside the sync engine. The engine reacts to increases, never to a
// particular value. Every subscriber gets its own coalescing signal, so one
// key can serve any number of engines.
type RefreshKey struct {
	value atomic.Uint64

	mu      sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// NewRefreshKey creates a refresh key starting at zero.
func NewRefreshKey() *RefreshKey {
	return &RefreshKey{subs: make(map[int]chan struct{})}
}

// Bump increments the key and signals every subscriber. It never blocks.
func (k *RefreshKey) Bump() uint64 {
	v := k.value.Add(1)

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, ch := range k.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return v
}

// Value returns the current key.
func (k *RefreshKey) Value() uint64 {
	return k.value.Load()
}

// Subscribe returns a channel signalled after bumps made from now on.
// Bumps between reads coalesce into one signal.
func (k *RefreshKey) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	k.mu.Lock()
	id := k.nextSub
	k.nextSub++
	k.subs[id] = ch
	k.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			k.mu.Lock()
			delete(k.subs, id)
			k.mu.Unlock()
		})
	}
}
