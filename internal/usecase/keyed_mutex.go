package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes work per session so concurrent answer
// submissions for the same session apply strictly in order. Entries are
// reference counted and removed once the last holder unlocks.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[uuid.UUID]*lockEntry)}
}

func (k *keyedMutex) lock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyedMutex) unlock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.entries[id]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
