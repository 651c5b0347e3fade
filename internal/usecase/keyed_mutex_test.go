package usecase

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	id := uuid.New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.lock(id)
			counter++
			km.unlock(id)
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("counter = %d, want 100", counter)
	}
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	km.lock(a)
	km.lock(b)
	km.unlock(b)
	km.unlock(a)

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.entries) != 0 {
		t.Fatalf("entries = %d, want 0 after all unlocks", len(km.entries))
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	// Holding one key must not block another; this deadlocks if the
	// keys share a lock.
	km.lock(a)
	km.lock(b)
	km.unlock(a)
	km.unlock(b)
}
