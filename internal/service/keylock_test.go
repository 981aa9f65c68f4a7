package service

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("k")
			counter++
			km.Unlock("k")
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter=%d want=50", counter)
	}
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("a")
	km.Unlock("a")
	km.mu.Lock()
	n := len(km.locks)
	km.mu.Unlock()
	if n != 0 {
		t.Fatalf("entries=%d want=0 after unlock", n)
	}
}
