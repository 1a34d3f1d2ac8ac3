package billing

import (
	"sync"
	"testing"

	"recaudo/internal/core/id"
)

func TestClientLocksSerializePerClient(t *testing.T) {
	locks := NewClientLocks()
	clientID := id.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock(clientID)
			defer locks.Unlock(clientID)
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("expected 50 serialized increments, got %d", counter)
	}

	locks.mu.Lock()
	remaining := len(locks.locks)
	locks.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected lock registry to be empty, found %d entries", remaining)
	}
}

func TestClientLocksIndependentClients(t *testing.T) {
	locks := NewClientLocks()
	a, b := id.New(), id.New()

	locks.Lock(a)
	done := make(chan struct{})
	go func() {
		locks.Lock(b)
		locks.Unlock(b)
		close(done)
	}()
	<-done // must not deadlock while a is held
	locks.Unlock(a)
}
