package billing

import (
	"sync"

	"recaudo/internal/core/id"
)

// ClientLocks serializes billing mutations per client within the
// process. At most one allocate-and-reconcile sequence runs for a
// given client at a time; different clients proceed concurrently.
//
// Entries are reference-counted and removed once the last holder
// releases, so the map does not grow with the client catalog.
type ClientLocks struct {
	mu    sync.Mutex
	locks map[id.ID]*clientLock
}

type clientLock struct {
	mu   sync.Mutex
	refs int
}

// NewClientLocks creates an empty lock registry.
func NewClientLocks() *ClientLocks {
	return &ClientLocks{locks: make(map[id.ID]*clientLock)}
}

// Lock acquires the client's mutex, blocking until available.
func (c *ClientLocks) Lock(clientID id.ID) {
	c.mu.Lock()
	l, ok := c.locks[clientID]
	if !ok {
		l = &clientLock{}
		c.locks[clientID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the client's mutex and drops the registry entry when
// no other goroutine is waiting on it.
func (c *ClientLocks) Unlock(clientID id.ID) {
	c.mu.Lock()
	l := c.locks[clientID]
	l.refs--
	if l.refs == 0 {
		delete(c.locks, clientID)
	}
	c.mu.Unlock()

	l.mu.Unlock()
}
