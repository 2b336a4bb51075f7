package workspace

import (
	"sync"

	"github.com/google/uuid"
)

// entityLocks hands out one mutex per entity id so two mutations against
// the same node never overlap, while unrelated entities proceed freely.
type entityLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (e *entityLocks) For(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}
