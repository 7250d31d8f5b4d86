package service

import (
	"sync"

	"dsarhub/pkg/domain"
)

// keyedMutex serializes operations per case. Entries are reference-counted and
// removed once the last holder releases, so the map does not grow with case
// count.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[domain.CaseID]*caseLock
}

type caseLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[domain.CaseID]*caseLock)}
}

// Lock acquires the case's lock and returns the release function.
func (k *keyedMutex) Lock(caseID domain.CaseID) func() {
	k.mu.Lock()
	l, ok := k.locks[caseID]
	if !ok {
		l = &caseLock{}
		k.locks[caseID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, caseID)
		}
		k.mu.Unlock()
	}
}
