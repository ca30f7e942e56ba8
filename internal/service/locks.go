package service

import "sync"

// PoliticianLocks enforces at most one in-flight recomputation per politician
// without a global lock. Lock ordering is the caller's responsibility; batch
// operations acquire IDs in ascending order.
type PoliticianLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewPoliticianLocks() *PoliticianLocks {
	return &PoliticianLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock blocks until the politician's lock is held and returns the unlock
// function.
func (l *PoliticianLocks) Lock(id int64) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
