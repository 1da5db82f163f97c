package service

import "sync"

// billLocks hands out one mutex per bill ID. Expense mutations hold the
// bill's lock across mutate -> recompute total -> persist so the cached
// total never reflects a partially applied edit.
//
// Locks are created on first use and never reclaimed; the map grows with
// the number of distinct bills touched by one process, which is small.
type billLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBillLocks() *billLocks {
	return &billLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for billID and returns its unlock func.
func (l *billLocks) lock(billID string) func() {
	l.mu.Lock()
	m, ok := l.locks[billID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[billID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
