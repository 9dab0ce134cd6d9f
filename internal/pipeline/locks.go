package pipeline

import "sync"

// LedgerLocks serializes load-append-save cycles per ledger key so that
// statements parsed concurrently never lose each other's rows.
type LedgerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerLocks creates an empty lock set.
func NewLedgerLocks() *LedgerLocks {
	return &LedgerLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key and returns its release function.
func (l *LedgerLocks) Lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
