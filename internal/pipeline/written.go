package pipeline

import "sync"

// WrittenStatements remembers statements whose transactions reached the
// ledger but which have not been archived yet. A retry of such a statement
// must not append its rows a second time.
//
// The set lives in memory only and is lost on restart.
type WrittenStatements struct {
	mu      sync.Mutex
	written map[string]int
}

// NewWrittenStatements creates an empty set.
func NewWrittenStatements() *WrittenStatements {
	return &WrittenStatements{written: make(map[string]int)}
}

// Mark records that n transactions of the statement were saved to the ledger.
func (w *WrittenStatements) Mark(fileID string, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written[fileID] = n
}

// Lookup reports how many transactions were saved for the statement.
func (w *WrittenStatements) Lookup(fileID string) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.written[fileID]
	return n, ok
}

// Forget drops the statement once it is archived.
func (w *WrittenStatements) Forget(fileID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.written, fileID)
}
