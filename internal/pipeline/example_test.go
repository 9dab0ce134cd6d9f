package pipeline_test

import (
	"context"
	"sync"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

// MockStore is a mock implementation of docstore.Store for testing.
type MockStore struct {
	ListFunc     func(ctx context.Context, folder string) ([]domain.StatementFile, error)
	ExistsFunc   func(ctx context.Context, folder, name string) (bool, error)
	DownloadFunc func(ctx context.Context, file domain.StatementFile) ([]byte, error)
	MoveFunc     func(ctx context.Context, file domain.StatementFile, from, to, newName string) error

	mu        sync.Mutex
	Moved     []string
	Downloads int
}

func (m *MockStore) List(ctx context.Context, folder string) ([]domain.StatementFile, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, folder)
	}
	return []domain.StatementFile{}, nil
}

func (m *MockStore) Exists(ctx context.Context, folder, name string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, folder, name)
	}
	return false, nil
}

func (m *MockStore) Download(ctx context.Context, file domain.StatementFile) ([]byte, error) {
	m.mu.Lock()
	m.Downloads++
	m.mu.Unlock()
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, file)
	}
	return []byte(file.ID), nil
}

func (m *MockStore) Move(ctx context.Context, file domain.StatementFile, from, to, newName string) error {
	if m.MoveFunc != nil {
		if err := m.MoveFunc(ctx, file, from, to, newName); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Moved = append(m.Moved, from+"->"+to+"/"+newName)
	m.mu.Unlock()
	return nil
}

// MockExtractor is a mock implementation of pipeline.TextExtractor for testing.
type MockExtractor struct {
	LinesFunc func(ctx context.Context, data []byte) ([]string, error)
}

func (m *MockExtractor) Lines(ctx context.Context, data []byte) ([]string, error) {
	if m.LinesFunc != nil {
		return m.LinesFunc(ctx, data)
	}
	return []string{}, nil
}

// MockRunRecorder is a mock implementation of pipeline.RunRecorder for testing.
type MockRunRecorder struct {
	StartFunc func(ctx context.Context, file domain.StatementFile, ledgerKey string) (string, error)

	mu        sync.Mutex
	Started   int
	Failed    []string
	Succeeded map[string]int
	Mirrored  int
}

func (m *MockRunRecorder) Start(ctx context.Context, file domain.StatementFile, ledgerKey string) (string, error) {
	m.mu.Lock()
	m.Started++
	m.mu.Unlock()
	if m.StartFunc != nil {
		return m.StartFunc(ctx, file, ledgerKey)
	}
	return "run-" + file.ID, nil
}

func (m *MockRunRecorder) Fail(ctx context.Context, runID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed = append(m.Failed, runID)
}

func (m *MockRunRecorder) Succeed(ctx context.Context, runID string, transactions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Succeeded == nil {
		m.Succeeded = make(map[string]int)
	}
	m.Succeeded[runID] = transactions
	return nil
}

func (m *MockRunRecorder) MirrorTransactions(ctx context.Context, runID string, file domain.StatementFile, ledgerKey string, txs []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mirrored += len(txs)
	return nil
}

// memLedger is a ledger.Store that, like a remote spreadsheet, hands out a
// fresh copy on every Load.
type memLedger struct {
	key   string
	mu    sync.Mutex
	grid  [][]string
	saves int
}

func newMemLedger(key string) *memLedger {
	return &memLedger{key: key, grid: [][]string{ledger.DefaultHeader}}
}

func (l *memLedger) Key() string { return l.key }

func (l *memLedger) Load(ctx context.Context) (*ledger.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ledger.FromGrid(l.grid), nil
}

func (l *memLedger) Save(ctx context.Context, t *ledger.Table) error {
	grid := [][]string{t.Header}
	for _, r := range t.Rows {
		grid = append(grid, r.Cells())
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.grid = grid
	l.saves++
	return nil
}

func (l *memLedger) rows() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.grid[1:]
}

var (
	_ docstore.Store = (*MockStore)(nil)
	_ ledger.Store   = (*memLedger)(nil)
)
