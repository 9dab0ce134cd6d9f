package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statementLines = []string{
	"Kontoauszug Januar",
	"... alter Kontostand 1.000,00 EUR",
	"01.01. 02.01. Zahlung Supermarkt 50,00 S",
	"Supermarkt GmbH",
	"03.01. 04.01. Gehalt 2.000,00 H",
	"... neuer Kontostand 2.950,00 EUR",
}

type fixture struct {
	store  *MockStore
	runs   *MockRunRecorder
	ledger *memLedger
	proc   *pipeline.Processor
	logs   *bytes.Buffer
	ctx    context.Context
}

func newFixture(t *testing.T, lines []string) *fixture {
	t.Helper()
	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(buf)

	f := &fixture{
		store:  &MockStore{},
		runs:   &MockRunRecorder{},
		ledger: newMemLedger("sheets:test#Transaktionen"),
		logs:   buf,
		ctx:    logger.WithContext(context.Background(), log),
	}
	extractor := &MockExtractor{
		LinesFunc: func(ctx context.Context, data []byte) ([]string, error) {
			return lines, nil
		},
	}
	ledgers := pipeline.LedgerResolverFunc(func(year int) (ledger.Store, error) {
		return f.ledger, nil
	})
	parser := statement.NewParser(statement.DefaultMarkers(), log)
	f.proc = pipeline.NewProcessor(f.store, extractor, ledgers, f.runs, parser, "inbox", "archive")
	return f
}

func TestProcessStatement_AppendsAndArchives(t *testing.T) {
	f := newFixture(t, statementLines)
	file := domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001_Giro_2025-02-01.pdf"}

	state, err := f.proc.ProcessStatement(f.ctx, file)
	require.NoError(t, err)

	assert.Equal(t, 2025, state.Year)
	assert.Equal(t, "Kontoauszug_2025_001_Giro.pdf", state.StandardName)
	require.Len(t, state.Transactions, 2)
	assert.Equal(t, 2, state.Appended)

	assert.Equal(t, [][]string{
		{"Supermarkt GmbH", "50", "Ausgabe", "2025-01-01", "", ""},
		{"Bareinzahlung", "2000", "Einnahme", "2025-01-03", "", ""},
	}, f.ledger.rows())

	assert.Equal(t, []string{"inbox->archive/Kontoauszug_2025_001_Giro.pdf"}, f.store.Moved)
	assert.Equal(t, map[string]int{"run-f1": 2}, f.runs.Succeeded)
	assert.Equal(t, 2, f.runs.Mirrored)
	assert.Empty(t, f.runs.Failed)
}

func TestProcessStatement_KeepsExistingRows(t *testing.T) {
	f := newFixture(t, statementLines)
	f.ledger.grid = append(f.ledger.grid, []string{"Miete", "500,00", "Ausgabe", "01.12.2024", "Wohnen", "x"})

	_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001.pdf"})
	require.NoError(t, err)

	rows := f.ledger.rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Miete", "500,00", "Ausgabe", "01.12.2024", "Wohnen", "x"}, rows[0])
}

func TestProcessStatement_Skips(t *testing.T) {
	t.Run("not an account statement", func(t *testing.T) {
		f := newFixture(t, statementLines)
		_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "x", Name: "Rechnung.pdf"})
		assert.ErrorIs(t, err, pipeline.ErrSkipStatement)
		assert.Zero(t, f.store.Downloads)
		assert.Zero(t, f.runs.Started)
	})

	t.Run("already archived", func(t *testing.T) {
		f := newFixture(t, statementLines)
		var checked string
		f.store.ExistsFunc = func(ctx context.Context, folder, name string) (bool, error) {
			checked = folder + "/" + name
			return true, nil
		}
		_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "x", Name: "Kontoauszug_2025_001_Giro_extra.pdf"})
		assert.ErrorIs(t, err, pipeline.ErrSkipStatement)
		assert.Equal(t, "archive/Kontoauszug_2025_001_Giro.pdf", checked)
		assert.Zero(t, f.store.Downloads)
		assert.Empty(t, f.ledger.rows())
	})
}

func TestProcessStatement_Failures(t *testing.T) {
	t.Run("missing closing balance", func(t *testing.T) {
		f := newFixture(t, statementLines[:5])
		_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001.pdf"})
		require.Error(t, err)
		assert.ErrorIs(t, err, statement.ErrMarkerNotFound)
		assert.NotErrorIs(t, err, pipeline.ErrSkipStatement)
		assert.Equal(t, []string{"run-f1"}, f.runs.Failed)
		assert.Empty(t, f.ledger.rows())
		assert.Empty(t, f.store.Moved)
	})

	t.Run("no year in name", func(t *testing.T) {
		f := newFixture(t, statementLines)
		_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug.pdf"})
		require.Error(t, err)
		assert.Zero(t, f.runs.Started)
	})

	t.Run("download fails", func(t *testing.T) {
		f := newFixture(t, statementLines)
		f.store.DownloadFunc = func(ctx context.Context, file domain.StatementFile) ([]byte, error) {
			return nil, errors.New("network down")
		}
		_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network down")
		assert.Equal(t, []string{"run-f1"}, f.runs.Failed)
	})

	t.Run("archive fails after ledger write", func(t *testing.T) {
		f := newFixture(t, statementLines)
		f.store.MoveFunc = func(ctx context.Context, file domain.StatementFile, from, to, newName string) error {
			return errors.New("permission denied")
		}
		_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001.pdf"})
		require.Error(t, err)
		assert.Len(t, f.ledger.rows(), 2)
		assert.Empty(t, f.runs.Succeeded)
	})
}

func TestProcessStatement_ArchiveRetryDoesNotAppendTwice(t *testing.T) {
	f := newFixture(t, statementLines)
	moves := 0
	f.store.MoveFunc = func(ctx context.Context, file domain.StatementFile, from, to, newName string) error {
		moves++
		if moves == 1 {
			return errors.New("503 backend unavailable")
		}
		return nil
	}
	file := domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001.pdf"}

	_, err := f.proc.ProcessStatement(f.ctx, file)
	require.Error(t, err)
	assert.Len(t, f.ledger.rows(), 2)
	assert.Zero(t, f.runs.Mirrored)

	state, err := f.proc.ProcessStatement(f.ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Appended)
	assert.Len(t, f.ledger.rows(), 2)
	assert.Len(t, f.store.Moved, 1)
	assert.Equal(t, 2, f.runs.Mirrored)

	_, ok := f.proc.Written.Lookup("f1")
	assert.False(t, ok)
}

func TestWrittenStatements(t *testing.T) {
	w := pipeline.NewWrittenStatements()

	_, ok := w.Lookup("a")
	assert.False(t, ok)

	w.Mark("a", 3)
	n, ok := w.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	w.Forget("a")
	_, ok = w.Lookup("a")
	assert.False(t, ok)
}

func TestProcessStatement_NoTransactions(t *testing.T) {
	f := newFixture(t, []string{
		"alter Kontostand 10,00 EUR",
		"neuer Kontostand 10,00 EUR",
	})

	state, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_001.pdf"})
	require.NoError(t, err)
	assert.Empty(t, state.Transactions)
	assert.Zero(t, f.ledger.saves)
	assert.Len(t, f.store.Moved, 1)
	assert.Contains(t, f.logs.String(), "No transactions found")
}

func TestProcessStatement_UnknownDirectionIsAppended(t *testing.T) {
	f := newFixture(t, []string{
		"alter Kontostand 10,00 EUR",
		"05.02. 05.02. Korrektur 1,00 X",
		"Storno",
		"neuer Kontostand 10,00 EUR",
	})

	_, err := f.proc.ProcessStatement(f.ctx, domain.StatementFile{ID: "f1", Name: "Kontoauszug_2025_002.pdf"})
	require.NoError(t, err)
	rows := f.ledger.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Unbekannt", rows[0][2])
	assert.Contains(t, f.logs.String(), "unknown direction")
}

func TestProcessAccountStatements(t *testing.T) {
	f := newFixture(t, statementLines)
	f.store.ListFunc = func(ctx context.Context, folder string) ([]domain.StatementFile, error) {
		assert.Equal(t, "inbox", folder)
		return []domain.StatementFile{
			{ID: "1", Name: "Kontoauszug_2025_001.pdf"},
			{ID: "2", Name: "notes.txt"},
			{ID: "3", Name: "Kontoauszug_2025_003.pdf"},
			{ID: "4", Name: "Kontoauszug_2025_004.pdf"},
		}, nil
	}
	f.store.DownloadFunc = func(ctx context.Context, file domain.StatementFile) ([]byte, error) {
		if file.ID == "3" {
			return nil, errors.New("corrupt")
		}
		return []byte("pdf"), nil
	}

	summary, err := f.proc.ProcessAccountStatements(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, pipeline.BatchSummary{Seen: 4, Skipped: 1, Processed: 2, Failed: 1, Transactions: 4}, summary)
	assert.Len(t, f.ledger.rows(), 4)
}

func TestProcessAccountStatements_ListFails(t *testing.T) {
	f := newFixture(t, statementLines)
	f.store.ListFunc = func(ctx context.Context, folder string) ([]domain.StatementFile, error) {
		return nil, errors.New("forbidden")
	}

	_, err := f.proc.ProcessAccountStatements(f.ctx)
	assert.Error(t, err)
}

func TestProcessStatement_ConcurrentAppendsToSameLedger(t *testing.T) {
	f := newFixture(t, statementLines)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			file := domain.StatementFile{ID: fmt.Sprint(i), Name: fmt.Sprintf("Kontoauszug_2025_%03d.pdf", i)}
			_, err := f.proc.ProcessStatement(f.ctx, file)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.ledger.rows(), 2*n)
	assert.Equal(t, n, f.ledger.saves)
}

func TestLedgerLocks(t *testing.T) {
	locks := pipeline.NewLedgerLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("ledger")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)

	// Different keys do not block each other.
	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	unlockB()
	unlockA()
}

func TestNoopRecorder(t *testing.T) {
	var r pipeline.RunRecorder = pipeline.NoopRecorder{}
	id, err := r.Start(context.Background(), domain.StatementFile{}, "")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, r.Succeed(context.Background(), id, 0))
}
