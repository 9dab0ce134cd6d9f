// Package ledger holds the append-only transaction table that is mirrored to
// the ledger spreadsheet, plus local file renditions of it.
package ledger

import (
	"context"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-ledger/internal/domain"
)

// Columns is the fixed width of a ledger row: name, amount, direction, date
// and two columns reserved for spreadsheet-side use.
const Columns = 6

// DefaultHeader is used when a ledger is created from scratch.
var DefaultHeader = []string{"Name", "Wert", "Typ", "Datum", "Kategorie", "Notiz"}

// Store loads and saves a ledger table.
type Store interface {
	// Key identifies the underlying ledger; writers to the same key must be serialized.
	Key() string
	Load(ctx context.Context) (*Table, error)
	Save(ctx context.Context, t *Table) error
}

// Row is one ledger line. Rows loaded from storage keep their cells verbatim
// so that saving them back never reformats existing data.
type Row struct {
	Name      string
	Amount    float64
	Direction domain.Direction
	Date      civil.Date

	cells []string
}

// Loaded reports whether the row came from storage rather than Append.
func (r Row) Loaded() bool {
	return r.cells != nil
}

// Cells renders the row as Columns strings.
func (r Row) Cells() []string {
	if r.cells != nil {
		out := make([]string, Columns)
		copy(out, r.cells)
		return out
	}
	return []string{
		r.Name,
		strconv.FormatFloat(r.Amount, 'f', -1, 64),
		string(r.Direction),
		r.Date.String(),
		"",
		"",
	}
}

// Values renders the row for a spreadsheet write. Appended rows carry a
// numeric amount so the sheet stores a number, not text.
func (r Row) Values() []interface{} {
	if r.cells != nil {
		out := make([]interface{}, Columns)
		for i, c := range r.Cells() {
			out[i] = c
		}
		return out
	}
	return []interface{}{r.Name, r.Amount, string(r.Direction), r.Date.String(), "", ""}
}

// Table is the in-memory ledger: a header plus data rows in insertion order.
// It is not safe for concurrent mutation.
type Table struct {
	Header []string
	Rows   []Row
}

// NewTable creates an empty table with the given header.
func NewTable(header []string) *Table {
	if len(header) == 0 {
		header = DefaultHeader
	}
	h := make([]string, len(header))
	copy(h, header)
	return &Table{Header: h}
}

// FromGrid builds a table from a rectangular string grid whose first row is
// the header. Data rows keep their cells as-is.
func FromGrid(grid [][]string) *Table {
	if len(grid) == 0 {
		return NewTable(nil)
	}
	t := NewTable(grid[0])
	for _, cells := range grid[1:] {
		c := make([]string, len(cells))
		copy(c, cells)
		t.Rows = append(t.Rows, Row{cells: c})
	}
	return t
}

// Append adds one row. The reserved columns stay empty. Existing rows are
// never touched and no duplicate detection is done.
func (t *Table) Append(name string, amount float64, direction domain.Direction, date civil.Date) {
	t.Rows = append(t.Rows, Row{
		Name:      name,
		Amount:    amount,
		Direction: direction,
		Date:      date,
	})
}

// AppendTransaction appends tx as a row.
func (t *Table) AppendTransaction(tx domain.Transaction) {
	t.Append(tx.Name, tx.Amount, tx.Direction, tx.Date)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Values returns the data rows (header excluded) for a spreadsheet write.
func (t *Table) Values() [][]interface{} {
	out := make([][]interface{}, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r.Values())
	}
	return out
}
