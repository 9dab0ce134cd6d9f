package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSXStore keeps the ledger in a local workbook, one worksheet per ledger.
// The header row of an existing sheet is never rewritten.
type XLSXStore struct {
	path  string
	sheet string
}

// NewXLSXStore creates a store for sheet inside the workbook at path.
func NewXLSXStore(path, sheet string) *XLSXStore {
	return &XLSXStore{path: path, sheet: sheet}
}

// Key implements Store.
func (s *XLSXStore) Key() string {
	return "xlsx:" + s.path + "#" + s.sheet
}

// Load implements Store. A missing workbook or sheet yields an empty table.
func (s *XLSXStore) Load(ctx context.Context) (*Table, error) {
	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewTable(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("XLSXStore.Load: open %q: %w", s.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("XLSXStore.Load: sheet %q: %w", s.sheet, err)
	}
	if idx < 0 {
		return NewTable(nil), nil
	}

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("XLSXStore.Load: reading rows: %w", err)
	}
	return FromGrid(rows), nil
}

// Save implements Store. Data rows are written from A2 down.
func (s *XLSXStore) Save(ctx context.Context, t *Table) error {
	f, err := excelize.OpenFile(s.path)
	created := false
	if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		created = true
	} else if err != nil {
		return fmt.Errorf("XLSXStore.Save: open %q: %w", s.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(s.sheet)
	if err != nil {
		return fmt.Errorf("XLSXStore.Save: sheet %q: %w", s.sheet, err)
	}
	writeHeader := created
	if idx < 0 {
		if idx, err = f.NewSheet(s.sheet); err != nil {
			return fmt.Errorf("XLSXStore.Save: creating sheet %q: %w", s.sheet, err)
		}
		writeHeader = true
	}
	if writeHeader {
		header := make([]interface{}, len(t.Header))
		for i, h := range t.Header {
			header[i] = h
		}
		if err := f.SetSheetRow(s.sheet, "A1", &header); err != nil {
			return fmt.Errorf("XLSXStore.Save: writing header: %w", err)
		}
	}
	if created {
		f.SetActiveSheet(idx)
		if s.sheet != "Sheet1" {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("XLSXStore.Save: removing default sheet: %w", err)
			}
		}
	}

	for i, row := range t.Values() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("XLSXStore.Save: row %d: %w", i+2, err)
		}
		values := row
		if err := f.SetSheetRow(s.sheet, cell, &values); err != nil {
			return fmt.Errorf("XLSXStore.Save: writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("XLSXStore.Save: saving %q: %w", s.path, err)
	}
	return nil
}

var _ Store = (*XLSXStore)(nil)
