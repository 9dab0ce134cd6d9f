// Package sheets stores the ledger in a Google Sheets worksheet. Row 1 holds
// the header and is never written; data rows start at A2.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scope is the OAuth scope the store needs.
const Scope = sheets.SpreadsheetsScope

// Store is a ledger.Store over one worksheet of a spreadsheet.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewService creates a Sheets API service.
func NewService(ctx context.Context, opts ...option.ClientOption) (*sheets.Service, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewService: create sheets service: %w", err)
	}
	return svc, nil
}

// New creates a store for the given spreadsheet and worksheet.
func New(svc *sheets.Service, spreadsheetID, worksheet string) *Store {
	return &Store{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}
}

// Key implements ledger.Store.
func (s *Store) Key() string {
	return "sheets:" + s.spreadsheetID + "#" + s.worksheet
}

// quoteSheet renders a worksheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Load implements ledger.Store. Every cell is read as its formatted string.
func (s *Store) Load(ctx context.Context) (*ledger.Table, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(s.worksheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("Load: read %s: %w", s.Key(), err)
	}

	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		grid = append(grid, cells)
	}

	t := ledger.FromGrid(grid)
	log := logger.FromContext(ctx)
	log.Debug().Str("ledger", s.Key()).Int("rows", t.Len()).Msg("Loaded ledger")
	return t, nil
}

// Save implements ledger.Store. All data rows are written from A2 as user
// entered values; the header row and the sheet size are left alone.
func (s *Store) Save(ctx context.Context, t *ledger.Table) error {
	if t.Len() == 0 {
		return nil
	}

	vr := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         t.Values(),
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, quoteSheet(s.worksheet)+"!A2", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("Save: write %s: %w", s.Key(), err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("ledger", s.Key()).Int("rows", t.Len()).Msg("Saved ledger")
	return nil
}

var _ ledger.Store = (*Store)(nil)
