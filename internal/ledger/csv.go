package ledger

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	Name      string `csv:"name"`
	Amount    string `csv:"amount"`
	Direction string `csv:"direction"`
	Date      string `csv:"date"`
	Reserved1 string `csv:"reserved_1"`
	Reserved2 string `csv:"reserved_2"`
}

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	out := make([]*csvRow, 0, len(rows))
	for _, r := range rows {
		c := r.Cells()
		out = append(out, &csvRow{
			Name:      c[0],
			Amount:    c[1],
			Direction: c[2],
			Date:      c[3],
			Reserved1: c[4],
			Reserved2: c[5],
		})
	}
	if err := gocsv.Marshal(out, w); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}
