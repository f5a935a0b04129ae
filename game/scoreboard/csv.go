package scoreboard

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// csvRow is an entry with its rank for export
type csvRow struct {
	Rank int `csv:"rank"`
	Entry
}

// WriteCSV writes the current ranking as CSV with a header row
func (b *Board) WriteCSV(w io.Writer) error {
	entries := b.Entries()
	rows := make([]csvRow, len(entries))
	for i, e := range entries {
		rows[i] = csvRow{Rank: i + 1, Entry: e}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing scoreboard csv: %w", err)
	}
	return nil
}
