package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cisec/logsift/internal/record"
)

// WriteCSV writes one header row plus one data row per record. Columns are
// the union of attribute names across the set; cells for inapplicable
// columns stay empty.
func WriteCSV(w io.Writer, records []record.Record, opts Options) error {
	cw := csv.NewWriter(w)
	cols := Columns(records, opts)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r, cols, opts)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
