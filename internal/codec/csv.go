package codec

import (
	"encoding/csv"
	"fmt"
	"io"

	"siteinventory/internal/domain"
)

// UnreachableCSV writes the sidecar table: the input header followed by the
// original row of every record that could not be placed
type UnreachableCSV struct {
	Delimiter rune
}

// NewUnreachableCSV creates a sidecar encoder using delimiter
func NewUnreachableCSV(delimiter rune) *UnreachableCSV {
	if delimiter == 0 {
		delimiter = ','
	}
	return &UnreachableCSV{Delimiter: delimiter}
}

// Export writes header and the verbatim rows of records
func (c *UnreachableCSV) Export(header []string, records []domain.UnreachableRecord, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = c.Delimiter

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Record.Row); err != nil {
			return fmt.Errorf("failed to write row from line %d: %w", rec.Record.Line, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
