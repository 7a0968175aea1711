package csvtable

import (
	"encoding/csv"
	"io"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

// Writer implements ports.TableWriter.
type Writer struct{}

var _ ports.TableWriter = (*Writer)(nil)

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write writes the header followed by every row.
func (w *Writer) Write(out io.Writer, table *domain.OutputTable, delimiter rune) error {
	cw := csv.NewWriter(out)
	cw.Comma = delimiter

	if err := cw.Write(table.Columns); err != nil {
		return zerr.Wrap(err, domain.ErrTableWriteFailed.Error())
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return zerr.Wrap(err, domain.ErrTableWriteFailed.Error())
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return zerr.Wrap(err, domain.ErrTableWriteFailed.Error())
	}
	return nil
}
