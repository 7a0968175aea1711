package ports

import (
	"io"

	"go.trai.ch/protanno/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=table.go -destination=mocks/mock_table.go -package=mocks

// TableReader reads user supplied annotation tables and identifier lists.
type TableReader interface {
	// ReadAnnotations reads a delimited table whose first column is the identifier.
	ReadAnnotations(path string, delimiter rune) (*domain.AnnotationTable, error)

	// ReadIdentifiers reads a plain list or a FASTA file and returns the identifiers in file order.
	ReadIdentifiers(path string) ([]string, error)
}

// TableWriter writes the final annotation table.
type TableWriter interface {
	Write(w io.Writer, table *domain.OutputTable, delimiter rune) error
}
