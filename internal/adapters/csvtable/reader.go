// Package csvtable reads annotation tables and identifier lists and writes the
// final annotation table.
package csvtable

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

// Reader implements ports.TableReader.
type Reader struct{}

var _ ports.TableReader = (*Reader)(nil)

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadAnnotations reads the table at path. The first column holds identifiers
// and is renamed to "identifier". When an identifier repeats, its first row wins.
func (r *Reader) ReadAnnotations(path string, delimiter rune) (*domain.AnnotationTable, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrTableReadFailed.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	table, err := ParseAnnotations(f, delimiter)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return table, nil
}

// ParseAnnotations reads a delimited annotation table from r.
func ParseAnnotations(r io.Reader, delimiter rune) (*domain.AnnotationTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	// Every row must have as many cells as the header.
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, headerError("empty file")
	}
	if err != nil {
		return nil, domain.Classify(domain.KindConfiguration, zerr.Wrap(err, domain.ErrTableReadFailed.Error()))
	}

	columns, err := validateHeader(header)
	if err != nil {
		return nil, err
	}

	table := &domain.AnnotationTable{
		Columns: columns,
		Rows:    make(domain.Table),
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.Classify(domain.KindConfiguration, zerr.Wrap(err, domain.ErrTableReadFailed.Error()))
		}

		raw := strings.TrimSpace(rec[0])
		if raw == "" {
			continue
		}
		id := domain.Identifier(raw)
		if _, dup := table.Rows[id]; dup {
			continue
		}
		row := make(domain.Record, len(columns))
		for i, col := range columns {
			row[col] = strings.TrimSpace(rec[i+1])
		}
		table.Rows[id] = row
		table.Order = append(table.Order, id)
	}
	return table, nil
}

func validateHeader(header []string) ([]string, error) {
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, headerError("empty header")
	}
	seen := map[string]struct{}{domain.IdentifierColumn: {}}
	columns := make([]string, 0, len(header)-1)
	for i, name := range header[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, zerr.With(headerError("empty column name"), "column", i+2)
		}
		if _, dup := seen[name]; dup {
			return nil, zerr.With(headerError("duplicate column name"), "column", name)
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}
	return columns, nil
}

func headerError(reason string) error {
	return domain.Classify(domain.KindConfiguration, zerr.With(domain.ErrTableHeaderInvalid, "reason", reason))
}

// ReadIdentifiers reads the identifiers at path. A file whose first non-blank
// line starts with ">" is read as FASTA and yields the first word of every
// header. Otherwise every non-blank line not starting with "#" is an identifier.
func (r *Reader) ReadIdentifiers(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrIdentifierReadFailed.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	ids, err := ParseIdentifiers(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrIdentifierReadFailed.Error()), "path", path)
	}
	return ids, nil
}

// ParseIdentifiers reads a plain identifier list or a FASTA stream from r.
func ParseIdentifiers(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	// Sequence lines can be long.
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		ids     []string
		fasta   bool
		started bool
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !started {
			started = true
			fasta = strings.HasPrefix(line, ">")
		}
		switch {
		case fasta:
			if header, ok := strings.CutPrefix(line, ">"); ok {
				if fields := strings.Fields(header); len(fields) > 0 {
					ids = append(ids, fields[0])
				}
			}
		case strings.HasPrefix(line, "#"):
		default:
			ids = append(ids, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
