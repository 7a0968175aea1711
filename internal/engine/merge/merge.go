// Package merge assembles the final output table from cached annotations,
// derived fields and a user supplied CSV table.
package merge

import (
	"slices"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/engine/planner"
	"go.trai.ch/protanno/internal/engine/resolver"
)

// Input holds everything the assembler reads.
type Input struct {
	// Identifiers lists output rows in order.
	Identifiers []domain.Identifier
	// Table holds the resolved source values.
	Table domain.Table
	// Fields is the user request. Always-included fields are added.
	Fields []domain.Field
	// Derived holds the values of derived fields.
	Derived domain.Table
	// CSV is optional.
	CSV *domain.AnnotationTable
	// StripEvidence drops "|code" suffixes from evidence-bearing source values.
	StripEvidence bool
	// Dropped names fields removed because their source was unavailable.
	Dropped []string
}

// Columns returns the output columns: identifier, always-included fields,
// requested fields, then CSV-only columns in CSV order.
func Columns(in Input) []string {
	columns := []string{domain.IdentifierColumn}
	seen := map[string]struct{}{domain.IdentifierColumn: {}}
	for _, f := range planner.WithAlwaysIncluded(in.Fields) {
		if f.Internal || slices.Contains(in.Dropped, f.Name) {
			continue
		}
		seen[f.Name] = struct{}{}
		columns = append(columns, f.Name)
	}
	if in.CSV != nil {
		for _, c := range in.CSV.Columns {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			columns = append(columns, c)
		}
	}
	return columns
}

// Assemble builds exactly one row per identifier. A CSV value wins over a
// source value of the same name when the CSV has a row for the identifier.
// Missing values are "".
func Assemble(in Input) *domain.OutputTable {
	columns := Columns(in)

	fieldOf := make(map[string]domain.Field, len(columns))
	for _, name := range columns[1:] {
		if f, ok := domain.LookupField(name); ok {
			fieldOf[name] = f
		}
	}
	var csvCols map[string]struct{}
	if in.CSV != nil {
		csvCols = make(map[string]struct{}, len(in.CSV.Columns))
		for _, c := range in.CSV.Columns {
			csvCols[c] = struct{}{}
		}
	}

	rows := make([][]string, 0, len(in.Identifiers))
	for _, id := range in.Identifiers {
		row := make([]string, len(columns))
		row[0] = string(id)

		var csvRow domain.Record
		if in.CSV != nil {
			csvRow = in.CSV.Rows[id]
		}

		for i, name := range columns[1:] {
			if _, fromCSV := csvCols[name]; fromCSV && csvRow != nil {
				row[i+1] = csvRow[name]
				continue
			}
			row[i+1] = sourceValue(in, id, fieldOf, name)
		}
		rows = append(rows, row)
	}

	return &domain.OutputTable{Columns: columns, Rows: rows}
}

func sourceValue(in Input, id domain.Identifier, fieldOf map[string]domain.Field, name string) string {
	f, ok := fieldOf[name]
	if !ok {
		return ""
	}
	if f.Source == domain.SourceDerived {
		return in.Derived.Value(id, name)
	}
	v := in.Table.Value(id, name)
	if in.StripEvidence && f.EvidenceBearing() {
		return resolver.StripEvidence(v)
	}
	return v
}
