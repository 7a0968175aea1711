package domain

// AnnotationTable is a user supplied table read from CSV.
// Columns excludes the identifier column.
type AnnotationTable struct {
	Columns []string
	// Order lists identifiers in file order.
	Order []Identifier
	Rows  Table
}

// OutputTable is the final table, one row per requested identifier.
// Columns starts with IdentifierColumn.
type OutputTable struct {
	Columns []string
	Rows    [][]string
}

// RunReport summarizes what a run did.
type RunReport struct {
	Key      CacheKey
	State    RunState
	CacheHit bool
	// Fetched lists the fields requested from each source that was called.
	Fetched map[Source][]string
	// Failed counts distinct identifiers that could not be resolved by any called source.
	Failed int
	// Outages lists sources that failed completely.
	Outages []Source
	// Dropped lists fields removed from the output because of an outage.
	Dropped  []string
	Repaired bool
	Rows     int
}
