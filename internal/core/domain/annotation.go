package domain

// Observation is one raw value reported by a source, before canonicalization
// and resolution.
type Observation struct {
	Value string
	// Evidence is the raw evidence reference, e.g. "ECO:0000269" or "IDA:UniProtKB".
	Evidence string
	// Label is a human readable name shown next to the value (InterPro signature names).
	Label string
	// Score is a match score when the source reports one.
	Score *float64
}

// RawRecord holds the observations of one identifier, keyed by field name.
type RawRecord map[string][]Observation

// Add appends observations for field.
func (r RawRecord) Add(field string, obs ...Observation) {
	r[field] = append(r[field], obs...)
}

// Record holds the resolved values of one identifier, keyed by field name.
type Record map[string]string

// Table maps identifiers to their resolved records.
type Table map[Identifier]Record

// Value returns the value of field for id, or "" when it is not set.
func (t Table) Value(id Identifier, field string) string {
	rec, ok := t[id]
	if !ok {
		return ""
	}
	return rec[field]
}

// Set stores value for (id, field), creating the record when needed.
func (t Table) Set(id Identifier, field, value string) {
	rec, ok := t[id]
	if !ok {
		rec = make(Record)
		t[id] = rec
	}
	rec[field] = value
}
