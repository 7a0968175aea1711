package domain

import (
	"slices"
	"strings"
)

// Identifier names one protein, usually a UniProt accession or a FASTA header.
type Identifier string

// IdentifierSet is a sorted set of unique identifiers.
// The zero value is an empty set.
type IdentifierSet struct {
	ids []Identifier
}

// NewIdentifierSet builds a set from raw strings. Surrounding whitespace is trimmed,
// empty strings are dropped and duplicates collapse.
func NewIdentifierSet(raw []string) IdentifierSet {
	ids := make([]Identifier, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		ids = append(ids, Identifier(r))
	}
	slices.Sort(ids)
	return IdentifierSet{ids: slices.Compact(ids)}
}

// Len returns the number of identifiers in the set.
func (s IdentifierSet) Len() int {
	return len(s.ids)
}

// Slice returns a copy of the identifiers in sorted order.
func (s IdentifierSet) Slice() []Identifier {
	return slices.Clone(s.ids)
}

// Contains reports whether id is a member of the set.
func (s IdentifierSet) Contains(id Identifier) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// Accession extracts the UniProt accession from FASTA style headers such as
// "sp|P12345|INS_HUMAN". Other identifiers are returned unchanged.
func Accession(id Identifier) string {
	s := string(id)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "sp|") && !strings.HasPrefix(lower, "tr|") {
		return s
	}
	parts := strings.Split(s, "|")
	if len(parts) < 2 || parts[1] == "" {
		return s
	}
	return parts[1]
}
