package domain

import (
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// CacheEntry is the stored annotation table of one identifier set.
type CacheEntry struct {
	Key         CacheKey     `json:"key"`
	Identifiers []Identifier `json:"identifiers"`
	// Fields is the presence set. A listed field has a value, possibly empty,
	// for every identifier. An unlisted field was never fetched.
	Fields    []string  `json:"fields"`
	Table     Table     `json:"table"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CacheDelta carries newly resolved fields to merge into an entry.
// Identifiers missing from Table are stored with empty values for every field in Fields.
type CacheDelta struct {
	Fields []string
	Table  Table
}

// NewCacheEntry returns an empty entry for the identifier set.
func NewCacheEntry(key CacheKey, set IdentifierSet) *CacheEntry {
	return &CacheEntry{
		Key:         key,
		Identifiers: set.Slice(),
		Table:       make(Table, set.Len()),
	}
}

// Has reports whether field is present in the entry.
func (e *CacheEntry) Has(field string) bool {
	if e == nil {
		return false
	}
	_, found := slices.BinarySearch(e.Fields, field)
	return found
}

// Present returns the sorted presence set.
func (e *CacheEntry) Present() []string {
	if e == nil {
		return nil
	}
	return slices.Clone(e.Fields)
}

// Merge folds delta into the entry. Every delta field becomes present for all
// identifiers of the entry, with "" where the delta has no value.
func (e *CacheEntry) Merge(delta CacheDelta, now time.Time) {
	if e.Table == nil {
		e.Table = make(Table, len(e.Identifiers))
	}
	for _, field := range delta.Fields {
		for _, id := range e.Identifiers {
			e.Table.Set(id, field, delta.Table.Value(id, field))
		}
		if !e.Has(field) {
			e.Fields = append(e.Fields, field)
			slices.Sort(e.Fields)
		}
	}
	e.UpdatedAt = now
}

// Validate checks that the entry belongs to key and that every present field is
// populated for every identifier.
func (e *CacheEntry) Validate(key CacheKey) error {
	if e.Key != key {
		err := zerr.With(ErrEntryKeyMismatch, "expected", string(key))
		return Classify(KindCacheCorruption, zerr.With(err, "actual", string(e.Key)))
	}
	if !slices.IsSorted(e.Fields) {
		return Classify(KindCacheCorruption, zerr.With(ErrEntryPartialField, "reason", "unsorted presence set"))
	}
	for _, field := range e.Fields {
		for _, id := range e.Identifiers {
			rec, ok := e.Table[id]
			if !ok {
				return Classify(KindCacheCorruption, zerr.With(ErrEntryPartialField, "identifier", string(id)))
			}
			if _, ok := rec[field]; !ok {
				err := zerr.With(ErrEntryPartialField, "field", field)
				return Classify(KindCacheCorruption, zerr.With(err, "identifier", string(id)))
			}
		}
	}
	return nil
}
