package ports

import (
	"context"

	"go.trai.ch/protanno/internal/core/domain"
)

// FetchRequest asks a source for a set of fields.
type FetchRequest struct {
	Identifiers []domain.Identifier
	Fields      []domain.Field
	// Inputs holds already known dependency values, e.g. organism_id or sequence.
	Inputs domain.Table
}

// FetchResult carries raw observations. Identifiers listed in Failed could not
// be resolved and receive empty values. Identifiers absent from both maps
// resolved but had no data.
type FetchResult struct {
	Records map[domain.Identifier]domain.RawRecord
	Failed  map[domain.Identifier]error
}

// NewFetchResult returns an empty result.
func NewFetchResult() *FetchResult {
	return &FetchResult{
		Records: make(map[domain.Identifier]domain.RawRecord),
		Failed:  make(map[domain.Identifier]error),
	}
}

// Record returns the raw record for id, creating it when needed.
func (r *FetchResult) Record(id domain.Identifier) domain.RawRecord {
	rec, ok := r.Records[id]
	if !ok {
		rec = make(domain.RawRecord)
		r.Records[id] = rec
	}
	return rec
}

// Fail marks id as failed with err.
func (r *FetchResult) Fail(id domain.Identifier, err error) {
	delete(r.Records, id)
	r.Failed[id] = err
}

// SourceClient fetches annotation fields from one external source.
//
//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceClient interface {
	// Source names the source this client talks to.
	Source() domain.Source

	// Fetch retrieves the requested fields. Per-identifier failures are reported in
	// the result. An error means the whole source was unavailable.
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}

// SourceFactory builds the source clients of one run.
type SourceFactory interface {
	NewSources(settings domain.SourceSettings) []SourceClient
}
