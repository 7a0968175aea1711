// Package uniprot implements the SourceClient port for the UniProtKB REST API.
package uniprot

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/protanno/internal/adapters/transport"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

// Client fetches UniProtKB entries in chunks of accessions.
type Client struct {
	baseURL string
	http    *transport.Client
	workers int
}

var _ ports.SourceClient = (*Client)(nil)

// New creates a UniProt client from source settings.
func New(s domain.SourceSettings) *Client {
	return newClientWithHTTP(s, transport.NewHTTPClient(s.Timeout))
}

// newClientWithHTTP creates a Client with a custom http client (used for testing).
func newClientWithHTTP(s domain.SourceSettings, hc *http.Client) *Client {
	base := s.UniProtURL
	if base == "" {
		base = domain.DefaultUniProtURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    transport.NewClient(hc, transport.PolicyFrom(s)),
		workers: max(s.Workers, 1),
	}
}

// Source returns domain.SourceUniProt.
func (c *Client) Source() domain.Source {
	return domain.SourceUniProt
}

// Fetch retrieves the requested fields for every identifier. Accessions missing
// from a chunk answer get one secondary-accession lookup before they fail.
func (c *Client) Fetch(ctx context.Context, req ports.FetchRequest) (*ports.FetchResult, error) {
	result := ports.NewFetchResult()
	if len(req.Identifiers) == 0 {
		return result, nil
	}

	// Several identifiers may share one accession.
	byAccession := make(map[string][]domain.Identifier)
	var accessions []string
	for _, id := range req.Identifiers {
		acc := domain.Accession(id)
		if _, seen := byAccession[acc]; !seen {
			accessions = append(accessions, acc)
		}
		byAccession[acc] = append(byAccession[acc], id)
	}

	fieldsParam := returnFieldsFor(req.Fields)
	var mu sync.Mutex
	record := func(acc string, e *entry) {
		rec := extract(e, req.Fields)
		mu.Lock()
		defer mu.Unlock()
		for _, id := range byAccession[acc] {
			for field, obs := range rec {
				result.Record(id).Add(field, obs...)
			}
			if len(rec) == 0 {
				result.Record(id)
			}
		}
	}
	fail := func(acc string, err error) {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range byAccession[acc] {
			result.Fail(id, err)
		}
	}

	failures, err := transport.Chunks(ctx, accessions, transport.MaxChunk, c.workers,
		func(ctx context.Context, chunk []string) error {
			return c.resolveChunk(ctx, chunk, fieldsParam, record, fail)
		})
	for _, f := range failures {
		for _, acc := range f.Items {
			fail(acc, f.Err)
		}
	}
	return result, err
}

// resolveChunk fetches chunk and records every accession in it. A chunk the
// service rejects with a client error is split in halves until the rejected
// accessions are isolated, so only those fail.
func (c *Client) resolveChunk(
	ctx context.Context,
	chunk []string,
	fields string,
	record func(string, *entry),
	fail func(string, error),
) error {
	found, err := c.fetchChunk(ctx, chunk, fields)
	if domain.IsKind(err, domain.KindIdentifierResolution) {
		if len(chunk) == 1 {
			fail(chunk[0], zerr.With(err, "accession", chunk[0]))
			return nil
		}
		mid := len(chunk) / 2
		if err := c.resolveChunk(ctx, chunk[:mid], fields, record, fail); err != nil {
			return err
		}
		return c.resolveChunk(ctx, chunk[mid:], fields, record, fail)
	}
	if err != nil {
		return err
	}

	for _, acc := range chunk {
		e, ok := found[acc]
		switch {
		case ok && !e.inactive():
			record(acc, e)
			continue
		case ok:
			e, err = c.lookupReplacement(ctx, acc, e, fields)
		default:
			e, err = c.lookupSecondary(ctx, acc, fields)
		}
		if err != nil {
			fail(acc, err)
			continue
		}
		record(acc, e)
	}
	return nil
}

// fetchChunk returns the entries of one chunk indexed by primary and secondary accessions.
func (c *Client) fetchChunk(ctx context.Context, accessions []string, fields string) (map[string]*entry, error) {
	q := url.Values{}
	q.Set("accessions", strings.Join(accessions, ","))
	q.Set("format", "json")
	q.Set("fields", fields)
	q.Set("size", "500")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/uniprotkb/accessions?"+q.Encode(), &resp); err != nil {
		return nil, zerr.With(err, "chunk_size", len(accessions))
	}

	// Active entries claim their accessions first, so an inactive record never
	// hides the entry it was merged into.
	found := make(map[string]*entry, len(resp.Results))
	for i := range resp.Results {
		if e := &resp.Results[i]; !e.inactive() {
			found[e.PrimaryAccession] = e
		}
	}
	for i := range resp.Results {
		e := &resp.Results[i]
		if e.inactive() {
			continue
		}
		for _, sec := range e.SecondaryAccessions {
			if _, taken := found[sec]; !taken {
				found[sec] = e
			}
		}
	}
	for i := range resp.Results {
		e := &resp.Results[i]
		if _, taken := found[e.PrimaryAccession]; !taken {
			found[e.PrimaryAccession] = e
		}
	}
	return found, nil
}

// lookupReplacement resolves an inactive entry through the accessions it was
// merged or demerged into, then through the secondary accession search.
func (c *Client) lookupReplacement(ctx context.Context, accession string, inactive *entry, fields string) (*entry, error) {
	if r := inactive.InactiveReason; r != nil && len(r.MergeDemergeTo) > 0 {
		targets, err := c.fetchChunk(ctx, r.MergeDemergeTo, fields)
		if err == nil {
			for _, to := range r.MergeDemergeTo {
				if e, ok := targets[to]; ok && !e.inactive() {
					return e, nil
				}
			}
		}
	}

	e, err := c.lookupSecondary(ctx, accession, fields)
	if err != nil && inactive.InactiveReason != nil {
		return nil, zerr.With(err, "inactive_reason", inactive.InactiveReason.Type)
	}
	return e, err
}

// lookupSecondary resolves an accession that has been merged into another entry.
func (c *Client) lookupSecondary(ctx context.Context, accession, fields string) (*entry, error) {
	q := url.Values{}
	q.Set("query", "sec_acc:"+accession)
	q.Set("format", "json")
	q.Set("fields", fields)
	q.Set("size", "5")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/uniprotkb/search?"+q.Encode(), &resp); err != nil {
		return nil, domain.Classify(domain.KindIdentifierResolution, zerr.With(err, "accession", accession))
	}
	for i := range resp.Results {
		if e := &resp.Results[i]; !e.inactive() {
			return e, nil
		}
	}
	return nil, domain.Classify(domain.KindIdentifierResolution,
		zerr.With(domain.ErrUnresolvedIdentifier, "accession", accession))
}

// returnFieldsFor lists the UniProt return fields needed for fields. The
// accession is always requested so answers can be matched to identifiers.
func returnFieldsFor(fields []domain.Field) string {
	names := []string{returnFields[domain.FieldAccession]}
	for _, f := range fields {
		name, ok := returnFields[f.Name]
		if !ok || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}
	return strings.Join(names, ",")
}
