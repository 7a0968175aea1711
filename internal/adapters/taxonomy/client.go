// Package taxonomy implements the SourceClient port for taxonomic lineages,
// looked up through the UniProt taxonomy REST endpoint.
package taxonomy

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.trai.ch/protanno/internal/adapters/transport"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

type searchResponse struct {
	Results []taxon `json:"results"`
}

type taxon struct {
	TaxonID        int            `json:"taxonId"`
	ScientificName string         `json:"scientificName"`
	Rank           string         `json:"rank"`
	Lineage        []lineageEntry `json:"lineage"`
}

type lineageEntry struct {
	TaxonID        int    `json:"taxonId"`
	ScientificName string `json:"scientificName"`
	Rank           string `json:"rank"`
}

// Lineage maps rank names to scientific names for one taxon.
type Lineage map[string]string

// Client resolves taxon ids to lineages. Lineages are remembered for the
// lifetime of the client.
type Client struct {
	baseURL string
	http    *transport.Client
	workers int

	group singleflight.Group
	mu    sync.RWMutex
	known map[string]Lineage
}

var _ ports.SourceClient = (*Client)(nil)

// New creates a taxonomy client from source settings.
func New(s domain.SourceSettings) *Client {
	return newClientWithHTTP(s, transport.NewHTTPClient(s.Timeout))
}

// newClientWithHTTP creates a Client with a custom http client (used for testing).
func newClientWithHTTP(s domain.SourceSettings, hc *http.Client) *Client {
	base := s.TaxonomyURL
	if base == "" {
		base = domain.DefaultTaxonomyURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    transport.NewClient(hc, transport.PolicyFrom(s)),
		workers: max(s.Workers, 1),
		known:   make(map[string]Lineage),
	}
}

// Source returns domain.SourceTaxonomy.
func (c *Client) Source() domain.Source {
	return domain.SourceTaxonomy
}

// Fetch resolves the organism input of every identifier into rank fields.
func (c *Client) Fetch(ctx context.Context, req ports.FetchRequest) (*ports.FetchResult, error) {
	res := ports.NewFetchResult()

	byTaxon := make(map[string][]domain.Identifier)
	var pending []string
	for _, id := range req.Identifiers {
		taxID := req.Inputs.Value(id, domain.FieldOrganismID)
		if taxID == "" {
			res.Fail(id, domain.Classify(domain.KindIdentifierResolution,
				zerr.With(domain.ErrMissingInput, "input", domain.FieldOrganismID)))
			continue
		}
		if _, seen := byTaxon[taxID]; !seen && !c.isKnown(taxID) {
			pending = append(pending, taxID)
		}
		byTaxon[taxID] = append(byTaxon[taxID], id)
	}

	var (
		failures []transport.ChunkFailure[string]
		err      error
	)
	if len(pending) > 0 {
		slices.Sort(pending)
		failures, err = transport.Chunks(ctx, pending, transport.MaxChunk, c.workers, c.lookupChunk)
	}

	failed := make(map[string]error)
	for _, f := range failures {
		for _, taxID := range f.Items {
			failed[taxID] = f.Err
		}
	}

	for taxID, ids := range byTaxon {
		if ferr, ok := failed[taxID]; ok {
			for _, id := range ids {
				res.Fail(id, ferr)
			}
			continue
		}
		lineage, ok := c.lineage(taxID)
		if !ok {
			for _, id := range ids {
				res.Fail(id, domain.Classify(domain.KindIdentifierResolution,
					zerr.With(domain.ErrUnresolvedIdentifier, "taxon_id", taxID)))
			}
			continue
		}
		for _, id := range ids {
			rec := res.Record(id)
			for _, f := range req.Fields {
				if v := lineage.Field(f.Name); v != "" {
					rec.Add(f.Name, domain.Observation{Value: v})
				}
			}
		}
	}
	return res, err
}

// lookupChunk fetches one chunk of taxa. Concurrent requests for the same chunk
// share a single call.
func (c *Client) lookupChunk(ctx context.Context, taxIDs []string) error {
	key := strings.Join(taxIDs, ",")
	_, err, _ := c.group.Do(key, func() (any, error) {
		terms := make([]string, len(taxIDs))
		for i, id := range taxIDs {
			terms[i] = "tax_id:" + id
		}
		q := url.Values{}
		q.Set("query", strings.Join(terms, " OR "))
		q.Set("format", "json")
		q.Set("size", strconv.Itoa(len(taxIDs)))

		var resp searchResponse
		if err := c.http.GetJSON(ctx, c.baseURL+"/taxonomy/search?"+q.Encode(), &resp); err != nil {
			return nil, zerr.With(err, "chunk_size", len(taxIDs))
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		for _, t := range resp.Results {
			c.known[strconv.Itoa(t.TaxonID)] = lineageOf(t)
		}
		return nil, nil
	})
	return err
}

func (c *Client) isKnown(taxID string) bool {
	_, ok := c.lineage(taxID)
	return ok
}

func (c *Client) lineage(taxID string) (Lineage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.known[taxID]
	return l, ok
}

// lineageOf collects the ranks of a taxon, its own rank included.
func lineageOf(t taxon) Lineage {
	l := make(Lineage, len(t.Lineage)+1)
	for _, e := range t.Lineage {
		if e.Rank != "" && e.Rank != "no rank" {
			l[strings.ToLower(e.Rank)] = e.ScientificName
		}
	}
	if t.Rank != "" {
		l[strings.ToLower(t.Rank)] = t.ScientificName
	}
	return l
}

// Field returns the value of a taxonomy field. Root is the cellular or acellular
// root; domain falls back to superkingdom and then realm.
func (l Lineage) Field(name string) string {
	switch name {
	case "root":
		return firstOf(l, "cellular root", "acellular root")
	case "domain":
		return firstOf(l, "domain", "superkingdom", "realm")
	default:
		return l[name]
	}
}

func firstOf(l Lineage, ranks ...string) string {
	for _, r := range ranks {
		if v := l[r]; v != "" {
			return v
		}
	}
	return ""
}
