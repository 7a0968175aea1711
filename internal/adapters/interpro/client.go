// Package interpro implements the SourceClient port for the InterPro matches API.
package interpro

import (
	"context"
	"crypto/md5" //nolint:gosec // The matches API keys sequences by MD5.
	"encoding/hex"
	"net/http"
	"strings"
	"sync"

	"go.trai.ch/protanno/internal/adapters/transport"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

type matchesRequest struct {
	MD5 []string `json:"md5"`
}

type matchesResponse struct {
	Results []result `json:"results"`
}

type result struct {
	MD5     string  `json:"md5"`
	Found   bool    `json:"found"`
	Matches []match `json:"matches"`
}

type match struct {
	Signature signature `json:"signature"`
	Score     *float64  `json:"score"`
}

type signature struct {
	Accession string         `json:"accession"`
	Name      string         `json:"name"`
	Library   libraryRelease `json:"signatureLibraryRelease"`
}

type libraryRelease struct {
	Library string `json:"library"`
}

// Client looks up member database matches by sequence hash.
type Client struct {
	baseURL string
	http    *transport.Client
	workers int
}

var _ ports.SourceClient = (*Client)(nil)

// New creates an InterPro client from source settings.
func New(s domain.SourceSettings) *Client {
	return newClientWithHTTP(s, transport.NewHTTPClient(s.Timeout))
}

// newClientWithHTTP creates a Client with a custom http client (used for testing).
func newClientWithHTTP(s domain.SourceSettings, hc *http.Client) *Client {
	base := s.InterProURL
	if base == "" {
		base = domain.DefaultInterProURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    transport.NewClient(hc, transport.PolicyFrom(s)),
		workers: max(s.Workers, 1),
	}
}

// Source returns domain.SourceInterPro.
func (c *Client) Source() domain.Source {
	return domain.SourceInterPro
}

// SequenceHash returns the upper-case hex MD5 of a sequence.
func SequenceHash(seq string) string {
	sum := md5.Sum([]byte(seq)) //nolint:gosec // Protocol defined digest.
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Fetch hashes the sequence input of every identifier and posts the hashes in
// chunks. Identifiers sharing a sequence share its matches.
func (c *Client) Fetch(ctx context.Context, req ports.FetchRequest) (*ports.FetchResult, error) {
	res := ports.NewFetchResult()

	byLibrary := make(map[string]string, len(req.Fields))
	for _, f := range req.Fields {
		if f.Library != "" {
			byLibrary[f.Library] = f.Name
		}
	}

	byHash := make(map[string][]domain.Identifier)
	var hashes []string
	for _, id := range req.Identifiers {
		seq := req.Inputs.Value(id, domain.FieldSequence)
		if seq == "" {
			res.Fail(id, domain.Classify(domain.KindIdentifierResolution,
				zerr.With(domain.ErrMissingInput, "input", domain.FieldSequence)))
			continue
		}
		h := SequenceHash(seq)
		if _, seen := byHash[h]; !seen {
			hashes = append(hashes, h)
		}
		byHash[h] = append(byHash[h], id)
	}
	if len(hashes) == 0 {
		return res, nil
	}

	var mu sync.Mutex
	failures, err := transport.Chunks(ctx, hashes, transport.MaxChunk, c.workers,
		func(ctx context.Context, chunk []string) error {
			var resp matchesResponse
			if err := c.http.PostJSON(ctx, c.baseURL+"/matches", matchesRequest{MD5: chunk}, &resp); err != nil {
				return zerr.With(err, "chunk_size", len(chunk))
			}

			mu.Lock()
			defer mu.Unlock()
			answered := make(map[string]bool, len(resp.Results))
			for _, r := range resp.Results {
				h := strings.ToUpper(r.MD5)
				answered[h] = true
				rec := observe(r, byLibrary)
				for _, id := range byHash[h] {
					out := res.Record(id)
					for field, obs := range rec {
						out.Add(field, obs...)
					}
				}
			}
			for _, h := range chunk {
				if answered[h] {
					continue
				}
				for _, id := range byHash[h] {
					res.Fail(id, domain.Classify(domain.KindIdentifierResolution,
						zerr.With(domain.ErrUnresolvedIdentifier, "md5", h)))
				}
			}
			return nil
		})
	for _, f := range failures {
		for _, h := range f.Items {
			for _, id := range byHash[h] {
				res.Fail(id, f.Err)
			}
		}
	}
	return res, err
}

// observe turns the matches of one hash into observations keyed by field. A
// hash that InterPro does not know yields no observations.
func observe(r result, byLibrary map[string]string) domain.RawRecord {
	rec := make(domain.RawRecord)
	if !r.Found {
		return rec
	}
	for _, m := range r.Matches {
		field, ok := byLibrary[strings.ToLower(m.Signature.Library.Library)]
		if !ok || m.Signature.Accession == "" {
			continue
		}
		rec.Add(field, domain.Observation{
			Value: m.Signature.Accession,
			Label: m.Signature.Name,
			Score: m.Score,
		})
	}
	return rec
}
