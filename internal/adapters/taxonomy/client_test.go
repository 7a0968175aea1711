package taxonomy_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/protanno/internal/adapters/taxonomy"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
)

// MockRoundTripper is a helper to mock http.Client behavior.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) *http.Response
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req), nil
}

func newMockClient(handler func(req *http.Request) *http.Response) *http.Client {
	return &http.Client{
		Transport: &MockRoundTripper{RoundTripFunc: handler},
	}
}

func respond(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const humanAndPhage = `{"results":[
  {"taxonId":9606,"scientificName":"Homo sapiens","rank":"species","lineage":[
    {"taxonId":9605,"scientificName":"Homo","rank":"genus"},
    {"taxonId":9604,"scientificName":"Hominidae","rank":"family"},
    {"taxonId":9443,"scientificName":"Primates","rank":"order"},
    {"taxonId":40674,"scientificName":"Mammalia","rank":"class"},
    {"taxonId":7711,"scientificName":"Chordata","rank":"phylum"},
    {"taxonId":33208,"scientificName":"Metazoa","rank":"kingdom"},
    {"taxonId":2759,"scientificName":"Eukaryota","rank":"superkingdom"},
    {"taxonId":131567,"scientificName":"cellular organisms","rank":"cellular root"},
    {"taxonId":1,"scientificName":"root","rank":"no rank"}
  ]},
  {"taxonId":10710,"scientificName":"Lambdavirus lambda","rank":"species","lineage":[
    {"taxonId":2731341,"scientificName":"Duplodnaviria","rank":"realm"},
    {"taxonId":10239,"scientificName":"Viruses","rank":"acellular root"}
  ]}
]}`

func testSettings() domain.SourceSettings {
	s := domain.DefaultSettings().Sources
	s.TaxonomyURL = "https://taxonomy.test"
	s.BackoffUnit = time.Millisecond
	s.MaxBackoff = 5 * time.Millisecond
	return s
}

func taxonomyFields() []domain.Field {
	fields, _ := domain.ExpandFields([]string{"taxonomy"})
	return fields
}

func TestClient_Fetch(t *testing.T) {
	var calls atomic.Int32
	hc := newMockClient(func(req *http.Request) *http.Response {
		calls.Add(1)
		assert.Equal(t, "/taxonomy/search", req.URL.Path)
		assert.Equal(t, "tax_id:10710 OR tax_id:424242 OR tax_id:9606", req.URL.Query().Get("query"))
		return respond(http.StatusOK, humanAndPhage)
	})
	client := taxonomy.NewClientWithHTTP(testSettings(), hc)

	req := ports.FetchRequest{
		Identifiers: []domain.Identifier{"H1", "H2", "V1", "X1", "N1"},
		Fields:      taxonomyFields(),
		Inputs: domain.Table{
			"H1": {domain.FieldOrganismID: "9606"},
			"H2": {domain.FieldOrganismID: "9606"},
			"V1": {domain.FieldOrganismID: "10710"},
			"X1": {domain.FieldOrganismID: "424242"},
		},
	}

	res, err := client.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "distinct taxa share one request")

	h1 := res.Records["H1"]
	assert.Equal(t, "cellular organisms", h1["root"][0].Value)
	assert.Equal(t, "Eukaryota", h1["domain"][0].Value)
	assert.Equal(t, "Metazoa", h1["kingdom"][0].Value)
	assert.Equal(t, "Mammalia", h1["class"][0].Value)
	assert.Equal(t, "Homo sapiens", h1["species"][0].Value)
	assert.Equal(t, h1, res.Records["H2"])

	v1 := res.Records["V1"]
	assert.Equal(t, "Viruses", v1["root"][0].Value)
	assert.Equal(t, "Duplodnaviria", v1["domain"][0].Value)
	assert.Empty(t, v1["kingdom"])

	assert.Contains(t, res.Failed, domain.Identifier("X1"), "unknown taxon")
	assert.ErrorContains(t, res.Failed["N1"], domain.ErrMissingInput.Error())

	// Known lineages are not requested again.
	_, err = client.Fetch(context.Background(), ports.FetchRequest{
		Identifiers: []domain.Identifier{"H3"},
		Fields:      taxonomyFields(),
		Inputs:      domain.Table{"H3": {domain.FieldOrganismID: "9606"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLineage_Field(t *testing.T) {
	l := taxonomy.Lineage{"domain": "Bacteria", "superkingdom": "Bacteria-old", "genus": "Escherichia"}

	assert.Equal(t, "Bacteria", l.Field("domain"))
	assert.Equal(t, "Escherichia", l.Field("genus"))
	assert.Empty(t, l.Field("root"))
	assert.Equal(t, "Riboviria", taxonomy.Lineage{"realm": "Riboviria"}.Field("domain"))
}

func TestClient_FetchOutage(t *testing.T) {
	hc := newMockClient(func(*http.Request) *http.Response { return respond(http.StatusTooManyRequests, "") })
	client := taxonomy.NewClientWithHTTP(testSettings(), hc)

	res, err := client.Fetch(context.Background(), ports.FetchRequest{
		Identifiers: []domain.Identifier{"H1"},
		Fields:      taxonomyFields(),
		Inputs:      domain.Table{"H1": {domain.FieldOrganismID: "9606"}},
	})

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrSourceOutage.Error())
	assert.True(t, domain.IsKind(res.Failed["H1"], domain.KindRateLimit))
}
