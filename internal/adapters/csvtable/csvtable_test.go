package csvtable_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/protanno/internal/adapters/csvtable"
	"go.trai.ch/protanno/internal/core/domain"
)

func TestParseAnnotations(t *testing.T) {
	input := "protein_id,family,score\nP1,kinase,3\nP2,,7\nP1,ignored,0\n\n"

	got, err := csvtable.ParseAnnotations(strings.NewReader(input), ',')

	require.NoError(t, err)
	want := &domain.AnnotationTable{
		Columns: []string{"family", "score"},
		Order:   []domain.Identifier{"P1", "P2"},
		Rows: domain.Table{
			"P1": {"family": "kinase", "score": "3"},
			"P2": {"family": "", "score": "7"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseAnnotations() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAnnotations_TabDelimiter(t *testing.T) {
	got, err := csvtable.ParseAnnotations(strings.NewReader("id\tgroup\nsp|P12345|INS_HUMAN\ta\n"), '\t')

	require.NoError(t, err)
	assert.Equal(t, "a", got.Rows.Value("sp|P12345|INS_HUMAN", "group"))
}

func TestParseAnnotations_InvalidHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty file", input: ""},
		{name: "empty column name", input: "id,,family\nP1,a,b\n"},
		{name: "duplicate column", input: "id,family,family\nP1,a,b\n"},
		{name: "identifier column repeated", input: "id,identifier\nP1,a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvtable.ParseAnnotations(strings.NewReader(tt.input), ',')

			require.Error(t, err)
			assert.ErrorContains(t, err, domain.ErrTableHeaderInvalid.Error())
			assert.True(t, domain.IsKind(err, domain.KindConfiguration))
		})
	}
}

func TestParseAnnotations_RaggedRow(t *testing.T) {
	_, err := csvtable.ParseAnnotations(strings.NewReader("id,a,b\nP1,x\n"), ',')

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
}

func TestReader_ReadAnnotations_MissingFile(t *testing.T) {
	_, err := csvtable.NewReader().ReadAnnotations(filepath.Join(t.TempDir(), "nope.csv"), ',')

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTableReadFailed.Error())
}

func TestParseIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain list",
			input: "P01308\n\n# comment\n  Q9Y6K9  \nP01308\n",
			want:  []string{"P01308", "Q9Y6K9", "P01308"},
		},
		{
			name:  "fasta",
			input: ">sp|P01308|INS_HUMAN Insulin OS=Homo sapiens\nMALWMRLLPLL\nALLALWGPDPAAA\n>tr|A0A024R161|A0A024R161_HUMAN\nMSKGE\n",
			want:  []string{"sp|P01308|INS_HUMAN", "tr|A0A024R161|A0A024R161_HUMAN"},
		},
		{
			name:  "empty",
			input: "\n\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := csvtable.ParseIdentifiers(strings.NewReader(tt.input))

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_ReadIdentifiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("P1\nP2\n"), 0o600))

	got, err := csvtable.NewReader().ReadIdentifiers(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, got)

	_, err = csvtable.NewReader().ReadIdentifiers(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, domain.ErrIdentifierReadFailed.Error())
}

func TestWriter_Write(t *testing.T) {
	table := &domain.OutputTable{
		Columns: []string{"identifier", "ec", "protein_name"},
		Rows: [][]string{
			{"P1", "2.7.11.1|EXP;3.1.1.1", "Kinase, putative"},
			{"P2", "", ""},
		},
	}

	t.Run("comma", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, csvtable.NewWriter().Write(&buf, table, ','))
		assert.Equal(t,
			"identifier,ec,protein_name\nP1,2.7.11.1|EXP;3.1.1.1,\"Kinase, putative\"\nP2,,\n",
			buf.String())
	})

	t.Run("tab", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, csvtable.NewWriter().Write(&buf, table, '\t'))
		assert.Equal(t,
			"identifier\tec\tprotein_name\nP1\t2.7.11.1|EXP;3.1.1.1\tKinase, putative\nP2\t\t\n",
			buf.String())
	})

	t.Run("invalid delimiter", func(t *testing.T) {
		var buf bytes.Buffer
		err := csvtable.NewWriter().Write(&buf, table, '\n')
		assert.ErrorContains(t, err, domain.ErrTableWriteFailed.Error())
	})
}
