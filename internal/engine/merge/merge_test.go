package merge_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/engine/merge"
)

func mustFields(t *testing.T, names ...string) []domain.Field {
	t.Helper()
	f, err := domain.ExpandFields(names)
	require.NoError(t, err)
	return f
}

func sourceTable() domain.Table {
	return domain.Table{
		"P1": {
			"gene_name": "INS", "protein_name": "Insulin", "uniprot_kb_id": "INS_HUMAN",
			"family": "Hominidae", "ec": "2.7.11.1|EXP;3.1.1.1|IEA", "keyword": "Hormone;Signal",
			"sequence": "MALW", "length": "110",
		},
		"P2": {
			"gene_name": "", "protein_name": "", "uniprot_kb_id": "",
			"family": "Muridae", "ec": "", "keyword": "",
		},
	}
}

func TestAssemble_ColumnsAndRows(t *testing.T) {
	got := merge.Assemble(merge.Input{
		Identifiers: []domain.Identifier{"P2", "P1", "P3"},
		Table:       sourceTable(),
		Fields:      mustFields(t, "ec", "keyword", "length_fixed"),
		Derived:     domain.Table{"P1": {"length_fixed": "100-200"}, "P2": {"length_fixed": "unknown"}},
	})

	want := &domain.OutputTable{
		Columns: []string{"identifier", "gene_name", "protein_name", "uniprot_kb_id", "ec", "keyword", "length_fixed"},
		Rows: [][]string{
			{"P2", "", "", "", "", "", "unknown"},
			{"P1", "INS", "Insulin", "INS_HUMAN", "2.7.11.1|EXP;3.1.1.1|IEA", "Hormone;Signal", "100-200"},
			{"P3", "", "", "", "", "", ""},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_CSVPrecedence(t *testing.T) {
	csv := &domain.AnnotationTable{
		Columns: []string{"family", "cluster"},
		Order:   []domain.Identifier{"P1"},
		Rows:    domain.Table{"P1": {"family": "kinase-like", "cluster": "7"}},
	}

	got := merge.Assemble(merge.Input{
		Identifiers: []domain.Identifier{"P1", "P2"},
		Table:       sourceTable(),
		Fields:      mustFields(t, "family"),
		CSV:         csv,
	})

	assert.Equal(t, []string{"identifier", "gene_name", "protein_name", "uniprot_kb_id", "family", "cluster"}, got.Columns)
	assert.Equal(t, "kinase-like", got.Rows[0][4], "CSV value overrides the taxonomy family")
	assert.Equal(t, "7", got.Rows[0][5])
	assert.Equal(t, "Muridae", got.Rows[1][4], "identifiers missing from the CSV keep source values")
	assert.Equal(t, "", got.Rows[1][5])
}

func TestAssemble_StripEvidence(t *testing.T) {
	got := merge.Assemble(merge.Input{
		Identifiers:   []domain.Identifier{"P1"},
		Table:         sourceTable(),
		Fields:        mustFields(t, "ec", "keyword"),
		StripEvidence: true,
	})

	assert.Equal(t, "2.7.11.1;3.1.1.1", got.Rows[0][4])
	assert.Equal(t, "Hormone;Signal", got.Rows[0][5])
}

func TestAssemble_DroppedFields(t *testing.T) {
	got := merge.Assemble(merge.Input{
		Identifiers: []domain.Identifier{"P1"},
		Table:       sourceTable(),
		Fields:      mustFields(t, "ec", "pfam"),
		Dropped:     []string{"pfam"},
	})

	assert.Equal(t, []string{"identifier", "gene_name", "protein_name", "uniprot_kb_id", "ec"}, got.Columns)
	require.Len(t, got.Rows, 1)
	assert.Len(t, got.Rows[0], len(got.Columns))
}

func TestAssemble_InternalFieldsNeverEmitted(t *testing.T) {
	got := merge.Assemble(merge.Input{
		Identifiers: []domain.Identifier{"P1"},
		Table:       sourceTable(),
		Fields:      mustFields(t, "length_quantile"),
		Derived:     domain.Table{"P1": {"length_quantile": "110"}},
	})

	assert.NotContains(t, got.Columns, "length")
	assert.NotContains(t, got.Columns, "sequence")
	assert.Equal(t, "110", got.Rows[0][4])
}
