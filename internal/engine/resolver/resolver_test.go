package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/engine/resolver"
)

func obs(pairs ...string) []domain.Observation {
	out := make([]domain.Observation, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Observation{Value: pairs[i], Evidence: pairs[i+1]})
	}
	return out
}

func score(v float64) *float64 { return &v }

func TestResolve_SingleEvidence(t *testing.T) {
	field := domain.MustField("protein_families")

	t.Run("best code wins", func(t *testing.T) {
		got := resolver.Resolve(field, obs(
			"Globin family", "ECO:0007669",
			"Hemoglobin family", "ECO:0000269",
			"Myoglobin family", "ECO:0000314",
		))
		assert.Equal(t, "Hemoglobin family|EXP", got)
	})

	t.Run("ties keep first seen", func(t *testing.T) {
		got := resolver.Resolve(field, obs(
			"A family", "ECO:0000255",
			"B family", "ECO:0000259",
		))
		assert.Equal(t, "A family|SAM", got)
	})

	t.Run("missing code ranks last and renders bare", func(t *testing.T) {
		assert.Equal(t, "A family", resolver.Resolve(field, obs("A family", "")))
		assert.Equal(t, "B family|IEA", resolver.Resolve(field, obs("A family", "", "B family", "ECO:0000501")))
	})

	t.Run("unknown code beats nothing but loses to IEA", func(t *testing.T) {
		got := resolver.Resolve(field, obs("A family", "ECO:1234567", "B family", "ECO:0007669"))
		assert.Equal(t, "B family|IEA", got)
	})

	t.Run("no observations", func(t *testing.T) {
		assert.Empty(t, resolver.Resolve(field, nil))
	})
}

func TestResolve_EvidenceTerms(t *testing.T) {
	field := domain.MustField("go_bp")

	got := resolver.Resolve(field, obs(
		"apoptotic process", "IEA:UniProtKB-KW",
		"DNA repair", "IMP:UniProtKB",
		"apoptotic process", "IDA:UniProtKB",
		"DNA repair", "IEA:InterPro",
	))

	assert.Equal(t, "apoptotic process|IDA;DNA repair|IMP", got)
}

func TestResolve_Deterministic(t *testing.T) {
	field := domain.MustField("cc_subcellular_location")
	in := obs("Nucleus", "ECO:0000250", "Cytoplasm", "ECO:0000269", "Nucleus", "ECO:0000269")

	first := resolver.Resolve(field, in)
	for range 10 {
		assert.Equal(t, first, resolver.Resolve(field, in))
	}
}

func TestResolve_Scored(t *testing.T) {
	field := domain.MustField("pfam")

	got := resolver.Resolve(field, []domain.Observation{
		{Value: "PF00069", Label: "Pkinase", Score: score(1.2e-30)},
		{Value: "PF00018", Label: "SH3_1", Score: score(50)},
		{Value: "PF00069", Label: "Pkinase", Score: score(3.5)},
		{Value: "PF07714"},
	})

	assert.Equal(t, "PF00018 (SH3_1)|50.0;PF00069 (Pkinase)|1.2e-30,3.5;PF07714", got)
}

func TestResolve_JoinedFlagPlain(t *testing.T) {
	assert.Equal(t, "Kinase;ATP-binding",
		resolver.Resolve(domain.MustField("keyword"), obs("Kinase", "", "ATP-binding", "", "Kinase", "")))

	pdb := domain.MustField("xref_pdb")
	assert.Equal(t, "True", resolver.Resolve(pdb, obs("False", "", "True", "")))
	assert.Equal(t, "False", resolver.Resolve(pdb, obs("False", "")))
	assert.Empty(t, resolver.Resolve(pdb, nil))

	assert.Equal(t, "INS", resolver.Resolve(domain.MustField("gene_name"), obs("", "", "INS", "", "INS2", "")))
}

func TestStripEvidence(t *testing.T) {
	tests := map[string]string{
		"":                                 "",
		"Globin family|EXP":                "Globin family",
		"apoptotic process|IDA;DNA repair": "apoptotic process;DNA repair",
		"PF00069 (Pkinase)|1.2e-30,3.5":    "PF00069 (Pkinase)",
		"Kinase;ATP-binding":               "Kinase;ATP-binding",
	}
	for in, want := range tests {
		assert.Equal(t, want, resolver.StripEvidence(in), in)
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "50.0", resolver.FormatScore(50))
	assert.Equal(t, "0.001", resolver.FormatScore(0.001))
	assert.Equal(t, "1e-05", resolver.FormatScore(1e-5))
	assert.Equal(t, "0.0", resolver.FormatScore(0))
	assert.Equal(t, "123.45", resolver.FormatScore(123.45))
}
