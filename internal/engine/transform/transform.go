// Package transform canonicalizes raw source values and derives length bins.
package transform

import (
	"strconv"
	"strings"

	"go.trai.ch/protanno/internal/core/domain"
)

// Rule canonicalizes one raw value. Rules are idempotent.
type Rule func(string) string

var rules = map[string]Rule{
	"annotation_score": integerScore,
	"protein_families": keepCode(firstFamily),
	"reviewed":         reviewed,
	"xref_pdb":         presence,
	"signal_peptide":   signalPeptide,
	"fragment":         fragment,
	"go_bp":            keepCode(goTerm),
	"go_cc":            keepCode(goTerm),
	"go_mf":            keepCode(goTerm),
	"cath":             keepCode(cath),
}

// Value applies the rule for field to value. Fields without a rule pass through.
func Value(field, value string) string {
	rule, ok := rules[field]
	if !ok {
		return value
	}
	return rule(value)
}

// Observations returns a copy of obs with every value canonicalized for field.
func Observations(field string, obs []domain.Observation) []domain.Observation {
	rule, ok := rules[field]
	if !ok {
		return obs
	}
	out := make([]domain.Observation, len(obs))
	for i, o := range obs {
		o.Value = rule(o.Value)
		out[i] = o
	}
	return out
}

// keepCode applies fn to the value part of "value|code" and keeps the suffix.
func keepCode(fn Rule) Rule {
	return func(v string) string {
		i := strings.LastIndex(v, "|")
		if i < 0 {
			return fn(v)
		}
		return fn(v[:i]) + v[i:]
	}
}

func integerScore(v string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	return strconv.FormatInt(int64(f), 10)
}

func firstFamily(v string) string {
	if head, _, ok := strings.Cut(v, ","); ok {
		return strings.TrimSpace(head)
	}
	head, _, _ := strings.Cut(v, ";")
	return strings.TrimSpace(head)
}

func reviewed(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "reviewed":
		return "Swiss-Prot"
	case "false", "unreviewed":
		return "TrEMBL"
	default:
		return v
	}
}

func presence(v string) string {
	switch strings.TrimSpace(v) {
	case "", "False":
		return "False"
	default:
		return "True"
	}
}

func signalPeptide(v string) string {
	if v == "True" || strings.Contains(v, "SIGNAL_PEPTIDE") {
		return "True"
	}
	return "False"
}

func fragment(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "fragment", "fragments":
		return "yes"
	default:
		return v
	}
}

func goTerm(v string) string {
	if len(v) > 2 && v[1] == ':' {
		return v[2:]
	}
	return v
}

func cath(v string) string {
	return strings.TrimPrefix(v, "G3DSA:")
}
