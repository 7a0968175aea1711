// Package resolver collapses raw source observations into stored field values.
package resolver

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/protanno/internal/core/domain"
)

const (
	termSep     = ";"
	evidenceSep = "|"
	scoreSep    = ","
)

// Resolve returns the value stored for field given its observations.
// It is a pure function of its input: equal observation lists always resolve
// to equal values.
func Resolve(field domain.Field, obs []domain.Observation) string {
	switch field.Resolution {
	case domain.ResolveJoined:
		return joined(obs)
	case domain.ResolveFlag:
		return flag(obs)
	case domain.ResolveEvidence:
		return bestEvidence(obs)
	case domain.ResolveEvidenceTerms:
		return evidenceTerms(obs)
	case domain.ResolveScored:
		return scored(obs)
	default:
		return plain(obs)
	}
}

// StripEvidence removes the "|..." suffix from every ";" separated entry.
func StripEvidence(value string) string {
	if !strings.Contains(value, evidenceSep) {
		return value
	}
	entries := strings.Split(value, termSep)
	for i, e := range entries {
		entries[i], _, _ = strings.Cut(e, evidenceSep)
	}
	return strings.Join(entries, termSep)
}

func plain(obs []domain.Observation) string {
	for _, o := range obs {
		if o.Value != "" {
			return o.Value
		}
	}
	return ""
}

func joined(obs []domain.Observation) string {
	seen := make(map[string]struct{}, len(obs))
	values := make([]string, 0, len(obs))
	for _, o := range obs {
		if o.Value == "" {
			continue
		}
		if _, dup := seen[o.Value]; dup {
			continue
		}
		seen[o.Value] = struct{}{}
		values = append(values, o.Value)
	}
	return strings.Join(values, termSep)
}

func flag(obs []domain.Observation) string {
	if len(obs) == 0 {
		return ""
	}
	for _, o := range obs {
		if o.Value == "True" {
			return "True"
		}
	}
	return "False"
}

// bestEvidence keeps the observation whose code ranks highest. Ties keep the
// first seen.
func bestEvidence(obs []domain.Observation) string {
	var (
		best     string
		bestCode string
		bestRank = math.MaxInt
	)
	for _, o := range obs {
		if o.Value == "" {
			continue
		}
		code := domain.CanonicalEvidence(o.Evidence)
		if rank := domain.EvidenceRank(code); rank < bestRank {
			best, bestCode, bestRank = o.Value, code, rank
		}
	}
	return withCode(best, bestCode)
}

// evidenceTerms resolves each distinct term on its own and keeps the source
// order of first occurrence.
func evidenceTerms(obs []domain.Observation) string {
	type term struct {
		value string
		code  string
		rank  int
	}
	index := make(map[string]int, len(obs))
	terms := make([]term, 0, len(obs))
	for _, o := range obs {
		if o.Value == "" {
			continue
		}
		code := domain.CanonicalEvidence(o.Evidence)
		rank := domain.EvidenceRank(code)
		i, ok := index[o.Value]
		if !ok {
			index[o.Value] = len(terms)
			terms = append(terms, term{value: o.Value, code: code, rank: rank})
			continue
		}
		if rank < terms[i].rank {
			terms[i].code, terms[i].rank = code, rank
		}
	}

	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = withCode(t.value, t.code)
	}
	return strings.Join(parts, termSep)
}

// scored groups match scores per accession, sorted by accession:
// "acc (name)|s1,s2;acc2|s1".
func scored(obs []domain.Observation) string {
	type match struct {
		label  string
		scores []string
	}
	matches := make(map[string]*match)
	for _, o := range obs {
		if o.Value == "" {
			continue
		}
		m, ok := matches[o.Value]
		if !ok {
			m = &match{}
			matches[o.Value] = m
		}
		if m.label == "" {
			m.label = o.Label
		}
		if o.Score != nil {
			m.scores = append(m.scores, FormatScore(*o.Score))
		}
	}

	accessions := make([]string, 0, len(matches))
	for acc := range matches {
		accessions = append(accessions, acc)
	}
	slices.Sort(accessions)

	parts := make([]string, len(accessions))
	for i, acc := range accessions {
		m := matches[acc]
		name := acc
		if m.label != "" {
			name += " (" + m.label + ")"
		}
		if len(m.scores) > 0 {
			name += evidenceSep + strings.Join(m.scores, scoreSep)
		}
		parts[i] = name
	}
	return strings.Join(parts, termSep)
}

// FormatScore renders a score the way the upstream tables print floats:
// shortest round-trip digits, a trailing ".0" for integral values and
// exponent notation for very large or very small magnitudes.
func FormatScore(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func withCode(value, code string) string {
	if value == "" || code == "" {
		return value
	}
	return value + evidenceSep + code
}
