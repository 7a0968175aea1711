package domain

import "strings"

// EvidencePriority lists evidence codes in priority order, best first.
var EvidencePriority = []string{"EXP", "HDA", "IDA", "TAS", "NAS", "IC", "ISS", "SAM", "COMB", "IMP", "IEA"}

// ecoCodes maps ECO identifiers used by UniProt to short evidence codes.
var ecoCodes = map[string]string{
	"ECO:0000269": "EXP",
	"ECO:0007005": "HDA",
	"ECO:0000314": "IDA",
	"ECO:0000303": "TAS",
	"ECO:0000304": "TAS",
	"ECO:0000302": "NAS",
	"ECO:0000305": "IC",
	"ECO:0000250": "ISS",
	"ECO:0000255": "SAM",
	"ECO:0000256": "SAM",
	"ECO:0000259": "SAM",
	"ECO:0000213": "COMB",
	"ECO:0000315": "IMP",
	"ECO:0007669": "IEA",
	"ECO:0000313": "IEA",
	"ECO:0000501": "IEA",
}

var evidenceRank = func() map[string]int {
	rank := make(map[string]int, len(EvidencePriority))
	for i, code := range EvidencePriority {
		rank[code] = i
	}
	return rank
}()

// CanonicalEvidence maps a raw evidence reference to its short code.
// ECO identifiers go through the lookup table and fall back to the raw id when
// unknown. GO evidence such as "IEA:UniProtKB-EC" keeps the part before the colon.
func CanonicalEvidence(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "ECO:") {
		if code, ok := ecoCodes[raw]; ok {
			return code
		}
		return raw
	}
	if i := strings.IndexByte(raw, ':'); i > 0 {
		return raw[:i]
	}
	return raw
}

// EvidenceRank orders canonical codes. Lower is better. Codes outside the
// priority table rank after IEA and the empty code ranks last.
func EvidenceRank(code string) int {
	if code == "" {
		return len(EvidencePriority) + 1
	}
	if r, ok := evidenceRank[code]; ok {
		return r
	}
	return len(EvidencePriority)
}
