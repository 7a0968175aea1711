package uniprot

import (
	"strconv"
	"strings"

	"go.trai.ch/protanno/internal/core/domain"
)

const similarityPrefix = "Belongs to the "

// returnFields maps catalog fields to UniProt REST return field names.
var returnFields = map[string]string{
	domain.FieldAccession:     "accession",
	domain.FieldOrganismID:    "organism_id",
	domain.FieldSequence:      "sequence",
	domain.FieldLength:        "length",
	"gene_name":               "gene_primary",
	"protein_name":            "protein_name",
	"uniprot_kb_id":           "id",
	"annotation_score":        "annotation_score",
	"cc_subcellular_location": "cc_subcellular_location",
	"ec":                      "ec",
	"fragment":                "fragment",
	"go_bp":                   "go_p",
	"go_cc":                   "go_c",
	"go_mf":                   "go_f",
	"keyword":                 "keyword",
	"protein_existence":       "protein_existence",
	"protein_families":        "protein_families",
	"reviewed":                "reviewed",
	"xref_pdb":                "xref_pdb",
}

// goAspects maps GO fields to the aspect letter prefixing their terms.
var goAspects = map[string]string{
	"go_bp": "P",
	"go_cc": "C",
	"go_mf": "F",
}

// extract returns the raw observations of e for the requested fields.
func extract(e *entry, fields []domain.Field) domain.RawRecord {
	rec := make(domain.RawRecord, len(fields))
	for _, f := range fields {
		if obs := observe(e, f.Name); len(obs) > 0 {
			rec.Add(f.Name, obs...)
		}
	}
	return rec
}

func observe(e *entry, field string) []domain.Observation {
	switch field {
	case domain.FieldAccession:
		return plain(e.PrimaryAccession)
	case domain.FieldOrganismID:
		if e.Organism.TaxonID <= 0 {
			return nil
		}
		return plain(strconv.Itoa(e.Organism.TaxonID))
	case domain.FieldSequence:
		return plain(e.Sequence.Value)
	case domain.FieldLength:
		if e.Sequence.Length <= 0 {
			return nil
		}
		return plain(strconv.Itoa(e.Sequence.Length))
	case "gene_name":
		if len(e.Genes) == 0 || e.Genes[0].GeneName == nil {
			return nil
		}
		return plain(e.Genes[0].GeneName.Value)
	case "protein_name":
		if e.ProteinDescription.RecommendedName == nil {
			return nil
		}
		return plain(e.ProteinDescription.RecommendedName.FullName.Value)
	case "uniprot_kb_id":
		return plain(e.UniProtKBID)
	case "annotation_score":
		return plain(strconv.FormatFloat(e.AnnotationScore, 'f', -1, 64))
	case "cc_subcellular_location":
		var obs []domain.Observation
		for _, c := range e.commentsOf("SUBCELLULAR LOCATION") {
			for _, loc := range c.SubcellularLocations {
				obs = append(obs, withEvidence(loc.Location)...)
			}
		}
		return obs
	case "ec":
		return ecNumbers(e.ProteinDescription)
	case "fragment":
		return plain(e.Sequence.Fragment)
	case "go_bp", "go_cc", "go_mf":
		return goTerms(e, goAspects[field])
	case "keyword":
		obs := make([]domain.Observation, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			obs = append(obs, plain(kw.Name)...)
		}
		return obs
	case "protein_existence":
		return plain(e.ProteinExistence)
	case "protein_families":
		return families(e)
	case "reviewed":
		t := strings.ToLower(e.EntryType)
		reviewed := strings.Contains(t, "reviewed") && !strings.Contains(t, "unreviewed")
		return plain(strconv.FormatBool(reviewed || strings.Contains(t, "swiss-prot")))
	case "xref_pdb":
		var obs []domain.Observation
		for _, x := range e.CrossReferences {
			if x.Database == "PDB" {
				obs = append(obs, plain(x.ID)...)
			}
		}
		return obs
	default:
		return nil
	}
}

func (e *entry) commentsOf(kind string) []comment {
	var out []comment
	for _, c := range e.Comments {
		if c.CommentType == kind {
			out = append(out, c)
		}
	}
	return out
}

func ecNumbers(d description) []domain.Observation {
	var obs []domain.Observation
	if d.RecommendedName != nil {
		for _, ec := range d.RecommendedName.ECNumbers {
			obs = append(obs, withEvidence(ec)...)
		}
	}
	for _, alt := range d.AlternativeNames {
		for _, ec := range alt.ECNumbers {
			obs = append(obs, withEvidence(ec)...)
		}
	}
	return obs
}

// families reports the first SIMILARITY text without its "Belongs to the " prefix.
func families(e *entry) []domain.Observation {
	for _, c := range e.commentsOf("SIMILARITY") {
		if len(c.Texts) == 0 {
			continue
		}
		text := c.Texts[0]
		text.Value = strings.TrimPrefix(text.Value, similarityPrefix)
		return withEvidence(text)
	}
	return nil
}

func goTerms(e *entry, aspect string) []domain.Observation {
	prefix := aspect + ":"
	var obs []domain.Observation
	for _, x := range e.CrossReferences {
		if x.Database != "GO" {
			continue
		}
		var term, code string
		for _, p := range x.Properties {
			switch p.Key {
			case "GoTerm":
				term = p.Value
			case "GoEvidenceType":
				code = p.Value
			}
		}
		if strings.HasPrefix(term, prefix) {
			obs = append(obs, domain.Observation{Value: term, Evidence: code})
		}
	}
	return obs
}

func plain(v string) []domain.Observation {
	if v == "" {
		return nil
	}
	return []domain.Observation{{Value: v}}
}

// withEvidence emits one observation per evidence so the resolver can pick the best.
func withEvidence(v valueWithEvidence) []domain.Observation {
	if v.Value == "" {
		return nil
	}
	if len(v.Evidences) == 0 {
		return []domain.Observation{{Value: v.Value}}
	}
	obs := make([]domain.Observation, len(v.Evidences))
	for i, ev := range v.Evidences {
		obs[i] = domain.Observation{Value: v.Value, Evidence: ev.EvidenceCode}
	}
	return obs
}
