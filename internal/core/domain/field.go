package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Source identifies where a field's values come from.
type Source uint8

const (
	// SourceUniProt is the UniProtKB REST API.
	SourceUniProt Source = iota + 1
	// SourceInterPro is the InterPro matches API.
	SourceInterPro
	// SourceTaxonomy is the taxonomy lineage service.
	SourceTaxonomy
	// SourceDerived marks fields computed locally from other fields each run.
	SourceDerived
	// SourceCSV marks columns supplied by the user's annotation table.
	SourceCSV
)

// Sources lists the network sources in fetch order.
var Sources = []Source{SourceUniProt, SourceTaxonomy, SourceInterPro}

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceUniProt:
		return "uniprot"
	case SourceInterPro:
		return "interpro"
	case SourceTaxonomy:
		return "taxonomy"
	case SourceDerived:
		return "derived"
	case SourceCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Multiplicity tells whether a field holds one value or a list per identifier.
type Multiplicity uint8

const (
	// Single fields hold one value.
	Single Multiplicity = iota
	// Multi fields hold a semicolon separated list.
	Multi
)

// Resolution selects how raw observations collapse into the stored value.
type Resolution uint8

const (
	// ResolvePlain keeps the first non-empty value.
	ResolvePlain Resolution = iota
	// ResolveJoined keeps distinct values in first-seen order, joined by ";".
	ResolveJoined
	// ResolveFlag yields "True" when any observation is "True", else "False".
	ResolveFlag
	// ResolveEvidence keeps the single observation with the best evidence code.
	ResolveEvidence
	// ResolveEvidenceTerms keeps the best evidence code per distinct term.
	ResolveEvidenceTerms
	// ResolveScored groups match scores per accession.
	ResolveScored
)

// Field describes one annotation column.
type Field struct {
	Name       string
	Source     Source
	Resolution Resolution
	// Internal fields are fetched and cached as inputs but never requested or emitted.
	Internal bool
	// Requires names fields that must be known before this one can be produced.
	Requires []string
	// Library is the InterPro member database name for InterPro fields.
	Library string
}

// Multiplicity derives the field's multiplicity from its resolution.
func (f Field) Multiplicity() Multiplicity {
	switch f.Resolution {
	case ResolveJoined, ResolveEvidenceTerms, ResolveScored:
		return Multi
	default:
		return Single
	}
}

// EvidenceBearing reports whether the stored value carries "|code" suffixes.
func (f Field) EvidenceBearing() bool {
	switch f.Resolution {
	case ResolveEvidence, ResolveEvidenceTerms, ResolveScored:
		return true
	default:
		return false
	}
}

// Field names referenced by code outside the catalog.
const (
	FieldAccession      = "accession"
	FieldOrganismID     = "organism_id"
	FieldSequence       = "sequence"
	FieldLength         = "length"
	FieldLengthFixed    = "length_fixed"
	FieldLengthQuantile = "length_quantile"
)

var (
	taxonomyInputs = []string{FieldOrganismID}
	interproInputs = []string{FieldSequence}
	lengthInputs   = []string{FieldLength}
)

// catalog is the ordered table of every known field.
var catalog = []Field{
	{Name: FieldAccession, Source: SourceUniProt, Internal: true},
	{Name: FieldOrganismID, Source: SourceUniProt, Internal: true},
	{Name: FieldSequence, Source: SourceUniProt, Internal: true},
	{Name: FieldLength, Source: SourceUniProt, Internal: true},

	{Name: "gene_name", Source: SourceUniProt},
	{Name: "protein_name", Source: SourceUniProt},
	{Name: "uniprot_kb_id", Source: SourceUniProt},
	{Name: "annotation_score", Source: SourceUniProt},
	{Name: "cc_subcellular_location", Source: SourceUniProt, Resolution: ResolveEvidenceTerms},
	{Name: "ec", Source: SourceUniProt, Resolution: ResolveEvidenceTerms},
	{Name: "fragment", Source: SourceUniProt},
	{Name: "go_bp", Source: SourceUniProt, Resolution: ResolveEvidenceTerms},
	{Name: "go_cc", Source: SourceUniProt, Resolution: ResolveEvidenceTerms},
	{Name: "go_mf", Source: SourceUniProt, Resolution: ResolveEvidenceTerms},
	{Name: "keyword", Source: SourceUniProt, Resolution: ResolveJoined},
	{Name: "protein_existence", Source: SourceUniProt},
	{Name: "protein_families", Source: SourceUniProt, Resolution: ResolveEvidence},
	{Name: "reviewed", Source: SourceUniProt},
	{Name: "xref_pdb", Source: SourceUniProt, Resolution: ResolveFlag},

	{Name: FieldLengthFixed, Source: SourceDerived, Requires: lengthInputs},
	{Name: FieldLengthQuantile, Source: SourceDerived, Requires: lengthInputs},

	{Name: "root", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "domain", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "kingdom", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "phylum", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "class", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "order", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "family", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "genus", Source: SourceTaxonomy, Requires: taxonomyInputs},
	{Name: "species", Source: SourceTaxonomy, Requires: taxonomyInputs},

	{Name: "pfam", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "pfam"},
	{Name: "superfamily", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "superfamily"},
	{Name: "cath", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "cath-gene3d"},
	{Name: "signal_peptide", Source: SourceInterPro, Resolution: ResolveFlag, Requires: interproInputs, Library: "phobius"},
	{Name: "smart", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "smart"},
	{Name: "cdd", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "cdd"},
	{Name: "panther", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "panther"},
	{Name: "prosite", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "prosite patterns"},
	{Name: "prints", Source: SourceInterPro, Resolution: ResolveScored, Requires: interproInputs, Library: "prints"},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, f := range catalog {
		idx[f.Name] = i
	}
	return idx
}()

// AlwaysIncluded lists fields added to every request.
var AlwaysIncluded = []string{"gene_name", "protein_name", "uniprot_kb_id"}

var uniprotGroup = []string{
	"annotation_score", "cc_subcellular_location", "ec", "fragment",
	"go_bp", "go_cc", "go_mf", "keyword", "protein_existence",
	"protein_families", "reviewed", "xref_pdb", FieldLengthFixed, FieldLengthQuantile,
}

var taxonomyGroup = []string{"root", "domain", "kingdom", "phylum", "class", "order", "family", "genus", "species"}

var interproGroup = []string{"pfam", "superfamily", "cath", "signal_peptide", "smart", "cdd", "panther", "prosite", "prints"}

// Groups maps preset names to their member fields.
var Groups = map[string][]string{
	"default":  {"ec", "keyword", FieldLengthQuantile, "protein_families", "reviewed"},
	"uniprot":  uniprotGroup,
	"taxonomy": taxonomyGroup,
	"interpro": interproGroup,
	"all":      slices.Concat(uniprotGroup, taxonomyGroup, interproGroup),
}

// GroupNames lists the preset names in display order.
var GroupNames = []string{"default", "uniprot", "interpro", "taxonomy", "all"}

// LookupField returns the catalog entry for name.
func LookupField(name string) (Field, bool) {
	i, ok := catalogIndex[name]
	if !ok {
		return Field{}, false
	}
	return catalog[i], true
}

// MustField returns the catalog entry for name and panics if it does not exist.
// It is meant for names that are compile-time constants.
func MustField(name string) Field {
	f, ok := LookupField(name)
	if !ok {
		panic("unknown field " + name)
	}
	return f
}

// Catalog returns every field, including internal ones, in catalog order.
func Catalog() []Field {
	return slices.Clone(catalog)
}

// ExpandFields resolves field and group names into catalog fields.
// Groups expand in place, duplicates are dropped and the first occurrence wins.
// An empty request expands the "default" group.
func ExpandFields(names []string) ([]Field, error) {
	if len(names) == 0 {
		names = []string{"default"}
	}

	seen := make(map[string]struct{})
	var fields []Field
	for _, name := range names {
		members, isGroup := Groups[name]
		if !isGroup {
			members = []string{name}
		}
		for _, m := range members {
			if _, dup := seen[m]; dup {
				continue
			}
			f, ok := LookupField(m)
			if !ok {
				return nil, Classify(KindConfiguration, zerr.With(ErrUnknownField, "field", m))
			}
			if f.Internal {
				return nil, Classify(KindConfiguration, zerr.With(ErrInternalField, "field", m))
			}
			seen[m] = struct{}{}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
