package uniprot

// searchResponse is the envelope of the accessions and search endpoints.
type searchResponse struct {
	Results []entry `json:"results"`
}

type entry struct {
	PrimaryAccession    string          `json:"primaryAccession"`
	SecondaryAccessions []string        `json:"secondaryAccessions"`
	UniProtKBID         string          `json:"uniProtkbId"`
	EntryType           string          `json:"entryType"`
	InactiveReason      *inactiveReason `json:"inactiveReason"`
	AnnotationScore     float64         `json:"annotationScore"`
	ProteinExistence    string          `json:"proteinExistence"`
	Organism            organism        `json:"organism"`
	Genes               []gene          `json:"genes"`
	ProteinDescription  description     `json:"proteinDescription"`
	Sequence            sequence        `json:"sequence"`
	Keywords            []keyword       `json:"keywords"`
	Comments            []comment       `json:"comments"`
	CrossReferences     []crossRef      `json:"uniProtKBCrossReferences"`
}

// inactiveEntryType marks deleted, merged and demerged entries.
const inactiveEntryType = "Inactive"

type inactiveReason struct {
	Type           string   `json:"inactiveReasonType"`
	MergeDemergeTo []string `json:"mergeDemergeTo"`
}

func (e *entry) inactive() bool {
	return e.EntryType == inactiveEntryType || e.InactiveReason != nil
}

type organism struct {
	TaxonID int `json:"taxonId"`
}

type gene struct {
	GeneName *valueWithEvidence `json:"geneName"`
}

type description struct {
	RecommendedName  *proteinName  `json:"recommendedName"`
	AlternativeNames []proteinName `json:"alternativeNames"`
}

type proteinName struct {
	FullName  valueWithEvidence   `json:"fullName"`
	ECNumbers []valueWithEvidence `json:"ecNumbers"`
}

type sequence struct {
	Value    string `json:"value"`
	Length   int    `json:"length"`
	Fragment string `json:"fragment"`
}

type keyword struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type comment struct {
	CommentType          string                `json:"commentType"`
	Texts                []valueWithEvidence   `json:"texts"`
	SubcellularLocations []subcellularLocation `json:"subcellularLocations"`
}

type subcellularLocation struct {
	Location valueWithEvidence `json:"location"`
}

type crossRef struct {
	Database   string     `json:"database"`
	ID         string     `json:"id"`
	Properties []property `json:"properties"`
}

type property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type valueWithEvidence struct {
	Value     string     `json:"value"`
	Evidences []evidence `json:"evidences"`
}

type evidence struct {
	EvidenceCode string `json:"evidenceCode"`
}
