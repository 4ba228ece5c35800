// Package types defines the unified protein record produced by ingestion.
package types

// Subontology is the GO subontology code used by the terms table.
type Subontology string

// The three GO subontologies, using the codes of the terms table.
const (
	BiologicalProcess Subontology = "BPO"
	CellularComponent Subontology = "CCO"
	MolecularFunction Subontology = "MFO"
)

// Subontologies lists the recognised codes in their canonical order.
var Subontologies = []Subontology{BiologicalProcess, CellularComponent, MolecularFunction}

// ParseSubontology returns the subontology for code and whether code is
// one of BPO, CCO or MFO. Codes are matched exactly.
func ParseSubontology(code string) (Subontology, bool) {
	switch Subontology(code) {
	case BiologicalProcess, CellularComponent, MolecularFunction:
		return Subontology(code), true
	}
	return "", false
}

// Label returns the long name of the subontology.
func (s Subontology) Label() string {
	switch s {
	case BiologicalProcess:
		return "Biological Process"
	case CellularComponent:
		return "Cellular Component"
	case MolecularFunction:
		return "Molecular Function"
	}
	return string(s)
}

// GOTerms holds GO term identifiers per subontology in input row order.
// Duplicates are kept. All three slices are non-nil once created with
// NewGOTerms.
type GOTerms struct {
	BPO []string `json:"BPO" yaml:"BPO" toml:"BPO"`
	CCO []string `json:"CCO" yaml:"CCO" toml:"CCO"`
	MFO []string `json:"MFO" yaml:"MFO" toml:"MFO"`
}

// NewGOTerms returns GOTerms with all three categories present and empty.
func NewGOTerms() *GOTerms {
	return &GOTerms{BPO: []string{}, CCO: []string{}, MFO: []string{}}
}

// Append adds term to the list for s. It reports false when s is not a
// recognised subontology, leaving g unchanged.
func (g *GOTerms) Append(s Subontology, term string) bool {
	switch s {
	case BiologicalProcess:
		g.BPO = append(g.BPO, term)
	case CellularComponent:
		g.CCO = append(g.CCO, term)
	case MolecularFunction:
		g.MFO = append(g.MFO, term)
	default:
		return false
	}
	return true
}

// Terms returns the list for s, or nil for an unrecognised subontology.
func (g *GOTerms) Terms(s Subontology) []string {
	switch s {
	case BiologicalProcess:
		return g.BPO
	case CellularComponent:
		return g.CCO
	case MolecularFunction:
		return g.MFO
	}
	return nil
}

// Len returns the total number of terms across all categories.
func (g *GOTerms) Len() int {
	return len(g.BPO) + len(g.CCO) + len(g.MFO)
}

// ProteinRecord is the unified entity for one protein identifier.
//
// Sequence is always set once a FASTA header has been seen. TaxonID and
// GOTerms stay nil until an annotation row for the identifier is seen.
type ProteinRecord struct {
	Sequence string   `json:"sequence" yaml:"sequence" toml:"sequence"`
	TaxonID  *string  `json:"taxon_id,omitempty" yaml:"taxon_id,omitempty" toml:"taxon_id,omitempty"`
	GOTerms  *GOTerms `json:"go_terms,omitempty" yaml:"go_terms,omitempty" toml:"go_terms,omitempty"`
}

// SetTaxonID records the taxon, replacing any earlier value.
func (r *ProteinRecord) SetTaxonID(taxonID string) {
	r.TaxonID = &taxonID
}

// EnsureGOTerms returns the record's GOTerms, creating the empty
// three-category form on first use.
func (r *ProteinRecord) EnsureGOTerms() *GOTerms {
	if r.GOTerms == nil {
		r.GOTerms = NewGOTerms()
	}
	return r.GOTerms
}
