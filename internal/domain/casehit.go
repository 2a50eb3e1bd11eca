package domain

// CaseStatus is the per-hit and per-case risk classification.
type CaseStatus string

const (
	// StatusUnset means no classification rule has applied yet.
	StatusUnset CaseStatus = ""
	// StatusGreen marks a low-risk case.
	StatusGreen CaseStatus = "green"
	// StatusRed marks a high-risk case.
	StatusRed CaseStatus = "red"
)

// PartyTypePetitioner identifies the complainant party on a case record.
// Petitioners are never the ones at risk and are forced green.
const PartyTypePetitioner = "petitioner"

// cnrPrefixLen is the number of leading CNR characters identifying the court.
const cnrPrefixLen = 6

// CaseHit is one retrieved case record. The source fields come straight from
// the search index document; everything after them is computed in place as
// the hit moves through scoring, filtering and classification.
type CaseHit struct {
	CNR              string `json:"cnr"`
	Name             string `json:"name"`
	PartyType        string `json:"party_type"`
	Relative         string `json:"relative"`
	RelationType     string `json:"relation_type"`
	CaseLocation     string `json:"case_location"`
	CaseState        string `json:"case_state"`
	CaseDistrict     string `json:"case_district"`
	CaseCourt        string `json:"case_court"`
	CaseStage        string `json:"case_stage"`
	FIRPoliceStation string `json:"fir_police_station"`
	ActSection       string `json:"act_section"`
	OrderExists      string `json:"order_exists"`

	// Fuzzy match scores, 0-100.
	NameMatch              int `json:"name_match"`
	FatherNameMatch        int `json:"father_name_match"`
	ModifiedNameMatch      int `json:"modified_name_match"`
	PercentageFatherInName int `json:"percentage_father_in_name"`

	// Jurisdiction overlap flags, 0 or 1.
	InSameDistrict int `json:"in_same_district"`
	InSameState    int `json:"in_same_state"`
	FatherInName   int `json:"father_in_name"`

	// Distances in kilometres; nil until resolved, imputed if unresolvable.
	PoliceStationDistance *float64 `json:"-"`
	CourtDistance         *float64 `json:"court_distance"`

	// Presigned document URLs, empty when unavailable.
	CaseDetailsURL string `json:"case_details_url,omitempty"`
	OrderCopyURL   string `json:"order_copy_url,omitempty"`

	// Act/section codes scraped from the case detail document. Act is the
	// offense category, Section the list of code tokens under it.
	Act     string   `json:"act,omitempty"`
	Section []string `json:"section,omitempty"`

	Status          CaseStatus `json:"case_status"`
	ConfidenceScore float64    `json:"confidence_score"`
}

// CNRPrefix returns the 6-character court identifier prefix of the CNR.
func (h *CaseHit) CNRPrefix() string {
	if len(h.CNR) < cnrPrefixLen {
		return h.CNR
	}
	return h.CNR[:cnrPrefixLen]
}

// ActSectionRow is one (act, section) pair scraped from a case detail
// document's acts table.
type ActSectionRow struct {
	CNR     string
	Act     string
	Section string
}

// LegalCode is one reference row from a green or red legal-code table.
type LegalCode struct {
	Act  string `db:"type"`
	Code string `db:"code"`
}
