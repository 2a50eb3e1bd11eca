package domain

import (
	"encoding/json"
	"time"
)

// VerificationRequest is one claimed row from the request queue.
type VerificationRequest struct {
	ID          string    `db:"idx"`
	EmpID       string    `db:"emp_id"`
	InitiatedOn time.Time `db:"initiated_on"`
	Name        string    `db:"name"`
	Pincode     string    `db:"pincode"`
	DOB         string    `db:"dob"`
	FatherName  string    `db:"father_name"`
	State       string    `db:"state"`
	District    string    `db:"district"`
	FullAddress string    `db:"full_address"`
}

// Job status values recorded against a request.
const (
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Jurisdiction names the state and district a report covers, with the court
// names filled in for green outcomes.
type Jurisdiction struct {
	StateName  string   `json:"state_name"`
	DistName   string   `json:"dist_name"`
	CourtNames []string `json:"court_name,omitempty"`
}

// Report is the final per-case response persisted to the report table and
// handed to the notification consumer.
type Report struct {
	Status             int          `json:"status"`
	ServiceRequestID   string       `json:"service_request_id"`
	VerifyID           string       `json:"verify_id"`
	Name               string       `json:"name"`
	Address            string       `json:"address"`
	Result             CaseStatus   `json:"report"`
	MatchedCaseDetails []CaseHit    `json:"matched_case_details"`
	Jurisdiction       Jurisdiction `json:"jurisdiction"`
}

// NewReport builds a report for a terminal outcome. MatchedCaseDetails is
// always present in the JSON, empty when nothing survived.
func NewReport(req *VerificationRequest, result CaseStatus, code int, courtNames []string) Report {
	return Report{
		Status:             code,
		ServiceRequestID:   req.EmpID,
		VerifyID:           req.ID,
		Name:               req.Name,
		Address:            req.FullAddress,
		Result:             result,
		MatchedCaseDetails: []CaseHit{},
		Jurisdiction: Jurisdiction{
			StateName:  req.State,
			DistName:   req.District,
			CourtNames: courtNames,
		},
	}
}

// JSON serializes the report. A report that cannot marshal is a programming
// error, so this never fails at the call sites.
func (r Report) JSON() ([]byte, error) {
	return json.Marshal(r)
}
