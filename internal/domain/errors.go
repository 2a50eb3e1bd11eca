package domain

// Status codes reported with a terminal case outcome. The code distinguishes
// a clean result from the failure mode that forced the outcome.
const (
	CodeCompletedGreen     = 200
	CodeNoCaseFound        = 201
	CodeCompletedRed       = 202
	CodePincodeNotFound    = 203
	CodeActSectionNotFound = 204
	CodeUnclassifiedCase   = 205
)

// CaseStatusError is a business outcome raised partway through a case run.
// It carries the status code and the default outcome the case must be
// reported with. Infrastructure failures are plain errors and never carry
// an outcome.
type CaseStatusError struct {
	Message string
	Code    int
	Outcome CaseStatus
}

func (e *CaseStatusError) Error() string {
	return e.Message
}

// NewPincodeNotFound reports an unresolvable candidate pincode. Location is
// mandatory, so the posture is default-deny.
func NewPincodeNotFound(pincode string) *CaseStatusError {
	return &CaseStatusError{
		Message: "pincode not found: " + pincode,
		Code:    CodePincodeNotFound,
		Outcome: StatusRed,
	}
}

// NewNoCaseFound reports a clean negative result: no adverse record matched.
func NewNoCaseFound() *CaseStatusError {
	return &CaseStatusError{
		Message: "no cases found",
		Code:    CodeNoCaseFound,
		Outcome: StatusGreen,
	}
}

// NewActSectionNotFound reports that no act/section codes could be extracted
// from any matched case document.
func NewActSectionNotFound() *CaseStatusError {
	return &CaseStatusError{
		Message: "act section not found",
		Code:    CodeActSectionNotFound,
		Outcome: StatusRed,
	}
}

// NewUnclassifiedCase reports that matched cases existed but no green/red
// rule applied to any of them.
func NewUnclassifiedCase() *CaseStatusError {
	return &CaseStatusError{
		Message: "unable to mark any case",
		Code:    CodeUnclassifiedCase,
		Outcome: StatusRed,
	}
}
