package match

import (
	"strconv"
	"strings"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// Classifier marks surviving hits green or red against the legal-code
// reference tables.
type Classifier struct {
	green codeTable
	red   codeTable
}

// codeTable maps a normalized act name to its reference section codes.
type codeTable map[string][]string

// NewClassifier builds a classifier from the green and red reference rows.
func NewClassifier(green, red []domain.LegalCode) *Classifier {
	return &Classifier{
		green: buildTable(green),
		red:   buildTable(red),
	}
}

func buildTable(rows []domain.LegalCode) codeTable {
	t := make(codeTable, len(rows))
	for _, row := range rows {
		act := normalizeAct(row.Act)
		t[act] = append(t[act], row.Code)
	}
	return t
}

// Classify runs the green pass then the red pass over the hits, so red wins
// when a hit matches both tables, then forces petitioner hits green. The
// passes only ever set the status, so re-running on already classified hits
// yields the same result. Returns UnclassifiedCase when no hit ends up with
// a status.
func (c *Classifier) Classify(hits []*domain.CaseHit) error {
	for _, h := range hits {
		if c.matches(c.green, h) {
			h.Status = domain.StatusGreen
		}
	}
	for _, h := range hits {
		if c.matches(c.red, h) {
			h.Status = domain.StatusRed
		}
	}
	for _, h := range hits {
		if h.PartyType == domain.PartyTypePetitioner {
			h.Status = domain.StatusGreen
		}
	}

	for _, h := range hits {
		if h.Status != domain.StatusUnset {
			return nil
		}
	}
	return domain.NewUnclassifiedCase()
}

// CaseResult reduces per-hit statuses to the overall case outcome: red if
// any classified hit is red, green otherwise.
func CaseResult(hits []*domain.CaseHit) domain.CaseStatus {
	for _, h := range hits {
		if h.Status == domain.StatusRed {
			return domain.StatusRed
		}
	}
	return domain.StatusGreen
}

// matches reports whether any of the hit's section codes appears in the
// table rows for the hit's act.
func (c *Classifier) matches(t codeTable, h *domain.CaseHit) bool {
	codes, ok := t[normalizeAct(h.Act)]
	if !ok {
		return false
	}
	for _, section := range h.Section {
		if codeEqualsAny(section, codes) {
			return true
		}
	}
	return false
}

// codeEqualsAny compares a section code against reference codes, first as
// integers, falling back to trimmed string equality for alphanumeric codes
// like "379A".
func codeEqualsAny(section string, codes []string) bool {
	section = strings.TrimSpace(section)
	sectionNum, sectionIsNum := parseCode(section)

	for _, code := range codes {
		code = strings.TrimSpace(code)
		if sectionIsNum {
			if n, ok := parseCode(code); ok && n == sectionNum {
				return true
			}
		}
		if section == code {
			return true
		}
	}
	return false
}

func parseCode(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func normalizeAct(act string) string {
	return strings.ToLower(strings.TrimSpace(act))
}
