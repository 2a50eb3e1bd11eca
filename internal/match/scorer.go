// Package match implements the candidate matching pipeline: per-hit feature
// scoring, cascade filtering, green/red classification and confidence.
package match

import (
	"strings"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// Scorer computes the per-hit feature vector against one candidate profile.
type Scorer struct {
	profile domain.CandidateProfile
}

// NewScorer creates a scorer for the given candidate.
func NewScorer(profile domain.CandidateProfile) *Scorer {
	return &Scorer{profile: profile}
}

// Score enriches every hit in place with fuzzy-match scores and jurisdiction
// overlap flags. Empty input is a no-op.
func (s *Scorer) Score(hits []*domain.CaseHit) {
	for _, h := range hits {
		h.NameMatch = Ratio(s.profile.Name, h.Name)
		h.ModifiedNameMatch = Ratio(s.profile.ModifiedName, h.Name)
		h.FatherNameMatch = Ratio(s.profile.FatherName, h.Relative)
		h.PercentageFatherInName = Ratio(s.profile.FatherName, h.Name)

		h.InSameDistrict = boolFlag(charOverlap(s.profile.District, h.CaseDistrict))
		h.InSameState = boolFlag(charOverlap(s.profile.State, h.CaseState))
		h.FatherInName = boolFlag(tokenOverlap(s.profile.FatherName, h.Name))
	}
}

// Dedupe returns hits with duplicates removed, keeping the first occurrence.
// Before the act/section join the natural key is the raw record identity
// (cnr plus party fields); after the join it is cnr+act+section.
func Dedupe(hits []*domain.CaseHit) []*domain.CaseHit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]*domain.CaseHit, 0, len(hits))
	for _, h := range hits {
		key := h.CNR + "\x00" + h.Name + "\x00" + h.PartyType + "\x00" + h.Act + "\x00" + strings.Join(h.Section, ",")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}

// charOverlap reports whether the lowercased, trimmed character sets of two
// jurisdiction strings intersect. Deliberately loose: any shared character
// counts, which tolerates abbreviations and spelling variants but also
// matches unrelated names sharing a letter. Load-bearing for filtering, so
// kept as-is rather than tightened to token equality.
func charOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	set := make(map[rune]struct{}, len(a))
	for _, r := range a {
		set[r] = struct{}{}
	}
	for _, r := range b {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

// tokenOverlap reports whether any whitespace token of father appears among
// the whitespace tokens of name, case-insensitively.
func tokenOverlap(father, name string) bool {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(father)) {
		tokens[t] = struct{}{}
	}
	for _, t := range strings.Fields(strings.ToLower(name)) {
		if _, ok := tokens[t]; ok {
			return true
		}
	}
	return false
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
