package match

import "github.com/jonesrussell/crc-worker/internal/domain"

// Filter thresholds. Name similarity is the primary signal, geographic
// proximity the final plausibility check.
const (
	// nameMatchCutoff is exclusive: a score of exactly 70 is rejected.
	nameMatchCutoff = 70
	// courtDistanceCutoffKm is the hard jurisdiction radius once any court
	// distance is known.
	courtDistanceCutoffKm = 100
)

// Filter applies the cascading match filter. Each stage narrows the set and
// never widens it; an empty result at any stage is terminal and returns a
// NoCaseFound outcome.
//
// Stages, in order: the best name match must clear the cutoff; only hits
// above the cutoff survive; father-name corroboration narrows when present
// but is not required; and once any court distance is inside the
// jurisdiction radius, every surviving hit must be. There is no fallback to
// police-station distance.
func Filter(hits []*domain.CaseHit) ([]*domain.CaseHit, error) {
	if len(hits) == 0 {
		return nil, domain.NewNoCaseFound()
	}

	if maxNameMatch(hits) <= nameMatchCutoff {
		return nil, domain.NewNoCaseFound()
	}

	hits = keep(hits, func(h *domain.CaseHit) bool { return h.NameMatch > nameMatchCutoff })
	if len(hits) == 0 {
		return nil, domain.NewNoCaseFound()
	}

	if anyFatherInName(hits) {
		hits = keep(hits, func(h *domain.CaseHit) bool { return h.FatherInName == 1 })
	}
	if len(hits) == 0 {
		return nil, domain.NewNoCaseFound()
	}

	if min, ok := minCourtDistance(hits); ok {
		if min >= courtDistanceCutoffKm {
			return nil, domain.NewNoCaseFound()
		}
		hits = keep(hits, func(h *domain.CaseHit) bool {
			return h.CourtDistance != nil && *h.CourtDistance < courtDistanceCutoffKm
		})
	}
	if len(hits) == 0 {
		return nil, domain.NewNoCaseFound()
	}

	return hits, nil
}

func maxNameMatch(hits []*domain.CaseHit) int {
	max := 0
	for _, h := range hits {
		if h.NameMatch > max {
			max = h.NameMatch
		}
	}
	return max
}

func anyFatherInName(hits []*domain.CaseHit) bool {
	for _, h := range hits {
		if h.FatherInName == 1 {
			return true
		}
	}
	return false
}

func minCourtDistance(hits []*domain.CaseHit) (float64, bool) {
	var min float64
	found := false
	for _, h := range hits {
		if h.CourtDistance == nil {
			continue
		}
		if !found || *h.CourtDistance < min {
			min = *h.CourtDistance
			found = true
		}
	}
	return min, found
}

func keep(hits []*domain.CaseHit, pred func(*domain.CaseHit) bool) []*domain.CaseHit {
	out := hits[:0:0]
	for _, h := range hits {
		if pred(h) {
			out = append(out, h)
		}
	}
	return out
}
