package match

import "github.com/jonesrussell/crc-worker/internal/domain"

// confidenceComponents is the number of features averaged into the score.
const confidenceComponents = 7

// ScoreConfidence attaches a [0,1] confidence value to each hit, averaging
// the normalized fuzzy scores, the jurisdiction flags and the inverse court
// distance. A missing court distance contributes 1 (not an unbounded term),
// so unknown-location hits are neither rewarded nor divide by zero. No
// aggregation across hits happens here; ranking is the caller's concern.
func ScoreConfidence(hits []*domain.CaseHit) {
	for _, h := range hits {
		h.ConfidenceScore = confidence(h)
	}
}

func confidence(h *domain.CaseHit) float64 {
	// Courts inside 1 km get full proximity credit; the raw reciprocal
	// would push the score past 1 for sub-kilometre distances.
	invCourtDistance := 1.0
	if h.CourtDistance != nil && *h.CourtDistance > 1 {
		invCourtDistance = 1 / *h.CourtDistance
	}

	sum := float64(h.NameMatch)/100 +
		float64(h.FatherNameMatch)/100 +
		float64(h.ModifiedNameMatch)/100 +
		float64(h.PercentageFatherInName)/100 +
		float64(h.InSameDistrict) +
		float64(h.InSameState) +
		invCourtDistance

	return sum / confidenceComponents
}
