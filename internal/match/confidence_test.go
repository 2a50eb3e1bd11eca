package match

import (
	"math"
	"testing"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

func TestScoreConfidence_PerfectHit(t *testing.T) {
	hit := &domain.CaseHit{
		NameMatch:              100,
		FatherNameMatch:        100,
		ModifiedNameMatch:      100,
		PercentageFatherInName: 100,
		InSameDistrict:         1,
		InSameState:            1,
		CourtDistance:          km(0.5),
	}

	ScoreConfidence([]*domain.CaseHit{hit})

	if math.Abs(hit.ConfidenceScore-1.0) > 1e-9 {
		t.Errorf("got %v, want 1.0", hit.ConfidenceScore)
	}
}

func TestScoreConfidence_CourtDistanceReciprocal(t *testing.T) {
	hit := &domain.CaseHit{CourtDistance: km(50)}

	ScoreConfidence([]*domain.CaseHit{hit})

	want := (1.0 / 50) / 7
	if math.Abs(hit.ConfidenceScore-want) > 1e-9 {
		t.Errorf("got %v, want %v", hit.ConfidenceScore, want)
	}
}

func TestScoreConfidence_MissingCourtDistance(t *testing.T) {
	// A missing distance contributes a full proximity term, not infinity.
	hit := &domain.CaseHit{}

	ScoreConfidence([]*domain.CaseHit{hit})

	want := 1.0 / 7
	if math.Abs(hit.ConfidenceScore-want) > 1e-9 {
		t.Errorf("got %v, want %v", hit.ConfidenceScore, want)
	}
}

func TestScoreConfidence_AlwaysInUnitInterval(t *testing.T) {
	hits := []*domain.CaseHit{
		{},
		{NameMatch: 100, FatherNameMatch: 100, ModifiedNameMatch: 100,
			PercentageFatherInName: 100, InSameDistrict: 1, InSameState: 1,
			CourtDistance: km(0.01)},
		{NameMatch: 73, CourtDistance: km(2500)},
		{InSameState: 1},
	}

	ScoreConfidence(hits)

	for i, h := range hits {
		if h.ConfidenceScore < 0 || h.ConfidenceScore > 1 {
			t.Errorf("hit %d: confidence %v outside [0,1]", i, h.ConfidenceScore)
		}
	}
}
