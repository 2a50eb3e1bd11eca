package match

import (
	"errors"
	"testing"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

func km(d float64) *float64 { return &d }

func assertNoCaseFound(t *testing.T, err error) {
	t.Helper()
	var statusErr *domain.CaseStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected CaseStatusError, got %v", err)
	}
	if statusErr.Code != domain.CodeNoCaseFound {
		t.Errorf("Code: got %d, want %d", statusErr.Code, domain.CodeNoCaseFound)
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	_, err := Filter(nil)
	assertNoCaseFound(t, err)
}

func TestFilter_NameMatchCutoffIsExclusive(t *testing.T) {
	// A best score of exactly 70 does not clear the gate.
	_, err := Filter([]*domain.CaseHit{
		{NameMatch: 70},
		{NameMatch: 45},
	})
	assertNoCaseFound(t, err)
}

func TestFilter_KeepsOnlyAboveCutoff(t *testing.T) {
	strong := &domain.CaseHit{NameMatch: 95}
	weak := &domain.CaseHit{NameMatch: 60}

	out, err := Filter([]*domain.CaseHit{strong, weak})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != strong {
		t.Fatalf("expected only the strong hit, got %d hits", len(out))
	}
}

func TestFilter_FatherCorroborationNarrows(t *testing.T) {
	corroborated := &domain.CaseHit{NameMatch: 90, FatherInName: 1}
	uncorroborated := &domain.CaseHit{NameMatch: 95, FatherInName: 0}

	out, err := Filter([]*domain.CaseHit{corroborated, uncorroborated})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != corroborated {
		t.Error("expected father-corroborated hit to displace the higher name score")
	}
}

func TestFilter_FatherCorroborationNotRequired(t *testing.T) {
	a := &domain.CaseHit{NameMatch: 90}
	b := &domain.CaseHit{NameMatch: 95}

	out, err := Filter([]*domain.CaseHit{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d hits, want 2", len(out))
	}
}

func TestFilter_CourtDistance(t *testing.T) {
	near := &domain.CaseHit{NameMatch: 90, CourtDistance: km(50)}
	far := &domain.CaseHit{NameMatch: 90, CourtDistance: km(150)}
	unknown := &domain.CaseHit{NameMatch: 90, CourtDistance: km(300)} // imputed 2x max

	out, err := Filter([]*domain.CaseHit{near, far, unknown})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != near {
		t.Fatalf("expected only the near hit, got %d hits", len(out))
	}
}

func TestFilter_AllCourtsOutsideRadius(t *testing.T) {
	_, err := Filter([]*domain.CaseHit{
		{NameMatch: 90, CourtDistance: km(120)},
		{NameMatch: 85, CourtDistance: km(400)},
	})
	assertNoCaseFound(t, err)
}

func TestFilter_NoCourtDistanceKnown(t *testing.T) {
	// With no distance resolved anywhere, the geographic gate never engages.
	out, err := Filter([]*domain.CaseHit{{NameMatch: 90}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("got %d hits, want 1", len(out))
	}
}

// Every stage narrows the set; no filter output may contain a hit absent
// from its input.
func TestFilter_Monotonic(t *testing.T) {
	in := []*domain.CaseHit{
		{NameMatch: 92, FatherInName: 1, CourtDistance: km(10)},
		{NameMatch: 88, CourtDistance: km(30)},
		{NameMatch: 40},
	}
	members := make(map[*domain.CaseHit]struct{}, len(in))
	for _, h := range in {
		members[h] = struct{}{}
	}

	out, err := Filter(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) > len(in) {
		t.Fatal("filter widened the hit set")
	}
	for _, h := range out {
		if _, ok := members[h]; !ok {
			t.Fatal("filter produced a hit not present in its input")
		}
	}
}
