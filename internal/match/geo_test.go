package match

import (
	"context"
	"testing"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// fakeGeocodeStore serves canned coordinate rows.
type fakeGeocodeStore struct {
	stations map[string][]Coordinate
	courts   map[string][]Coordinate
}

func (f *fakeGeocodeStore) StationCoordinates(_ context.Context, _ []string) (map[string][]Coordinate, error) {
	return f.stations, nil
}

func (f *fakeGeocodeStore) CourtCoordinates(_ context.Context, _ []string) (map[string][]Coordinate, error) {
	return f.courts, nil
}

func TestHaversine(t *testing.T) {
	// Same point
	if d := Haversine(77.2, 28.6, 77.2, 28.6); d != 0 {
		t.Errorf("same point: got %v, want 0", d)
	}

	// Delhi to Mumbai is roughly 1150 km
	d := Haversine(77.2090, 28.6139, 72.8777, 19.0760)
	if d < 1100 || d > 1200 {
		t.Errorf("Delhi-Mumbai: got %v, want ~1150", d)
	}

	// Symmetric
	if Haversine(77.2, 28.6, 72.9, 19.1) != Haversine(72.9, 19.1, 77.2, 28.6) {
		t.Error("expected haversine to be symmetric")
	}
}

func TestDistanceResolver_Resolve(t *testing.T) {
	profile := domain.CandidateProfile{Latitude: 28.6, Longitude: 77.2}

	hit := &domain.CaseHit{CNR: "DLCT010012342020"}
	store := &fakeGeocodeStore{
		stations: map[string][]Coordinate{
			// Two station rows; the nearer must win.
			"DLCT010012342020": {
				{Latitude: 28.6, Longitude: 77.2},
				{Latitude: 19.1, Longitude: 72.9},
			},
		},
		courts: map[string][]Coordinate{
			"DLCT01": {{Latitude: 28.7, Longitude: 77.1}},
		},
	}

	err := NewDistanceResolver(store).Resolve(context.Background(), profile, []*domain.CaseHit{hit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hit.PoliceStationDistance == nil {
		t.Fatal("expected station distance")
	}
	if *hit.PoliceStationDistance != 0 {
		t.Errorf("station distance: got %v, want 0 (nearest row)", *hit.PoliceStationDistance)
	}

	if hit.CourtDistance == nil {
		t.Fatal("expected court distance")
	}
	if *hit.CourtDistance <= 0 || *hit.CourtDistance > 30 {
		t.Errorf("court distance: got %v, want a small positive value", *hit.CourtDistance)
	}
}

func TestDistanceResolver_UnresolvedStaysNil(t *testing.T) {
	hit := &domain.CaseHit{CNR: "MHCT020056782021"}
	store := &fakeGeocodeStore{}

	err := NewDistanceResolver(store).Resolve(context.Background(), domain.CandidateProfile{}, []*domain.CaseHit{hit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hit.PoliceStationDistance != nil || hit.CourtDistance != nil {
		t.Error("expected unresolved distances to stay nil")
	}
}

func TestImputeMissingDistances(t *testing.T) {
	known := &domain.CaseHit{CourtDistance: km(40), PoliceStationDistance: km(25)}
	missing := &domain.CaseHit{}

	ImputeMissingDistances([]*domain.CaseHit{known, missing})

	if missing.CourtDistance == nil || *missing.CourtDistance != 80 {
		t.Errorf("court: got %v, want 80 (2x max)", missing.CourtDistance)
	}
	if missing.PoliceStationDistance == nil || *missing.PoliceStationDistance != 50 {
		t.Errorf("station: got %v, want 50 (2x max)", missing.PoliceStationDistance)
	}
	if *known.CourtDistance != 40 {
		t.Error("expected known distances untouched")
	}
}

func TestImputeMissingDistances_NothingKnown(t *testing.T) {
	a := &domain.CaseHit{}
	b := &domain.CaseHit{}

	ImputeMissingDistances([]*domain.CaseHit{a, b})

	if a.CourtDistance != nil || b.CourtDistance != nil {
		t.Error("expected distances to stay nil when nothing is known")
	}
}

func TestImputeMissingDistances_IndependentKinds(t *testing.T) {
	known := &domain.CaseHit{CourtDistance: km(10)}
	missing := &domain.CaseHit{}

	ImputeMissingDistances([]*domain.CaseHit{known, missing})

	if missing.CourtDistance == nil || *missing.CourtDistance != 20 {
		t.Errorf("court: got %v, want 20", missing.CourtDistance)
	}
	if missing.PoliceStationDistance != nil {
		t.Error("station: expected nil, no station distance was known")
	}
}
