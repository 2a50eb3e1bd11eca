package match

import (
	"context"
	"fmt"
	"math"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// earthRadiusKm is the great-circle radius used for all distances.
const earthRadiusKm = 6367

// missingDistanceFactor scales the maximum observed distance when imputing
// a missing one. Unknown locations are penalized, never favored.
const missingDistanceFactor = 2

// Coordinate is a geographic point.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// GeocodeStore resolves case reference numbers to police-station and court
// coordinates. Station lookups go through the FIR index and may return
// several coordinate rows per CNR; court lookups key on the 6-character CNR
// prefix and may also return several when courts share a prefix.
type GeocodeStore interface {
	StationCoordinates(ctx context.Context, cnrs []string) (map[string][]Coordinate, error)
	CourtCoordinates(ctx context.Context, prefixes []string) (map[string][]Coordinate, error)
}

// DistanceResolver fills in police-station and court distances for a batch
// of hits.
type DistanceResolver struct {
	store GeocodeStore
}

// NewDistanceResolver creates a resolver backed by the given store.
func NewDistanceResolver(store GeocodeStore) *DistanceResolver {
	return &DistanceResolver{store: store}
}

// Resolve computes distances from the candidate's location to each hit's
// police station and court, in kilometres. A station with multiple
// coordinate rows keeps the minimum distance; a court prefix shared by
// multiple courts keeps the nearest one, a deterministic tie-break in place
// of arbitrary row order. Hits with no matching row keep a nil distance and
// are imputed afterwards by ImputeMissingDistances.
func (r *DistanceResolver) Resolve(ctx context.Context, profile domain.CandidateProfile, hits []*domain.CaseHit) error {
	if len(hits) == 0 {
		return nil
	}

	cnrs := make([]string, 0, len(hits))
	prefixes := make([]string, 0, len(hits))
	seenCNR := make(map[string]struct{}, len(hits))
	seenPrefix := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if _, ok := seenCNR[h.CNR]; !ok {
			seenCNR[h.CNR] = struct{}{}
			cnrs = append(cnrs, h.CNR)
		}
		if _, ok := seenPrefix[h.CNRPrefix()]; !ok {
			seenPrefix[h.CNRPrefix()] = struct{}{}
			prefixes = append(prefixes, h.CNRPrefix())
		}
	}

	stations, err := r.store.StationCoordinates(ctx, cnrs)
	if err != nil {
		return fmt.Errorf("resolve station coordinates: %w", err)
	}
	courts, err := r.store.CourtCoordinates(ctx, prefixes)
	if err != nil {
		return fmt.Errorf("resolve court coordinates: %w", err)
	}

	for _, h := range hits {
		if d, ok := nearest(profile, stations[h.CNR]); ok {
			h.PoliceStationDistance = &d
		}
		if d, ok := nearest(profile, courts[h.CNRPrefix()]); ok {
			h.CourtDistance = &d
		}
	}
	return nil
}

// nearest returns the minimum haversine distance from the candidate to any
// of the coordinates, and whether any coordinate existed.
func nearest(profile domain.CandidateProfile, coords []Coordinate) (float64, bool) {
	best := math.Inf(1)
	for _, c := range coords {
		d := Haversine(profile.Longitude, profile.Latitude, c.Longitude, c.Latitude)
		if d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// ImputeMissingDistances replaces nil distances with twice the maximum
// distance observed in the batch, separately for police stations and courts.
// When no distance of a kind is known at all, nothing is imputed and the
// values stay nil.
func ImputeMissingDistances(hits []*domain.CaseHit) {
	imputeDistance(hits,
		func(h *domain.CaseHit) *float64 { return h.PoliceStationDistance },
		func(h *domain.CaseHit, d *float64) { h.PoliceStationDistance = d })
	imputeDistance(hits,
		func(h *domain.CaseHit) *float64 { return h.CourtDistance },
		func(h *domain.CaseHit, d *float64) { h.CourtDistance = d })
}

func imputeDistance(hits []*domain.CaseHit, get func(*domain.CaseHit) *float64, set func(*domain.CaseHit, *float64)) {
	maxKnown := math.Inf(-1)
	for _, h := range hits {
		if d := get(h); d != nil && *d > maxKnown {
			maxKnown = *d
		}
	}
	if math.IsInf(maxKnown, -1) {
		return
	}

	imputed := maxKnown * missingDistanceFactor
	for _, h := range hits {
		if get(h) == nil {
			d := imputed
			set(h, &d)
		}
	}
}

// Haversine returns the great-circle distance in kilometres between two
// (lon, lat) points given in degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	lon1, lat1 = radians(lon1), radians(lat1)
	lon2, lat2 = radians(lon2), radians(lat2)

	dlon := lon2 - lon1
	dlat := lat2 - lat1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
