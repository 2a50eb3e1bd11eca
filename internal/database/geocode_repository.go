package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/crc-worker/internal/match"
)

// GeocodeRepository resolves case reference numbers to police-station and
// court coordinates. It implements match.GeocodeStore.
type GeocodeRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewGeocodeRepository creates a new geocode repository.
func NewGeocodeRepository(db *sqlx.DB, tables Tables) *GeocodeRepository {
	return &GeocodeRepository{db: db, tables: tables}
}

// StationCoordinates resolves police-station coordinates for a set of CNRs
// through the FIR index: the index table maps each CNR to station ids, and
// the geocode table maps station ids to coordinate rows. A station may carry
// several coordinate rows; all are returned and the caller keeps the
// minimum distance.
func (r *GeocodeRepository) StationCoordinates(ctx context.Context, cnrs []string) (map[string][]match.Coordinate, error) {
	out := make(map[string][]match.Coordinate)
	if len(cnrs) == 0 {
		return out, nil
	}

	idxQuery, args, err := sqlx.In(
		fmt.Sprintf(`SELECT cnr, idx_list FROM %s WHERE cnr IN (?)`, r.tables.FIRIndex),
		cnrs,
	)
	if err != nil {
		return nil, fmt.Errorf("build fir index query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(idxQuery), args...)
	if err != nil {
		return nil, fmt.Errorf("query fir index: %w", err)
	}
	defer rows.Close()

	var stationIDs []int64
	for rows.Next() {
		var cnr string
		var idxList pq.Int64Array
		if err := rows.Scan(&cnr, &idxList); err != nil {
			return nil, fmt.Errorf("scan fir index row: %w", err)
		}
		stationIDs = append(stationIDs, idxList...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fir index rows: %w", err)
	}
	if len(stationIDs) == 0 {
		return out, nil
	}

	geoQuery, args, err := sqlx.In(
		fmt.Sprintf(`SELECT cnr, latitude, longitude FROM %s WHERE idx IN (?)`, r.tables.FIRGeocode),
		stationIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build fir geocode query: %w", err)
	}

	geoRows, err := r.db.QueryContext(ctx, r.db.Rebind(geoQuery), args...)
	if err != nil {
		return nil, fmt.Errorf("query fir geocode: %w", err)
	}
	defer geoRows.Close()

	for geoRows.Next() {
		var cnr string
		var coord match.Coordinate
		if err := geoRows.Scan(&cnr, &coord.Latitude, &coord.Longitude); err != nil {
			return nil, fmt.Errorf("scan fir geocode row: %w", err)
		}
		// Index rows carry padded CNRs.
		cnr = strings.TrimSpace(cnr)
		out[cnr] = append(out[cnr], coord)
	}
	if err := geoRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fir geocode rows: %w", err)
	}
	return out, nil
}

// CourtCoordinates resolves court coordinates for a set of 6-character CNR
// prefixes. Prefixes shared by multiple courts return every row; the caller
// tie-breaks on distance.
func (r *GeocodeRepository) CourtCoordinates(ctx context.Context, prefixes []string) (map[string][]match.Coordinate, error) {
	out := make(map[string][]match.Coordinate)
	if len(prefixes) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT cnr_part, latitude, longitude FROM %s WHERE cnr_part IN (?)`, r.tables.CourtGeocode),
		prefixes,
	)
	if err != nil {
		return nil, fmt.Errorf("build court geocode query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query court geocode: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var prefix string
		var coord match.Coordinate
		if err := rows.Scan(&prefix, &coord.Latitude, &coord.Longitude); err != nil {
			return nil, fmt.Errorf("scan court geocode row: %w", err)
		}
		out[strings.TrimSpace(prefix)] = append(out[strings.TrimSpace(prefix)], coord)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate court geocode rows: %w", err)
	}
	return out, nil
}
