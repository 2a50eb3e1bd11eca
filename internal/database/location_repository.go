package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// LocationRepository resolves pincodes to jurisdiction and coordinates.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// ByPincode resolves a pincode. An unregistered pincode is a business
// outcome (PincodeNotFound), not an infrastructure failure.
func (r *LocationRepository) ByPincode(ctx context.Context, pincode string) (domain.Location, error) {
	const query = `SELECT district, state, latitude, longitude FROM pincode WHERE pincode = $1`

	var loc domain.Location
	err := r.db.QueryRowContext(ctx, query, pincode).Scan(
		&loc.District,
		&loc.State,
		&loc.Latitude,
		&loc.Longitude,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Location{}, domain.NewPincodeNotFound(pincode)
	}
	if err != nil {
		return domain.Location{}, fmt.Errorf("resolve pincode %s: %w", pincode, err)
	}
	return loc, nil
}
