package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// QueueRepository claims verification requests from the queue and records
// their job status.
type QueueRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewQueueRepository creates a new queue repository.
func NewQueueRepository(db *sqlx.DB, tables Tables) *QueueRepository {
	return &QueueRepository{db: db, tables: tables}
}

// ClaimNext claims one pending request by deleting its in_progress status
// row under FOR UPDATE SKIP LOCKED, so concurrent workers never claim the
// same request. Returns an empty id when the queue is empty.
func (r *QueueRepository) ClaimNext(ctx context.Context) (string, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s cr USING
			(SELECT idx FROM %s WHERE status = $1 LIMIT 1 FOR UPDATE SKIP LOCKED) crs
		WHERE cr.idx = crs.idx RETURNING crs.idx
	`, r.tables.Status, r.tables.Status)

	var idx string
	err := r.db.QueryRowContext(ctx, query, domain.JobStatusInProgress).Scan(&idx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("claim next request: %w", err)
	}
	return idx, nil
}

// Request loads the full request row for a claimed id.
func (r *QueueRepository) Request(ctx context.Context, idx string) (*domain.VerificationRequest, error) {
	query := fmt.Sprintf(`
		SELECT idx, emp_id, initiated_on, name, pincode, dob, father_name, state, district, full_address
		FROM %s WHERE idx = $1
	`, r.tables.Queue)

	var req domain.VerificationRequest
	if err := r.db.GetContext(ctx, &req, query, idx); err != nil {
		return nil, fmt.Errorf("load request %s: %w", idx, err)
	}
	return &req, nil
}

// SetStatus records a terminal job status for a request.
func (r *QueueRepository) SetStatus(ctx context.Context, idx, empID, status string) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (idx, emp_id, status) VALUES ($1, $2, $3)`,
		r.tables.Status,
	)

	if _, err := r.db.ExecContext(ctx, query, idx, empID, status); err != nil {
		return fmt.Errorf("set status %s for %s: %w", status, idx, err)
	}
	return nil
}
