package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// courtNamesLimit caps the court names listed on a green report.
const courtNamesLimit = 15

// ReportRepository persists per-case results and final reports, and looks
// up jurisdiction court names.
type ReportRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB, tables Tables) *ReportRepository {
	return &ReportRepository{db: db, tables: tables}
}

// SaveOutcome persists a request's terminal outcome atomically: the per-hit
// result rows, the report row and the completed status land in a single
// transaction. A failure partway through leaves no rows behind, so the
// request stays replayable without duplicate-key conflicts.
func (r *ReportRepository) SaveOutcome(ctx context.Context, req *domain.VerificationRequest, completedOn time.Time, report domain.Report, hits []*domain.CaseHit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcome for %s: %w", req.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(hits) > 0 {
		if err := r.insertResult(ctx, tx, req.ID, hits); err != nil {
			return err
		}
	}
	if err := r.insertReport(ctx, tx, req, completedOn, report); err != nil {
		return err
	}

	statusQuery := fmt.Sprintf(
		`INSERT INTO %s (idx, emp_id, status) VALUES ($1, $2, $3)`,
		r.tables.Status,
	)
	if _, err := tx.ExecContext(ctx, statusQuery, req.ID, req.EmpID, domain.JobStatusCompleted); err != nil {
		return fmt.Errorf("set status completed for %s: %w", req.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcome for %s: %w", req.ID, err)
	}
	return nil
}

// insertResult stores the per-hit result records for a request as a JSON
// list.
func (r *ReportRepository) insertResult(ctx context.Context, tx *sqlx.Tx, idx string, hits []*domain.CaseHit) error {
	payload, err := json.Marshal(hits)
	if err != nil {
		return fmt.Errorf("marshal result for %s: %w", idx, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (idx, result) VALUES ($1, $2)`, r.tables.Result)
	if _, err := tx.ExecContext(ctx, query, idx, payload); err != nil {
		return fmt.Errorf("insert result for %s: %w", idx, err)
	}
	return nil
}

// insertReport stores the terminal report row for a request.
func (r *ReportRepository) insertReport(ctx context.Context, tx *sqlx.Tx, req *domain.VerificationRequest, completedOn time.Time, report domain.Report) error {
	payload, err := report.JSON()
	if err != nil {
		return fmt.Errorf("marshal report for %s: %w", req.ID, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (idx, emp_id, initiated_on, completed_on, case_status, status_code, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Report)

	_, err = tx.ExecContext(ctx, query,
		req.ID,
		req.EmpID,
		req.InitiatedOn,
		completedOn,
		string(report.Result),
		report.Status,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert report for %s: %w", req.ID, err)
	}
	return nil
}

// CourtNames returns distinct court names for the jurisdiction, preferring
// a state+district match and falling back to state alone. A jurisdiction
// with no court rows yields an empty list, not an error.
func (r *ReportRepository) CourtNames(ctx context.Context, state, district string) ([]string, error) {
	const districtQuery = `
		SELECT DISTINCT court_name FROM court_data
		WHERE state ILIKE $1 AND district ILIKE $2
		LIMIT $3
	`
	var names []string
	if err := r.db.SelectContext(ctx, &names, districtQuery, state, district, courtNamesLimit); err != nil {
		return nil, fmt.Errorf("court names by district: %w", err)
	}
	if len(names) > 0 {
		return names, nil
	}

	const stateQuery = `
		SELECT DISTINCT court_name FROM court_data
		WHERE state ILIKE $1
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &names, stateQuery, state, courtNamesLimit); err != nil {
		return nil, fmt.Errorf("court names by state: %w", err)
	}
	return names, nil
}
