package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// Legal-code reference tables. Curated from the IPC reporting list; the
// worker only ever reads them.
const (
	greenCodesTable = "court_ipc_green"
	redCodesTable   = "court_ipc_red"
)

// LegalCodeRepository reads the green and red (act, code) reference tables.
type LegalCodeRepository struct {
	db *sqlx.DB
}

// NewLegalCodeRepository creates a new legal-code repository.
func NewLegalCodeRepository(db *sqlx.DB) *LegalCodeRepository {
	return &LegalCodeRepository{db: db}
}

// GreenCodes returns the low-severity reference rows.
func (r *LegalCodeRepository) GreenCodes(ctx context.Context) ([]domain.LegalCode, error) {
	return r.codes(ctx, greenCodesTable)
}

// RedCodes returns the high-severity reference rows.
func (r *LegalCodeRepository) RedCodes(ctx context.Context) ([]domain.LegalCode, error) {
	return r.codes(ctx, redCodesTable)
}

func (r *LegalCodeRepository) codes(ctx context.Context, table string) ([]domain.LegalCode, error) {
	var codes []domain.LegalCode
	query := fmt.Sprintf(`SELECT type, code FROM %s`, table)
	if err := r.db.SelectContext(ctx, &codes, query); err != nil {
		return nil, fmt.Errorf("load legal codes from %s: %w", table, err)
	}
	return codes, nil
}
