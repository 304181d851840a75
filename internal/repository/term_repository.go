package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ntholi/registry-web/internal/models"
)

// TermRepository reads registration terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// Current returns the active registration term.
func (r *TermRepository) Current(ctx context.Context) (*models.Term, error) {
	const query = `SELECT id, name, semester, is_active, start_date, end_date FROM terms WHERE is_active = TRUE ORDER BY start_date DESC LIMIT 1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query); err != nil {
		return nil, err
	}
	return &term, nil
}
