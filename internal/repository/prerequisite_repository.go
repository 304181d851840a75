package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ntholi/registry-web/internal/models"
)

// PrerequisiteRepository reads the module prerequisite relation.
type PrerequisiteRepository struct {
	db *sqlx.DB
}

// NewPrerequisiteRepository instantiates a prerequisite repository.
func NewPrerequisiteRepository(db *sqlx.DB) *PrerequisiteRepository {
	return &PrerequisiteRepository{db: db}
}

// Relation returns every (module, prerequisite) pair keyed by module code.
func (r *PrerequisiteRepository) Relation(ctx context.Context) ([]models.Prerequisite, error) {
	const query = `SELECT m.code AS module_code, p.code AS prerequisite_code
        FROM module_prerequisites mp
        JOIN modules m ON m.id = mp.module_id
        JOIN modules p ON p.id = mp.prerequisite_id
        ORDER BY m.code, p.code`

	relation := make([]models.Prerequisite, 0)
	if err := r.db.SelectContext(ctx, &relation, query); err != nil {
		return nil, fmt.Errorf("list prerequisites: %w", err)
	}
	return relation, nil
}
