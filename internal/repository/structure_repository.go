package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ntholi/registry-web/internal/models"
)

// StructureRepository reads curriculum structures and their module catalogs.
type StructureRepository struct {
	db *sqlx.DB
}

// NewStructureRepository instantiates a structure repository.
func NewStructureRepository(db *sqlx.DB) *StructureRepository {
	return &StructureRepository{db: db}
}

// Exists reports whether the structure is defined.
func (r *StructureRepository) Exists(ctx context.Context, structureID int64) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM structures WHERE id = $1 LIMIT 1`, structureID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check structure: %w", err)
	}
	return true, nil
}

// ModuleCatalog lists the modules of every structure semester up to and including upTo,
// ordered by semester and then by position within the semester.
func (r *StructureRepository) ModuleCatalog(ctx context.Context, structureID int64, upTo int) ([]models.ModuleCatalogEntry, error) {
	const query = `SELECT m.id AS module_id, m.code, m.name, smo.type, smo.credits, ss.semester_number
        FROM semester_modules smo
        JOIN structure_semesters ss ON ss.id = smo.semester_id
        JOIN modules m ON m.id = smo.module_id
        WHERE ss.structure_id = $1 AND ss.semester_number <= $2 AND smo.hidden = FALSE AND smo.type <> $3
        ORDER BY ss.semester_number, smo.id`

	entries := make([]models.ModuleCatalogEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, structureID, upTo, models.ModuleTypeDelete); err != nil {
		return nil, fmt.Errorf("list structure modules: %w", err)
	}
	return entries, nil
}
