package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntholi/registry-web/internal/models"
)

func TestStructureRepositoryExists(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStructureRepository(db)

	mock.ExpectQuery("SELECT 1 FROM structures WHERE id = \\$1").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM structures WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStructureRepositoryModuleCatalog(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStructureRepository(db)

	rows := sqlmock.NewRows([]string{"module_id", "code", "name", "type", "credits", "semester_number"}).
		AddRow(7, "DIT110", "Intro to Programming", "Core", 12.0, 1).
		AddRow(12, "DIT210", "Data Structures", "Major", 12.0, 2).
		AddRow(13, "DIT211", "Entrepreneurship", "Elective", 8.0, 2)
	mock.ExpectQuery("FROM semester_modules smo").
		WithArgs(int64(10), 2, models.ModuleTypeDelete).
		WillReturnRows(rows)

	catalog, err := repo.ModuleCatalog(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, "Data Structures", catalog[1].Name)
	assert.Equal(t, models.ModuleTypeElective, catalog[2].Type)
	assert.Equal(t, 2, catalog[2].SemesterNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStructureRepositoryModuleCatalogError(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStructureRepository(db)

	mock.ExpectQuery("FROM semester_modules smo").WillReturnError(errors.New("connection reset"))

	_, err := repo.ModuleCatalog(context.Background(), 10, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list structure modules")
}

func TestPrerequisiteRepositoryRelation(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewPrerequisiteRepository(db)

	mock.ExpectQuery("FROM module_prerequisites mp").
		WillReturnRows(sqlmock.NewRows([]string{"module_code", "prerequisite_code"}).
			AddRow("DIT210", "DIT110").
			AddRow("DIT220", "DIT111"))

	relation, err := repo.Relation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Prerequisite{
		{ModuleCode: "DIT210", PrerequisiteCode: "DIT110"},
		{ModuleCode: "DIT220", PrerequisiteCode: "DIT111"},
	}, relation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryCurrent(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectQuery("FROM terms WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "semester", "is_active", "start_date", "end_date"}).
			AddRow(4, "2025-02", 2, true, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))

	term, err := repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-02", term.Name)
	assert.True(t, term.IsEven())
	assert.NoError(t, mock.ExpectationsWereMet())
}
