package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntholi/registry-web/internal/models"
)

func TestResolvePrerequisiteWarnings(t *testing.T) {
	catalog := []models.ModuleCatalogEntry{
		catalogEntry(1, "MATH101", "Calculus I", 1),
		catalogEntry(2, "PROG101", "Intro to Programming", 1),
		catalogEntry(3, "STA101", "Statistics", 2),
		catalogEntry(4, "MATH201", "Calculus II", 3),
		catalogEntry(5, "PROG201", "Data Structures", 3),
		catalogEntry(6, "STA301", "Inference", 3),
	}
	history := ClassifyHistory([]models.AttemptRecord{
		attempt("Calculus I", "MATH101", 1, 45),
		attempt("Intro to Programming", "CS101", 1, 75),
	})
	relation := []models.Prerequisite{
		{ModuleCode: "MATH201", PrerequisiteCode: "MATH101"},
		{ModuleCode: "PROG201", PrerequisiteCode: "PROG101"},
		{ModuleCode: "STA301", PrerequisiteCode: "STA101"},
		{ModuleCode: "STA301", PrerequisiteCode: "MATH101"},
		{ModuleCode: "STA301", PrerequisiteCode: "MATH101"},
	}

	warnings := ResolvePrerequisiteWarnings(catalog, 3, history, relation)

	require.Len(t, warnings, 2)
	assert.Equal(t, []models.PrerequisiteWarning{{ModuleCode: "MATH201", PrerequisiteCode: "MATH101", Failed: true}}, warnings["MATH201"])
	assert.NotContains(t, warnings, "PROG201")
	assert.Equal(t, []models.PrerequisiteWarning{
		{ModuleCode: "STA301", PrerequisiteCode: "STA101", Failed: true},
		{ModuleCode: "STA301", PrerequisiteCode: "MATH101", Failed: true},
	}, warnings["STA301"])
}

func TestResolvePrerequisiteWarningsIgnoresCurrentAndLaterSemesters(t *testing.T) {
	catalog := []models.ModuleCatalogEntry{
		catalogEntry(1, "MATH101", "Calculus I", 2),
		catalogEntry(2, "MATH201", "Calculus II", 2),
	}
	relation := []models.Prerequisite{{ModuleCode: "MATH201", PrerequisiteCode: "MATH101"}}

	warnings := ResolvePrerequisiteWarnings(catalog, 2, ClassifyHistory(nil), relation)
	assert.Empty(t, warnings)

	warnings = ResolvePrerequisiteWarnings(catalog, 3, ClassifyHistory(nil), relation)
	assert.Len(t, warnings["MATH201"], 1)
}
