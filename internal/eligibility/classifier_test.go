package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntholi/registry-web/internal/models"
)

func TestClassifyHistoryPassIsPermanent(t *testing.T) {
	history := ClassifyHistory([]models.AttemptRecord{
		attempt("Intro to Programming", "PROG101", 1, 40),
		attempt("Intro to Programming", "PROG101", 3, 62),
		attempt("Intro to Programming", "PROG101", 5, 20),
	})

	entry, ok := history.Lookup("Intro to Programming")
	require.True(t, ok)
	assert.True(t, entry.Passed)
	assert.Equal(t, 1, entry.FailCount)
	assert.Equal(t, 3, entry.Attempts)
	assert.True(t, history.Satisfied("Intro to Programming"))
}

func TestClassifyHistoryIsKeyedByName(t *testing.T) {
	history := ClassifyHistory([]models.AttemptRecord{
		attempt("Intro to Programming", "CS101", 1, 40),
		attempt("Intro to Programming", "PROG1101", 3, 45),
	})

	modules := history.Modules()
	require.Len(t, modules, 1)
	assert.Equal(t, 2, modules[0].FailCount)
	assert.Equal(t, "PROG1101", modules[0].Latest.ModuleCode)
	assert.False(t, modules[0].Passed)
}

func TestClassifyHistoryBoundaryMark(t *testing.T) {
	history := ClassifyHistory([]models.AttemptRecord{
		attempt("Algebra", "MATH102", 1, 50),
		attempt("Geometry", "MATH103", 1, 49.99),
	})

	assert.True(t, history.Satisfied("Algebra"))
	assert.False(t, history.Satisfied("Geometry"))
	assert.True(t, history.Attempted("Geometry"))
	assert.False(t, history.Attempted("Topology"))
}

func TestClassifyHistoryKeepsFirstSeenOrder(t *testing.T) {
	history := ClassifyHistory([]models.AttemptRecord{
		attempt("Zoology", "ZOO101", 1, 30),
		attempt("Anatomy", "ANA101", 1, 30),
		attempt("Zoology", "ZOO101", 3, 30),
	})

	modules := history.Modules()
	require.Len(t, modules, 2)
	assert.Equal(t, "Zoology", modules[0].Name)
	assert.Equal(t, "Anatomy", modules[1].Name)
}

func TestFailedInSemesterIgnoresLaterRetakes(t *testing.T) {
	records := []models.AttemptRecord{
		attempt("Calculus I", "MATH101", 1, 30),
		attempt("Intro to Programming", "PROG101", 1, 70),
		attempt("Physics", "PHY101", 2, 10),
		attempt("Calculus I", "MATH101", 3, 80),
	}

	failed := FailedInSemester(records, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, models.FailedModule{Code: "MATH101", Name: "Calculus I", Marks: 30}, failed[0])

	assert.Empty(t, FailedInSemester(records, 4))
	assert.NotNil(t, FailedInSemester(records, 4))
}
