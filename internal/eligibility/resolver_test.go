package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

func semesterCatalog() []models.ModuleCatalogEntry {
	return []models.ModuleCatalogEntry{
		catalogEntry(1, "MATH101", "Calculus I", 1),
		catalogEntry(2, "PROG101", "Intro to Programming", 1),
		catalogEntry(3, "MATH201", "Calculus II", 3),
		catalogEntry(4, "PROG201", "Data Structures", 3),
		catalogEntry(5, "NET301", "Networks", 5),
		catalogEntry(6, "ENT301", "Entrepreneurship", 5),
	}
}

func degreeProgram() *models.StudentProgram {
	return &models.StudentProgram{ID: 1, StructureID: 44, Level: models.ProgramLevelDegree, Status: models.ProgramStatusActive}
}

func diplomaProgram() *models.StudentProgram {
	return &models.StudentProgram{ID: 2, StructureID: 45, Level: models.ProgramLevelDiploma, Status: models.ProgramStatusActive}
}

func TestResolveStandardOffersNewModulesThenRepeats(t *testing.T) {
	in := Input{
		Program:      degreeProgram(),
		Semester:     3,
		TermSemester: 3,
		Records: []models.AttemptRecord{
			attempt("Calculus I", "MATH101", 1, 35),
			attempt("Intro to Programming", "PROG101", 1, 70),
		},
		Catalog:       semesterCatalog()[:4],
		Prerequisites: []models.Prerequisite{{ModuleCode: "MATH201", PrerequisiteCode: "MATH101"}},
	}

	decision, err := NewResolver(DefaultPolicy()).Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, RuleStandard, decision.Rule)
	assert.Equal(t, []string{"Calculus II", "Data Structures", "Calculus I"}, names(decision.Modules))
	assert.Equal(t, models.StatusCompulsory, decision.Modules[0].Status)
	assert.Equal(t, []models.PrerequisiteWarning{{ModuleCode: "MATH201", PrerequisiteCode: "MATH101", Failed: true}}, decision.Modules[0].Prerequisites)
	assert.Empty(t, decision.Modules[1].Prerequisites)
	assert.NotNil(t, decision.Modules[1].Prerequisites)
	assert.Equal(t, "Repeat1", decision.Modules[2].Status)
}

func TestResolveInternshipOverrideReturnsRepeatsOnly(t *testing.T) {
	in := Input{
		Program:      diplomaProgram(),
		Semester:     5,
		TermSemester: 1,
		Records:      []models.AttemptRecord{attempt("Calculus I", "MATH101", 1, 35)},
		Catalog:      semesterCatalog(),
	}

	decision, err := NewResolver(DefaultPolicy()).Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, RuleInternship, decision.Rule)
	assert.Equal(t, []string{"Calculus I"}, names(decision.Modules))
	assert.Equal(t, "Repeat1", decision.Modules[0].Status)
}

func TestResolveInternshipNeedsRepeats(t *testing.T) {
	in := Input{Program: diplomaProgram(), Semester: 5, TermSemester: 1, Catalog: semesterCatalog()}

	decision, err := NewResolver(DefaultPolicy()).Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, RuleStandard, decision.Rule)
	assert.Len(t, decision.Modules, 6)
}

func TestResolveInternshipOnlyForDiplomaSemesterFive(t *testing.T) {
	records := []models.AttemptRecord{attempt("Calculus I", "MATH101", 1, 35)}
	resolver := NewResolver(DefaultPolicy())

	degree, err := resolver.Resolve(Input{Program: degreeProgram(), Semester: 5, TermSemester: 1, Records: records, Catalog: semesterCatalog()})
	require.NoError(t, err)
	assert.Equal(t, RuleStandard, degree.Rule)

	diplomaSem3, err := resolver.Resolve(Input{Program: diplomaProgram(), Semester: 3, TermSemester: 1, Records: records, Catalog: semesterCatalog()})
	require.NoError(t, err)
	assert.Equal(t, RuleStandard, diplomaSem3.Rule)
}

func TestResolveRepeatSaturationCutoff(t *testing.T) {
	resolver := NewResolver(DefaultPolicy())

	three, err := resolver.Resolve(Input{Program: degreeProgram(), Semester: 3, TermSemester: 3, Records: failingAttempts(3, 1), Catalog: semesterCatalog()})
	require.NoError(t, err)
	assert.Equal(t, RuleRepeatSaturation, three.Rule)
	require.Len(t, three.Modules, 3)
	for _, module := range three.Modules {
		assert.Equal(t, "Repeat1", module.Status)
	}

	two, err := resolver.Resolve(Input{Program: degreeProgram(), Semester: 3, TermSemester: 3, Records: failingAttempts(2, 1), Catalog: semesterCatalog()})
	require.NoError(t, err)
	assert.Equal(t, RuleStandard, two.Rule)
	assert.Len(t, two.Modules, 6)
	assert.Equal(t, models.StatusCompulsory, two.Modules[0].Status)
	assert.Equal(t, "Repeat1", two.Modules[5].Status)
}

func TestResolveInternshipTakesPrecedenceOverSaturation(t *testing.T) {
	decision, err := NewResolver(DefaultPolicy()).Resolve(Input{
		Program: diplomaProgram(), Semester: 5, TermSemester: 1, Records: failingAttempts(4, 1), Catalog: semesterCatalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, RuleInternship, decision.Rule)
	assert.Len(t, decision.Modules, 4)
}

func TestResolveExcludesModulePassedUnderOldCode(t *testing.T) {
	in := Input{
		Program:      degreeProgram(),
		Semester:     3,
		TermSemester: 1,
		Records: []models.AttemptRecord{
			attempt("Intro to Programming", "CS101", 1, 40),
			attempt("Intro to Programming", "CS101", 1, 62),
		},
		Catalog: semesterCatalog(),
	}

	decision, err := NewResolver(DefaultPolicy()).Resolve(in)
	require.NoError(t, err)
	assert.NotContains(t, names(decision.Modules), "Intro to Programming")
	assert.Empty(t, decision.Repeats)
}

func TestResolveMarksElectives(t *testing.T) {
	catalog := []models.ModuleCatalogEntry{
		catalogEntry(1, "MATH101", "Calculus I", 1),
		{ModuleID: 9, Code: "MUS101", Name: "Music Appreciation", Type: models.ModuleTypeElective, Credits: 6, SemesterNumber: 1},
	}

	decision, err := NewResolver(DefaultPolicy()).Resolve(Input{Program: degreeProgram(), Semester: 1, TermSemester: 1, Catalog: catalog})
	require.NoError(t, err)
	require.Len(t, decision.Modules, 2)
	assert.Equal(t, models.StatusCompulsory, decision.Modules[0].Status)
	assert.Equal(t, models.StatusElective, decision.Modules[1].Status)
}

func TestResolveEmptyResultIsNotAnError(t *testing.T) {
	records := []models.AttemptRecord{attempt("Calculus I", "MATH101", 1, 80)}
	decision, err := NewResolver(DefaultPolicy()).Resolve(Input{
		Program: degreeProgram(), Semester: 1, TermSemester: 1, Records: records, Catalog: semesterCatalog()[:1],
	})
	require.NoError(t, err)
	assert.Empty(t, decision.Modules)
	assert.NotNil(t, decision.Modules)
}

func TestResolveRequiresActiveProgram(t *testing.T) {
	_, err := NewResolver(DefaultPolicy()).Resolve(Input{Semester: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrNoActiveProgram))

	_, err = NewResolver(DefaultPolicy()).Resolve(Input{Program: degreeProgram(), Semester: 0})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestResolveIsIdempotent(t *testing.T) {
	in := Input{
		Program:      degreeProgram(),
		Semester:     3,
		TermSemester: 1,
		Records:      append(failingAttempts(2, 1), attempt("Intro to Programming", "PROG101", 1, 70)),
		Catalog:      semesterCatalog(),
	}
	resolver := NewResolver(DefaultPolicy())

	first, err := resolver.Resolve(in)
	require.NoError(t, err)
	second, err := resolver.Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluateRuleInIsolation(t *testing.T) {
	resolver := NewResolver(Policy{})
	in := Input{Program: diplomaProgram(), Semester: 5, TermSemester: 1, Records: failingAttempts(1, 1)}

	assert.True(t, resolver.EvaluateRule(RuleInternship, in))
	assert.False(t, resolver.EvaluateRule(RuleRepeatSaturation, in))
	assert.True(t, resolver.EvaluateRule(RuleStandard, in))
	assert.False(t, resolver.EvaluateRule(RuleInternship, Input{Semester: 5}))
	assert.Equal(t, DefaultPolicy(), resolver.Policy())
}
