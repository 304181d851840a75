package eligibility

import "github.com/ntholi/registry-web/internal/models"

var (
	evenSemesters = []int{2, 4, 6, 8, 10}
	oddSemesters  = []int{1, 3, 5, 7, 9}
)

// ParitySemesters returns the semester numbers whose repeats are offered in a term with the
// given semester index.
func ParitySemesters(termSemester int) []int {
	if termSemester%2 == 0 {
		return evenSemesters
	}
	return oddSemesters
}

// RepeatModules derives the modules a student must repeat in a term. Only attempts at
// semester numbers matching the term's parity are counted; a module passed anywhere in the
// history is never offered as a repeat.
func RepeatModules(records []models.AttemptRecord, termSemester int) []models.RepeatEntry {
	allowed := make(map[int]struct{})
	for _, n := range ParitySemesters(termSemester) {
		allowed[n] = struct{}{}
	}
	filtered := make([]models.AttemptRecord, 0, len(records))
	for _, record := range records {
		if _, ok := allowed[record.SemesterNumber]; ok {
			filtered = append(filtered, record)
		}
	}

	overall := ClassifyHistory(records)
	repeats := make([]models.RepeatEntry, 0)
	for _, module := range ClassifyHistory(filtered).Modules() {
		if module.Passed || overall.Satisfied(module.Name) {
			continue
		}
		latest := module.Latest
		repeats = append(repeats, models.RepeatEntry{
			ModuleID: latest.ModuleID,
			Code:     latest.ModuleCode,
			Name:     latest.ModuleName,
			Type:     latest.ModuleType,
			Credits:  latest.Credits,
			Status:   models.RepeatStatus(module.FailCount),
		})
	}
	return repeats
}
