package eligibility

import (
	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

// CompletedSemesters collects the semester numbers the student has a standing semester
// record for, across all programs. Deleted and deferred records do not count.
func CompletedSemesters(student *models.Student) map[int]struct{} {
	completed := make(map[int]struct{})
	if student == nil {
		return completed
	}
	for _, program := range student.Programs {
		for _, semester := range program.Semesters {
			if excludedSemester(semester.Status) {
				continue
			}
			completed[semester.SemesterNumber] = struct{}{}
		}
	}
	return completed
}

// InferSemester returns the most frequent semester number in the selection. Ties go to the
// value seen first in input order.
func InferSemester(selected []models.SelectedModule) (int, bool) {
	counts := make(map[int]int)
	var order []int
	for _, module := range selected {
		if _, ok := counts[module.SemesterNo]; !ok {
			order = append(order, module.SemesterNo)
		}
		counts[module.SemesterNo]++
	}
	if len(order) == 0 {
		return 0, false
	}
	best, bestCount := order[0], counts[order[0]]
	for _, semesterNo := range order[1:] {
		if counts[semesterNo] > bestCount {
			best, bestCount = semesterNo, counts[semesterNo]
		}
	}
	return best, true
}

// DetermineSemesterStatus infers the semester a selection represents and labels it Repeat
// when the student already has a record for that semester, Active otherwise. No eligibility
// checks are made so simulators can explore any combination.
func DetermineSemesterStatus(selected []models.SelectedModule, completed map[int]struct{}) (models.SemesterStatusResult, error) {
	semesterNo, ok := InferSemester(selected)
	if !ok {
		return models.SemesterStatusResult{}, appErrors.Clone(appErrors.ErrValidation, "no modules selected")
	}
	status := models.SemesterStatusActive
	if _, done := completed[semesterNo]; done {
		status = models.SemesterStatusRepeat
	}
	return models.SemesterStatusResult{SemesterNo: semesterNo, Status: string(status)}, nil
}
