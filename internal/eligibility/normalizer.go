// Package eligibility decides which modules a student may register for and which semester a
// module selection represents. Every function here is a pure computation over an already
// loaded academic snapshot; nothing is cached or mutated between calls.
package eligibility

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

// FlattenAttempts flattens the program -> semester -> module graph into attempt records.
// Deleted or deferred semesters and dropped or deleted modules are skipped.
func FlattenAttempts(student *models.Student) ([]models.AttemptRecord, error) {
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrDataIntegrity, "student record missing")
	}
	var records []models.AttemptRecord
	for _, program := range student.Programs {
		for _, semester := range program.Semesters {
			if excludedSemester(semester.Status) {
				continue
			}
			for _, sm := range semester.StudentModules {
				if excludedModule(sm.Status) {
					continue
				}
				if sm.SemesterModule == nil || sm.SemesterModule.Module == nil {
					return nil, appErrors.Clone(appErrors.ErrDataIntegrity, fmt.Sprintf("student module %d has no module reference", sm.ID))
				}
				marks, err := ParseMarks(sm.Marks)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrDataIntegrity.Code, appErrors.ErrDataIntegrity.Status,
						fmt.Sprintf("student module %d has invalid marks %q", sm.ID, sm.Marks))
				}
				module := sm.SemesterModule.Module
				records = append(records, models.AttemptRecord{
					ModuleID:       module.ID,
					ModuleName:     module.Name,
					ModuleCode:     module.Code,
					ModuleType:     sm.SemesterModule.Type,
					Credits:        sm.SemesterModule.Credits,
					Marks:          marks,
					Status:         sm.Status,
					SemesterNumber: semester.SemesterNumber,
					SemesterStatus: semester.Status,
					ProgramStatus:  program.Status,
				})
			}
		}
	}
	return records, nil
}

// ParseMarks parses a stored mark such as "62" or "48.5". Blank, non-numeric and
// out-of-range values are rejected rather than defaulted.
func ParseMarks(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("marks are blank")
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse marks: %w", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > 100 {
		return 0, fmt.Errorf("marks %v outside 0-100", value)
	}
	return value, nil
}

func excludedSemester(status models.SemesterStatus) bool {
	return status == models.SemesterStatusDeleted || status == models.SemesterStatusDeferred
}

func excludedModule(status models.ModuleStatus) bool {
	return status == models.ModuleStatusDelete || status == models.ModuleStatusDrop
}
