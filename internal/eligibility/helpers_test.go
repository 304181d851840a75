package eligibility

import (
	"fmt"

	"github.com/ntholi/registry-web/internal/models"
)

func attempt(name, code string, semester int, marks float64) models.AttemptRecord {
	return models.AttemptRecord{
		ModuleID:       int64(len(name) + semester),
		ModuleName:     name,
		ModuleCode:     code,
		ModuleType:     models.ModuleTypeCore,
		Credits:        12,
		Marks:          marks,
		Status:         models.ModuleStatusCompulsory,
		SemesterNumber: semester,
		SemesterStatus: models.SemesterStatusActive,
		ProgramStatus:  models.ProgramStatusActive,
	}
}

func catalogEntry(id int64, code, name string, semester int) models.ModuleCatalogEntry {
	return models.ModuleCatalogEntry{ModuleID: id, Code: code, Name: name, Type: models.ModuleTypeCore, Credits: 12, SemesterNumber: semester}
}

func studentModule(id int64, name, code, marks string, status models.ModuleStatus) models.StudentModule {
	return models.StudentModule{
		ID:     id,
		Status: status,
		Marks:  marks,
		SemesterModule: &models.SemesterModule{
			ID:      id * 10,
			Type:    models.ModuleTypeCore,
			Credits: 10,
			Module:  &models.Module{ID: id * 100, Code: code, Name: name},
		},
	}
}

func failingAttempts(count, semester int) []models.AttemptRecord {
	records := make([]models.AttemptRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, attempt(fmt.Sprintf("Failed Module %d", i+1), fmt.Sprintf("FM%d", i+1), semester, 30))
	}
	return records
}

func names(modules []models.EligibleModule) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Name)
	}
	return out
}
