package eligibility

import "github.com/ntholi/registry-web/internal/models"

// ResolvePrerequisiteWarnings flags dependent modules whose prerequisite sits in an earlier
// semester (1..semester-1) of the catalog and has not been passed. A prerequisite that was
// never attempted counts as unsatisfied. Warnings are keyed by the dependent module code and
// never remove a module from eligibility.
func ResolvePrerequisiteWarnings(catalog []models.ModuleCatalogEntry, semester int, history *History, relation []models.Prerequisite) map[string][]models.PrerequisiteWarning {
	unsatisfied := make(map[string]struct{})
	for _, entry := range catalog {
		if entry.SemesterNumber >= semester {
			continue
		}
		if !history.Satisfied(entry.Name) {
			unsatisfied[entry.Code] = struct{}{}
		}
	}

	warnings := make(map[string][]models.PrerequisiteWarning)
	seen := make(map[models.Prerequisite]struct{})
	for _, pair := range relation {
		if _, ok := unsatisfied[pair.PrerequisiteCode]; !ok {
			continue
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		warnings[pair.ModuleCode] = append(warnings[pair.ModuleCode], models.PrerequisiteWarning{
			ModuleCode:       pair.ModuleCode,
			PrerequisiteCode: pair.PrerequisiteCode,
			Failed:           true,
		})
	}
	return warnings
}
