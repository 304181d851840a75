package models

// ModuleType classifies a module within a structure semester.
type ModuleType string

const (
	ModuleTypeCore     ModuleType = "Core"
	ModuleTypeMajor    ModuleType = "Major"
	ModuleTypeMinor    ModuleType = "Minor"
	ModuleTypeElective ModuleType = "Elective"
	ModuleTypeDelete   ModuleType = "Delete"
)

// ModuleCatalogEntry is one module offered in a structure's semester-of-study.
type ModuleCatalogEntry struct {
	ModuleID       int64      `db:"module_id" json:"module_id"`
	Code           string     `db:"code" json:"code"`
	Name           string     `db:"name" json:"name"`
	Type           ModuleType `db:"type" json:"type"`
	Credits        float64    `db:"credits" json:"credits"`
	SemesterNumber int        `db:"semester_number" json:"semester_number"`
}

// Prerequisite declares that ModuleCode requires PrerequisiteCode to be passed first.
type Prerequisite struct {
	ModuleCode       string `db:"module_code" json:"module_code"`
	PrerequisiteCode string `db:"prerequisite_code" json:"prerequisite_code"`
}
