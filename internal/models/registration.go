package models

import "fmt"

// PassMark is the minimum mark for a module attempt to count as passed.
const PassMark = 50.0

// Registration statuses assigned to offered modules.
const (
	StatusCompulsory = "Compulsory"
	StatusElective   = "Elective"
	StatusRepeat     = "Repeat"
)

// RepeatStatus renders the attempt-indexed repeat label, e.g. Repeat2.
func RepeatStatus(failCount int) string {
	return fmt.Sprintf("%s%d", StatusRepeat, failCount)
}

// AttemptRecord is one flattened module attempt from a student's history.
type AttemptRecord struct {
	ModuleID       int64          `json:"module_id"`
	ModuleName     string         `json:"module_name"`
	ModuleCode     string         `json:"module_code"`
	ModuleType     ModuleType     `json:"module_type"`
	Credits        float64        `json:"credits"`
	Marks          float64        `json:"marks"`
	Status         ModuleStatus   `json:"status"`
	SemesterNumber int            `json:"semester_number"`
	SemesterStatus SemesterStatus `json:"semester_status"`
	ProgramStatus  ProgramStatus  `json:"program_status"`
}

// Passed reports whether the attempt reached the pass mark.
func (a AttemptRecord) Passed() bool {
	return a.Marks >= PassMark
}

// FailedModule is a failing attempt found by the remain-in-semester check.
type FailedModule struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Marks float64 `json:"marks"`
}

// RemainCheck reports whether a student must remain in a semester.
type RemainCheck struct {
	StdNo         int64          `json:"std_no"`
	Semester      int            `json:"semester"`
	FailedModules []FailedModule `json:"failed_modules"`
	Threshold     int            `json:"threshold"`
	Remain        bool           `json:"remain"`
}

// RepeatEntry is a module the student has to repeat.
type RepeatEntry struct {
	ModuleID int64      `json:"module_id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Type     ModuleType `json:"type"`
	Credits  float64    `json:"credits"`
	Status   string     `json:"status"`
}

// PrerequisiteWarning flags a dependent module whose prerequisite is unsatisfied.
type PrerequisiteWarning struct {
	ModuleCode       string `json:"module_code"`
	PrerequisiteCode string `json:"prerequisite_code"`
	Failed           bool   `json:"failed"`
}

// EligibleModule is a module offered to the student for the next semester.
type EligibleModule struct {
	ModuleID      int64                 `json:"module_id"`
	Code          string                `json:"code"`
	Name          string                `json:"name"`
	Type          ModuleType            `json:"type"`
	Credits       float64               `json:"credits"`
	Status        string                `json:"status"`
	Prerequisites []PrerequisiteWarning `json:"prerequisites"`
}

// SelectedModule is a module picked in a registration form or simulator.
type SelectedModule struct {
	ModuleID   int64 `json:"module_id"`
	SemesterNo int   `json:"semester_no" validate:"gte=1"`
}

// SemesterStatusResult is the semester a selection represents and its label.
type SemesterStatusResult struct {
	SemesterNo int    `json:"semester_no"`
	Status     string `json:"status"`
}
