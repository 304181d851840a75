package eligibility

import (
	"strings"

	"github.com/ntholi/registry-web/internal/models"
)

// ModuleHistory summarises every qualifying attempt of one module name.
type ModuleHistory struct {
	Name      string
	Latest    models.AttemptRecord
	Attempts  int
	FailCount int
	Passed    bool
}

// History is a name-keyed view of attempt records. Modules are keyed by name on purpose:
// structure revisions may re-code a module, and a pass under an old code must still count.
type History struct {
	order  []string
	byName map[string]*ModuleHistory
}

// ClassifyHistory scans all attempts and builds the pass/fail history per module name.
// A single pass marks the module passed for good and freezes its fail count.
func ClassifyHistory(records []models.AttemptRecord) *History {
	h := &History{byName: make(map[string]*ModuleHistory)}
	for _, record := range records {
		key := nameKey(record.ModuleName)
		entry, ok := h.byName[key]
		if !ok {
			entry = &ModuleHistory{Name: record.ModuleName}
			h.byName[key] = entry
			h.order = append(h.order, key)
		}
		entry.Attempts++
		entry.Latest = record
		if record.Passed() {
			entry.Passed = true
			continue
		}
		if !entry.Passed {
			entry.FailCount++
		}
	}
	return h
}

// Lookup returns the history of a module name.
func (h *History) Lookup(name string) (ModuleHistory, bool) {
	if h == nil {
		return ModuleHistory{}, false
	}
	entry, ok := h.byName[nameKey(name)]
	if !ok {
		return ModuleHistory{}, false
	}
	return *entry, true
}

// Attempted reports whether the module name appears anywhere in the history.
func (h *History) Attempted(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Satisfied reports whether the module name has at least one passing attempt.
func (h *History) Satisfied(name string) bool {
	entry, ok := h.Lookup(name)
	return ok && entry.Passed
}

// Modules returns module histories in first-seen order.
func (h *History) Modules() []ModuleHistory {
	if h == nil {
		return nil
	}
	modules := make([]ModuleHistory, 0, len(h.order))
	for _, key := range h.order {
		modules = append(modules, *h.byName[key])
	}
	return modules
}

// FailedInSemester lists failing attempts recorded in one semester number. It is a plain
// filter and ignores later retakes.
func FailedInSemester(records []models.AttemptRecord, semesterNo int) []models.FailedModule {
	failed := make([]models.FailedModule, 0)
	for _, record := range records {
		if record.SemesterNumber != semesterNo || record.Passed() {
			continue
		}
		failed = append(failed, models.FailedModule{Code: record.ModuleCode, Name: record.ModuleName, Marks: record.Marks})
	}
	return failed
}

func nameKey(name string) string {
	return strings.TrimSpace(name)
}
