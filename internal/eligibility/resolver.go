package eligibility

import (
	"fmt"
	"strings"

	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

// Rule names the branch of the resolver that produced a decision.
type Rule string

const (
	RuleInternship       Rule = "internship"
	RuleRepeatSaturation Rule = "repeat_saturation"
	RuleStandard         Rule = "standard"
)

// Policy holds the institution constants used by the override rules.
type Policy struct {
	InternshipSemester int
	RepeatSaturation   int
}

// DefaultPolicy returns the registry's standing policy: diploma internship in semester 5 and
// repeat saturation at 3 outstanding modules.
func DefaultPolicy() Policy {
	return Policy{InternshipSemester: 5, RepeatSaturation: 3}
}

// Input is the snapshot the resolver decides on.
type Input struct {
	Program       *models.StudentProgram
	Semester      int
	TermSemester  int
	Records       []models.AttemptRecord
	Catalog       []models.ModuleCatalogEntry
	Prerequisites []models.Prerequisite
}

// Decision is the resolver outcome together with the rule that produced it.
type Decision struct {
	Rule     Rule
	Modules  []models.EligibleModule
	Repeats  []models.RepeatEntry
	Warnings map[string][]models.PrerequisiteWarning
}

// Resolver computes the modules offered to a student for a semester.
type Resolver struct {
	policy Policy
	rules  []rule
}

type rule struct {
	name    Rule
	applies func(*evaluation) bool
	offer   func(*evaluation) []models.EligibleModule
}

type evaluation struct {
	input    Input
	history  *History
	repeats  []models.RepeatEntry
	warnings map[string][]models.PrerequisiteWarning
}

// NewResolver builds a resolver. Zero policy fields fall back to DefaultPolicy.
func NewResolver(policy Policy) *Resolver {
	defaults := DefaultPolicy()
	if policy.InternshipSemester <= 0 {
		policy.InternshipSemester = defaults.InternshipSemester
	}
	if policy.RepeatSaturation <= 0 {
		policy.RepeatSaturation = defaults.RepeatSaturation
	}
	r := &Resolver{policy: policy}
	// Evaluated in order; the first applicable rule wins.
	r.rules = []rule{
		{name: RuleInternship, applies: r.internship, offer: repeatsOnly},
		{name: RuleRepeatSaturation, applies: r.saturated, offer: repeatsOnly},
		{name: RuleStandard, applies: func(*evaluation) bool { return true }, offer: standardOffer},
	}
	return r
}

// Policy returns the effective policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve decides the offered module list. It either returns a complete decision or an
// error; an empty module list is a valid decision.
func (r *Resolver) Resolve(in Input) (*Decision, error) {
	if in.Program == nil {
		return nil, appErrors.ErrNoActiveProgram
	}
	if in.Semester < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid semester %d", in.Semester))
	}
	eval := &evaluation{
		input:   in,
		history: ClassifyHistory(in.Records),
		repeats: RepeatModules(in.Records, in.TermSemester),
	}
	eval.warnings = ResolvePrerequisiteWarnings(in.Catalog, in.Semester, eval.history, in.Prerequisites)

	for _, rl := range r.rules {
		if !rl.applies(eval) {
			continue
		}
		return &Decision{Rule: rl.name, Modules: rl.offer(eval), Repeats: eval.repeats, Warnings: eval.warnings}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrInternal, "no eligibility rule applied")
}

// EvaluateRule reports whether a single named rule applies to the input, without resolving.
func (r *Resolver) EvaluateRule(name Rule, in Input) bool {
	eval := &evaluation{input: in, history: ClassifyHistory(in.Records), repeats: RepeatModules(in.Records, in.TermSemester)}
	for _, rl := range r.rules {
		if rl.name == name {
			return in.Program != nil && rl.applies(eval)
		}
	}
	return false
}

func (r *Resolver) internship(e *evaluation) bool {
	return strings.EqualFold(string(e.input.Program.Level), string(models.ProgramLevelDiploma)) &&
		e.input.Semester == r.policy.InternshipSemester &&
		len(e.repeats) > 0
}

func (r *Resolver) saturated(e *evaluation) bool {
	return len(e.repeats) >= r.policy.RepeatSaturation
}

func repeatsOnly(e *evaluation) []models.EligibleModule {
	modules := make([]models.EligibleModule, 0, len(e.repeats))
	for _, repeat := range e.repeats {
		modules = append(modules, fromRepeat(repeat))
	}
	return modules
}

func standardOffer(e *evaluation) []models.EligibleModule {
	modules := newModules(e)
	for _, repeat := range e.repeats {
		modules = append(modules, fromRepeat(repeat))
	}
	return modules
}

// newModules returns catalog entries up to the target semester whose name the student has
// never attempted.
func newModules(e *evaluation) []models.EligibleModule {
	modules := make([]models.EligibleModule, 0)
	offered := make(map[string]struct{})
	for _, entry := range e.input.Catalog {
		if entry.SemesterNumber > e.input.Semester {
			continue
		}
		key := nameKey(entry.Name)
		if _, dup := offered[key]; dup || e.history.Attempted(entry.Name) {
			continue
		}
		offered[key] = struct{}{}
		status := models.StatusCompulsory
		if entry.Type == models.ModuleTypeElective {
			status = models.StatusElective
		}
		warnings := e.warnings[entry.Code]
		if warnings == nil {
			warnings = []models.PrerequisiteWarning{}
		}
		modules = append(modules, models.EligibleModule{
			ModuleID:      entry.ModuleID,
			Code:          entry.Code,
			Name:          entry.Name,
			Type:          entry.Type,
			Credits:       entry.Credits,
			Status:        status,
			Prerequisites: warnings,
		})
	}
	return modules
}

func fromRepeat(repeat models.RepeatEntry) models.EligibleModule {
	return models.EligibleModule{
		ModuleID:      repeat.ModuleID,
		Code:          repeat.Code,
		Name:          repeat.Name,
		Type:          repeat.Type,
		Credits:       repeat.Credits,
		Status:        repeat.Status,
		Prerequisites: []models.PrerequisiteWarning{},
	}
}
