package models

// ProgramStatus represents the lifecycle of a student's program enrolment.
type ProgramStatus string

const (
	ProgramStatusActive    ProgramStatus = "Active"
	ProgramStatusCompleted ProgramStatus = "Completed"
	ProgramStatusChanged   ProgramStatus = "Changed"
	ProgramStatusDeleted   ProgramStatus = "Deleted"
	ProgramStatusInactive  ProgramStatus = "Inactive"
)

// SemesterStatus represents the state of a student's semester-of-study record.
type SemesterStatus string

const (
	SemesterStatusActive   SemesterStatus = "Active"
	SemesterStatusRepeat   SemesterStatus = "Repeat"
	SemesterStatusEnrolled SemesterStatus = "Enrolled"
	SemesterStatusDeleted  SemesterStatus = "Deleted"
	SemesterStatusDeferred SemesterStatus = "Deferred"
)

// ModuleStatus represents the registration status of a single student module.
type ModuleStatus string

const (
	ModuleStatusCompulsory ModuleStatus = "Compulsory"
	ModuleStatusElective   ModuleStatus = "Elective"
	ModuleStatusActive     ModuleStatus = "Active"
	ModuleStatusExempted   ModuleStatus = "Exempted"
	ModuleStatusDelete     ModuleStatus = "Delete"
	ModuleStatusDrop       ModuleStatus = "Drop"
)

// ProgramLevel is the qualification level of a program.
type ProgramLevel string

const (
	ProgramLevelCertificate ProgramLevel = "certificate"
	ProgramLevelDiploma     ProgramLevel = "diploma"
	ProgramLevelDegree      ProgramLevel = "degree"
)

// Student is the root of the academic graph loaded for eligibility decisions.
type Student struct {
	StdNo    int64            `db:"std_no" json:"std_no"`
	Name     string           `db:"name" json:"name"`
	Programs []StudentProgram `json:"programs"`
}

// StudentProgram is a program the student enrolled in, bound to a structure revision.
type StudentProgram struct {
	ID          int64             `db:"id" json:"id"`
	StdNo       int64             `db:"std_no" json:"std_no"`
	StructureID int64             `db:"structure_id" json:"structure_id"`
	ProgramCode string            `db:"program_code" json:"program_code"`
	ProgramName string            `db:"program_name" json:"program_name"`
	Level       ProgramLevel      `db:"level" json:"level"`
	Status      ProgramStatus     `db:"status" json:"status"`
	Semesters   []StudentSemester `json:"semesters"`
}

// StudentSemester is a semester-of-study the student was registered for.
type StudentSemester struct {
	ID               int64           `db:"id" json:"id"`
	StudentProgramID int64           `db:"student_program_id" json:"student_program_id"`
	Term             string          `db:"term" json:"term"`
	SemesterNumber   int             `db:"semester_number" json:"semester_number"`
	Status           SemesterStatus  `db:"status" json:"status"`
	StudentModules   []StudentModule `json:"student_modules"`
}

// StudentModule is a single module attempt inside a semester. Marks are kept as the raw
// stored string and parsed when the record is normalised.
type StudentModule struct {
	ID                int64           `db:"id" json:"id"`
	StudentSemesterID int64           `db:"student_semester_id" json:"student_semester_id"`
	Status            ModuleStatus    `db:"status" json:"status"`
	Marks             string          `db:"marks" json:"marks"`
	Grade             string          `db:"grade" json:"grade"`
	SemesterModule    *SemesterModule `json:"semester_module,omitempty"`
}

// SemesterModule places a module inside a structure semester.
type SemesterModule struct {
	ID      int64      `db:"id" json:"id"`
	Type    ModuleType `db:"type" json:"type"`
	Credits float64    `db:"credits" json:"credits"`
	Module  *Module    `json:"module,omitempty"`
}

// Module is the catalog-independent identity of a course.
type Module struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// ActiveProgram returns the first program with Active status, or nil.
func (s *Student) ActiveProgram() *StudentProgram {
	if s == nil {
		return nil
	}
	for i := range s.Programs {
		if s.Programs[i].Status == ProgramStatusActive {
			return &s.Programs[i]
		}
	}
	return nil
}
