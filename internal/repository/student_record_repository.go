package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ntholi/registry-web/internal/models"
)

// StudentRecordRepository loads a student's academic history as a nested graph.
type StudentRecordRepository struct {
	db *sqlx.DB
}

// NewStudentRecordRepository instantiates the repository.
func NewStudentRecordRepository(db *sqlx.DB) *StudentRecordRepository {
	return &StudentRecordRepository{db: db}
}

// graphRow is one program/semester/module row of the flattened history join. Semester and
// module columns are nullable because a program may have no semesters yet.
type graphRow struct {
	ProgramID        int64           `db:"program_id"`
	StructureID      int64           `db:"structure_id"`
	ProgramCode      string          `db:"program_code"`
	ProgramName      string          `db:"program_name"`
	Level            string          `db:"level"`
	ProgramStatus    string          `db:"program_status"`
	SemesterID       sql.NullInt64   `db:"semester_id"`
	Term             sql.NullString  `db:"term"`
	SemesterNumber   sql.NullInt64   `db:"semester_number"`
	SemesterStatus   sql.NullString  `db:"semester_status"`
	StudentModuleID  sql.NullInt64   `db:"student_module_id"`
	ModuleStatus     sql.NullString  `db:"module_status"`
	Marks            sql.NullString  `db:"marks"`
	Grade            sql.NullString  `db:"grade"`
	SemesterModuleID sql.NullInt64   `db:"semester_module_id"`
	ModuleType       sql.NullString  `db:"module_type"`
	Credits          sql.NullFloat64 `db:"credits"`
	ModuleID         sql.NullInt64   `db:"module_id"`
	ModuleCode       sql.NullString  `db:"module_code"`
	ModuleName       sql.NullString  `db:"module_name"`
}

const academicGraphQuery = `SELECT sp.id AS program_id, sp.structure_id, p.code AS program_code, p.name AS program_name, p.level, sp.status AS program_status,
        ss.id AS semester_id, ss.term, ss.semester_number, ss.status AS semester_status,
        sm.id AS student_module_id, sm.status AS module_status, sm.marks, sm.grade,
        smo.id AS semester_module_id, smo.type AS module_type, smo.credits,
        m.id AS module_id, m.code AS module_code, m.name AS module_name
        FROM student_programs sp
        JOIN structures st ON st.id = sp.structure_id
        JOIN programs p ON p.id = st.program_id
        LEFT JOIN student_semesters ss ON ss.student_program_id = sp.id
        LEFT JOIN student_modules sm ON sm.student_semester_id = ss.id
        LEFT JOIN semester_modules smo ON smo.id = sm.semester_module_id
        LEFT JOIN modules m ON m.id = smo.module_id
        WHERE sp.std_no = $1
        ORDER BY sp.id, ss.semester_number, ss.id, sm.id`

// AcademicGraph returns the student with every program, semester and module attempt. It
// returns sql.ErrNoRows when the student does not exist.
func (r *StudentRecordRepository) AcademicGraph(ctx context.Context, stdNo int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, `SELECT std_no, name FROM students WHERE std_no = $1`, stdNo); err != nil {
		return nil, err
	}

	var rows []graphRow
	if err := r.db.SelectContext(ctx, &rows, academicGraphQuery, stdNo); err != nil {
		return nil, fmt.Errorf("load academic graph: %w", err)
	}

	student.Programs = buildPrograms(stdNo, rows)
	return &student, nil
}

// buildPrograms folds ordered join rows back into the nested graph, preserving row order.
func buildPrograms(stdNo int64, rows []graphRow) []models.StudentProgram {
	programs := make([]models.StudentProgram, 0)
	programIdx := make(map[int64]int)
	semesterIdx := make(map[int64]int)

	for _, row := range rows {
		pi, ok := programIdx[row.ProgramID]
		if !ok {
			programs = append(programs, models.StudentProgram{
				ID:          row.ProgramID,
				StdNo:       stdNo,
				StructureID: row.StructureID,
				ProgramCode: row.ProgramCode,
				ProgramName: row.ProgramName,
				Level:       models.ProgramLevel(row.Level),
				Status:      models.ProgramStatus(row.ProgramStatus),
				Semesters:   []models.StudentSemester{},
			})
			pi = len(programs) - 1
			programIdx[row.ProgramID] = pi
		}
		if !row.SemesterID.Valid {
			continue
		}

		program := &programs[pi]
		si, ok := semesterIdx[row.SemesterID.Int64]
		if !ok {
			program.Semesters = append(program.Semesters, models.StudentSemester{
				ID:               row.SemesterID.Int64,
				StudentProgramID: row.ProgramID,
				Term:             row.Term.String,
				SemesterNumber:   int(row.SemesterNumber.Int64),
				Status:           models.SemesterStatus(row.SemesterStatus.String),
				StudentModules:   []models.StudentModule{},
			})
			si = len(program.Semesters) - 1
			semesterIdx[row.SemesterID.Int64] = si
		}
		if !row.StudentModuleID.Valid {
			continue
		}

		module := models.StudentModule{
			ID:                row.StudentModuleID.Int64,
			StudentSemesterID: row.SemesterID.Int64,
			Status:            models.ModuleStatus(row.ModuleStatus.String),
			Marks:             row.Marks.String,
			Grade:             row.Grade.String,
		}
		if row.SemesterModuleID.Valid {
			module.SemesterModule = &models.SemesterModule{
				ID:      row.SemesterModuleID.Int64,
				Type:    models.ModuleType(row.ModuleType.String),
				Credits: row.Credits.Float64,
			}
			if row.ModuleID.Valid {
				module.SemesterModule.Module = &models.Module{
					ID:   row.ModuleID.Int64,
					Code: row.ModuleCode.String,
					Name: row.ModuleName.String,
				}
			}
		}
		program.Semesters[si].StudentModules = append(program.Semesters[si].StudentModules, module)
	}
	return programs
}
