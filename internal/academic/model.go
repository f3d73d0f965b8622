package academic

import (
	"github.com/uptrace/bun"
)

type School struct {
	bun.BaseModel `bun:"table:schools,alias:sch"`

	ID   int    `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name" validate:"required"`
}

type Department struct {
	bun.BaseModel `bun:"table:departments,alias:dep"`

	ID       int     `bun:"id,pk,autoincrement" json:"id"`
	Name     string  `bun:"name,notnull" json:"name" validate:"required"`
	SchoolID int     `bun:"school_id,notnull" json:"schoolId" validate:"required"`
	School   *School `bun:"rel:belongs-to,join:school_id=id,on_delete:CASCADE" json:"school,omitempty"`
}

type Program struct {
	bun.BaseModel `bun:"table:programs,alias:prg"`

	ID           int         `bun:"id,pk,autoincrement" json:"id"`
	Name         string      `bun:"name,notnull" json:"name" validate:"required"`
	DepartmentID int         `bun:"department_id,notnull" json:"departmentId" validate:"required"`
	Department   *Department `bun:"rel:belongs-to,join:department_id=id,on_delete:CASCADE" json:"department,omitempty"`
}

// Class is a (program, semester, academic year) cohort. The triple is unique;
// two classes never collide on it.
type Class struct {
	bun.BaseModel `bun:"table:classes,alias:cls"`

	ID           int      `bun:"id,pk,autoincrement" json:"id"`
	ProgramID    int      `bun:"program_id,notnull,unique:classes_program_semester_year" json:"programId" validate:"required"`
	Semester     int      `bun:"semester,notnull,unique:classes_program_semester_year" json:"semester" validate:"required,min=1"`
	AcademicYear string   `bun:"academic_year,notnull,unique:classes_program_semester_year" json:"academicYear" validate:"required"`
	Program      *Program `bun:"rel:belongs-to,join:program_id=id,on_delete:CASCADE" json:"program,omitempty"`
}
