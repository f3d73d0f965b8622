package course

import (
	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/faculty"
)

// Course is a taught offering: a subject assigned to one faculty member for
// one class cohort.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID        int              `bun:"id,pk,autoincrement" json:"id"`
	Name      string           `bun:"name,notnull" json:"name" validate:"required"`
	Code      string           `bun:"code,unique,notnull" json:"code" validate:"required"`
	ClassID   int              `bun:"class_id,notnull" json:"classId" validate:"required"`
	FacultyID int              `bun:"faculty_id,notnull" json:"facultyId" validate:"required"`
	Class     *academic.Class  `bun:"rel:belongs-to,join:class_id=id,on_delete:CASCADE" json:"class,omitempty"`
	Faculty   *faculty.Faculty `bun:"rel:belongs-to,join:faculty_id=id,on_delete:CASCADE" json:"faculty,omitempty"`
}
