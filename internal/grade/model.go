package grade

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/student"
)

type Grade struct {
	bun.BaseModel `bun:"table:grades,alias:g"`

	ID            int              `bun:"id,pk,autoincrement" json:"id"`
	CourseID      int              `bun:"course_id,notnull" json:"courseId" validate:"required"`
	StudentID     int              `bun:"student_id,notnull" json:"studentId" validate:"required"`
	Label         string           `bun:"label,notnull" json:"label" validate:"required"`
	MarksObtained float64          `bun:"marks_obtained,notnull" json:"marksObtained" validate:"min=0,ltefield=TotalMarks"`
	TotalMarks    float64          `bun:"total_marks,notnull" json:"totalMarks" validate:"min=0"`
	Remarks       string           `bun:"remarks" json:"remarks"`
	Date          time.Time        `bun:"date,notnull" json:"date"`
	Course        *course.Course   `bun:"rel:belongs-to,join:course_id=id,on_delete:CASCADE" json:"course,omitempty"`
	Student       *student.Student `bun:"rel:belongs-to,join:student_id=id,on_delete:CASCADE" json:"student,omitempty"`
}

// Percentage is a convenience for report consumers; it is derived, never
// stored.
func (g *Grade) Percentage() float64 {
	if g.TotalMarks == 0 {
		return 0
	}
	return g.MarksObtained / g.TotalMarks * 100
}
