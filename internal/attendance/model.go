package attendance

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/student"
)

// Attendance is one student's presence mark for one course on one day. The
// (course, student, date) triple is unique; marking the same day twice is a
// conflict, not an upsert.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance,alias:att"`

	ID        int              `bun:"id,pk,autoincrement" json:"id"`
	CourseID  int              `bun:"course_id,notnull,unique:attendance_course_student_date" json:"courseId" validate:"required"`
	StudentID int              `bun:"student_id,notnull,unique:attendance_course_student_date" json:"studentId" validate:"required"`
	Date      time.Time        `bun:"date,notnull,unique:attendance_course_student_date" json:"date" validate:"required"`
	Present   bool             `bun:"present,notnull" json:"present"`
	Course    *course.Course   `bun:"rel:belongs-to,join:course_id=id,on_delete:CASCADE" json:"course,omitempty"`
	Student   *student.Student `bun:"rel:belongs-to,join:student_id=id,on_delete:CASCADE" json:"student,omitempty"`
}
