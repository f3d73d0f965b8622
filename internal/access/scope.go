// Package access implements the role-based visibility rules shared by the
// course and course-content endpoints. A principal's role resolves to a
// Scope, and repositories apply the scope to their queries so that rows
// outside it behave exactly like rows that do not exist.
package access

import (
	"fmt"

	"github.com/uptrace/bun"
)

// Scope is the visibility window of a principal. Admins are unrestricted.
// Faculty see rows tied to courses they teach. Students see rows tied to
// courses in their program and current semester, and for per-student records
// only their own rows.
type Scope struct {
	Admin     bool
	FacultyID int
	StudentID int
	ProgramID int
	Semester  int
}

func Unrestricted() Scope {
	return Scope{Admin: true}
}

func ForFaculty(facultyID int) Scope {
	return Scope{FacultyID: facultyID}
}

func ForStudent(studentID, programID, semester int) Scope {
	return Scope{StudentID: studentID, ProgramID: programID, Semester: semester}
}

// Courses narrows a select over the courses table (alias c).
func (s Scope) Courses(q *bun.SelectQuery) *bun.SelectQuery {
	if s.Admin {
		return q
	}
	if s.FacultyID != 0 {
		return q.Where("c.faculty_id = ?", s.FacultyID)
	}
	return q.
		Join("JOIN classes AS scls ON scls.id = c.class_id").
		Where("scls.program_id = ?", s.ProgramID).
		Where("scls.semester = ?", s.Semester)
}

// CourseContent narrows a select over a table that carries a course_id
// column under the given alias. Used for assignments, notes and
// announcements, where students see everything published to their cohort's
// courses.
func (s Scope) CourseContent(q *bun.SelectQuery, alias string) *bun.SelectQuery {
	if s.Admin {
		return q
	}
	q = q.Join(fmt.Sprintf("JOIN courses AS scrs ON scrs.id = %s.course_id", alias))
	if s.FacultyID != 0 {
		return q.Where("scrs.faculty_id = ?", s.FacultyID)
	}
	return q.
		Join("JOIN classes AS scls ON scls.id = scrs.class_id").
		Where("scls.program_id = ?", s.ProgramID).
		Where("scls.semester = ?", s.Semester)
}

// StudentRecords narrows a select over a table carrying both course_id and
// student_id under the given alias. Used for attendance and grades, where a
// student sees only their own rows.
func (s Scope) StudentRecords(q *bun.SelectQuery, alias string) *bun.SelectQuery {
	if s.Admin {
		return q
	}
	if s.FacultyID != 0 {
		return q.
			Join(fmt.Sprintf("JOIN courses AS scrs ON scrs.id = %s.course_id", alias)).
			Where("scrs.faculty_id = ?", s.FacultyID)
	}
	return q.Where(fmt.Sprintf("%s.student_id = ?", alias), s.StudentID)
}
