package access

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// newQueryDB builds a bun.DB purely for SQL rendering; nothing connects.
func newQueryDB() *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN("postgres://localhost:5432/render?sslmode=disable")))
	return bun.NewDB(sqldb, pgdialect.New())
}

func TestScopeCourses(t *testing.T) {
	db := newQueryDB()

	t.Run("admin is unrestricted", func(t *testing.T) {
		q := Unrestricted().Courses(db.NewSelect().Table("courses AS c"))
		assert.NotContains(t, q.String(), "faculty_id")
	})

	t.Run("faculty filters by ownership", func(t *testing.T) {
		q := ForFaculty(3).Courses(db.NewSelect().Table("courses AS c"))
		assert.Contains(t, q.String(), "c.faculty_id = 3")
	})

	t.Run("student filters by cohort", func(t *testing.T) {
		q := ForStudent(7, 2, 4).Courses(db.NewSelect().Table("courses AS c"))
		sql := q.String()
		assert.Contains(t, sql, "scls.program_id = 2")
		assert.Contains(t, sql, "scls.semester = 4")
	})
}

func TestScopeCourseContent(t *testing.T) {
	db := newQueryDB()

	t.Run("faculty joins through course ownership", func(t *testing.T) {
		q := ForFaculty(3).CourseContent(db.NewSelect().Table("assignments AS a"), "a")
		sql := q.String()
		assert.Contains(t, sql, "scrs.id = a.course_id")
		assert.Contains(t, sql, "scrs.faculty_id = 3")
	})

	t.Run("student joins through cohort, not student id", func(t *testing.T) {
		q := ForStudent(7, 2, 4).CourseContent(db.NewSelect().Table("assignments AS a"), "a")
		sql := q.String()
		assert.Contains(t, sql, "scls.program_id = 2")
		assert.Contains(t, sql, "scls.semester = 4")
		assert.NotContains(t, sql, "student_id")
	})
}

func TestScopeStudentRecords(t *testing.T) {
	db := newQueryDB()

	t.Run("student narrows to own rows", func(t *testing.T) {
		q := ForStudent(7, 2, 4).StudentRecords(db.NewSelect().Table("grades AS g"), "g")
		assert.Contains(t, q.String(), "g.student_id = 7")
	})

	t.Run("faculty narrows by course ownership", func(t *testing.T) {
		q := ForFaculty(3).StudentRecords(db.NewSelect().Table("grades AS g"), "g")
		assert.Contains(t, q.String(), "scrs.faculty_id = 3")
	})
}
