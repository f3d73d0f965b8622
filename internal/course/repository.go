package course

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/access"
)

var ErrCourseNotFound = errors.New("course not found")

type Repository interface {
	Create(ctx context.Context, c *Course) (*Course, error)
	GetAll(ctx context.Context, scope access.Scope) ([]Course, error)
	GetByID(ctx context.Context, scope access.Scope, id int) (*Course, error)
	GetByFaculty(ctx context.Context, scope access.Scope, facultyID int) ([]Course, error)
	GetByProgramSemester(ctx context.Context, scope access.Scope, programID, semester int) ([]Course, error)
	CourseFacultyID(ctx context.Context, id int) (int, error)
	Update(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Course) (*Course, error) {
	_, err := r.db.NewInsert().Model(c).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetAll(ctx context.Context, scope access.Scope) ([]Course, error) {
	var courses []Course
	q := r.db.NewSelect().
		Model(&courses).
		Relation("Class").
		Relation("Faculty").
		Order("c.id")
	err := scope.Courses(q).Scan(ctx)
	return courses, err
}

// GetByID returns the course only when it is inside the caller's scope;
// out-of-scope courses are indistinguishable from missing ones.
func (r *repository) GetByID(ctx context.Context, scope access.Scope, id int) (*Course, error) {
	c := new(Course)
	q := r.db.NewSelect().
		Model(c).
		Relation("Class").
		Relation("Faculty").
		Where("c.id = ?", id)
	err := scope.Courses(q).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByFaculty lists the courses taught by a faculty member, intersected
// with the caller's scope.
func (r *repository) GetByFaculty(ctx context.Context, scope access.Scope, facultyID int) ([]Course, error) {
	var courses []Course
	q := r.db.NewSelect().
		Model(&courses).
		Relation("Class").
		Where("c.faculty_id = ?", facultyID).
		Order("c.id")
	err := scope.Courses(q).Scan(ctx)
	return courses, err
}

// GetByProgramSemester lists the courses offered to a (program, semester)
// cohort, intersected with the caller's scope.
func (r *repository) GetByProgramSemester(ctx context.Context, scope access.Scope, programID, semester int) ([]Course, error) {
	var courses []Course
	q := r.db.NewSelect().
		Model(&courses).
		Relation("Class").
		Relation("Faculty").
		Join("JOIN classes AS jcls ON jcls.id = c.class_id").
		Where("jcls.program_id = ?", programID).
		Where("jcls.semester = ?", semester).
		Order("c.id")
	err := scope.Courses(q).Scan(ctx)
	return courses, err
}

// CourseFacultyID resolves the teaching faculty of a course. Used by the
// ownership checks on content mutations.
func (r *repository) CourseFacultyID(ctx context.Context, id int) (int, error) {
	var facultyID int
	err := r.db.NewSelect().
		Model((*Course)(nil)).
		Column("c.faculty_id").
		Where("c.id = ?", id).
		Scan(ctx, &facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCourseNotFound
		}
		return 0, err
	}
	return facultyID, nil
}

func (r *repository) Update(ctx context.Context, c *Course) error {
	res, err := r.db.NewUpdate().
		Model(c).
		Column("name", "code", "class_id", "faculty_id").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Course{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
