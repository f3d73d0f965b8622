package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/access"
)

var ErrAttendanceNotFound = errors.New("attendance record not found")

type Repository interface {
	Create(ctx context.Context, a *Attendance) (*Attendance, error)
	BulkCreate(ctx context.Context, rows []Attendance) error
	GetAll(ctx context.Context, scope access.Scope) ([]Attendance, error)
	GetByID(ctx context.Context, scope access.Scope, id int) (*Attendance, error)
	GetByStudentCourse(ctx context.Context, scope access.Scope, studentID, courseID int, since time.Time) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Attendance) (*Attendance, error) {
	_, err := r.db.NewInsert().Model(a).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// BulkCreate inserts the whole batch as one multi-row statement. All rows
// commit or none do; a duplicate (course, student, date) triple anywhere in
// the batch aborts it.
func (r *repository) BulkCreate(ctx context.Context, rows []Attendance) error {
	_, err := r.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func (r *repository) GetAll(ctx context.Context, scope access.Scope) ([]Attendance, error) {
	var records []Attendance
	q := r.db.NewSelect().
		Model(&records).
		Order("att.date", "att.id")
	err := scope.StudentRecords(q, "att").Scan(ctx)
	return records, err
}

func (r *repository) GetByID(ctx context.Context, scope access.Scope, id int) (*Attendance, error) {
	a := new(Attendance)
	q := r.db.NewSelect().
		Model(a).
		Where("att.id = ?", id)
	err := scope.StudentRecords(q, "att").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByStudentCourse lists one student's marks for one course, optionally
// bounded below by since, intersected with the caller's scope.
func (r *repository) GetByStudentCourse(ctx context.Context, scope access.Scope, studentID, courseID int, since time.Time) ([]Attendance, error) {
	var records []Attendance
	q := r.db.NewSelect().
		Model(&records).
		Where("att.student_id = ?", studentID).
		Where("att.course_id = ?", courseID).
		Order("att.date")
	if !since.IsZero() {
		q = q.Where("att.date >= ?", since)
	}
	err := scope.StudentRecords(q, "att").Scan(ctx)
	return records, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	res, err := r.db.NewUpdate().
		Model(a).
		Column("present").
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
		return ErrAttendanceNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Attendance{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAttendanceNotFound
	}
	return nil
}
