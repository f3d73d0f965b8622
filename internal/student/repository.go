package student

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/user"
)

var ErrStudentNotFound = errors.New("student not found")

type Repository interface {
	Create(ctx context.Context, s *Student) (*Student, error)
	CreateWithUser(ctx context.Context, u *user.User, s *Student) error
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByUserID(ctx context.Context, userID int) (*Student, error)
	ScopeByUser(ctx context.Context, userID int) (studentID, programID, semester int, err error)
	InfoByID(ctx context.Context, id int) (userID, programID, semester int, err error)
	Update(ctx context.Context, s *Student) error
	Delete(ctx context.Context, id int) error
	AdvanceSemesters(ctx context.Context) (int, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Student) (*Student, error) {
	_, err := r.db.NewInsert().Model(s).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateWithUser creates the user account and the student profile as one
// linked pair. The pair commits or rolls back together; callers importing
// many rows invoke this per row.
func (r *repository) CreateWithUser(ctx context.Context, u *user.User, s *Student) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(u).Returning("*").Exec(ctx); err != nil {
			return err
		}
		s.UserID = u.ID
		if _, err := tx.NewInsert().Model(s).Returning("*").Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}

func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	var students []Student
	err := r.db.NewSelect().
		Model(&students).
		Relation("User").
		Relation("Program").
		Order("s.id").
		Scan(ctx)
	return students, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Student, error) {
	s := new(Student)
	err := r.db.NewSelect().
		Model(s).
		Relation("User").
		Relation("Program").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Student, error) {
	s := new(Student)
	err := r.db.NewSelect().
		Model(s).
		Relation("User").
		Relation("Program").
		Where("s.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s, nil
}

// ScopeByUser resolves the visibility anchors of a student principal for the
// access-scoping engine.
func (r *repository) ScopeByUser(ctx context.Context, userID int) (int, int, int, error) {
	s := new(Student)
	err := r.db.NewSelect().
		Model(s).
		Column("s.id", "s.program_id", "s.current_semester").
		Where("s.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, 0, ErrStudentNotFound
		}
		return 0, 0, 0, err
	}
	return s.ID, s.ProgramID, s.CurrentSemester, nil
}

// InfoByID returns the owning user and program/semester anchors of a student
// row. Used by the course listing endpoints.
func (r *repository) InfoByID(ctx context.Context, id int) (int, int, int, error) {
	s := new(Student)
	err := r.db.NewSelect().
		Model(s).
		Column("s.user_id", "s.program_id", "s.current_semester").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, 0, ErrStudentNotFound
		}
		return 0, 0, 0, err
	}
	return s.UserID, s.ProgramID, s.CurrentSemester, nil
}

func (r *repository) Update(ctx context.Context, s *Student) error {
	res, err := r.db.NewUpdate().
		Model(s).
		Column("registration_number", "program_id", "current_semester").
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
		return ErrStudentNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Student{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// AdvanceSemesters increments current_semester for every student whose user
// account is active, as one set-based update. There is deliberately no
// read-then-write loop here; the single statement avoids racing a concurrent
// rollover at the row level. Whole-operation double invocation is not
// guarded against.
func (r *repository) AdvanceSemesters(ctx context.Context) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*Student)(nil)).
		Set("current_semester = current_semester + 1").
		Where("user_id IN (SELECT id FROM users WHERE is_active = TRUE)").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}
