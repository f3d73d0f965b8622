package faculty

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

var ErrFacultyNotFound = errors.New("faculty not found")

type Repository interface {
	Create(ctx context.Context, f *Faculty) (*Faculty, error)
	GetAll(ctx context.Context) ([]Faculty, error)
	GetByID(ctx context.Context, id int) (*Faculty, error)
	GetByUserID(ctx context.Context, userID int) (*Faculty, error)
	FacultyIDByUser(ctx context.Context, userID int) (int, error)
	UserIDByFaculty(ctx context.Context, facultyID int) (int, error)
	Update(ctx context.Context, f *Faculty) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Faculty) (*Faculty, error) {
	_, err := r.db.NewInsert().Model(f).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Faculty, error) {
	var faculty []Faculty
	err := r.db.NewSelect().
		Model(&faculty).
		Relation("User").
		Relation("Department").
		Order("f.id").
		Scan(ctx)
	return faculty, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Faculty, error) {
	f := new(Faculty)
	err := r.db.NewSelect().
		Model(f).
		Relation("User").
		Relation("Department").
		Where("f.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Faculty, error) {
	f := new(Faculty)
	err := r.db.NewSelect().
		Model(f).
		Relation("User").
		Relation("Department").
		Where("f.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}
	return f, nil
}

// FacultyIDByUser resolves a principal's faculty record id. Used by the
// access-scoping engine.
func (r *repository) FacultyIDByUser(ctx context.Context, userID int) (int, error) {
	var id int
	err := r.db.NewSelect().
		Model((*Faculty)(nil)).
		Column("f.id").
		Where("f.user_id = ?", userID).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrFacultyNotFound
		}
		return 0, err
	}
	return id, nil
}

// UserIDByFaculty resolves the owning user of a faculty row. Used by the
// course listing endpoints.
func (r *repository) UserIDByFaculty(ctx context.Context, facultyID int) (int, error) {
	var userID int
	err := r.db.NewSelect().
		Model((*Faculty)(nil)).
		Column("f.user_id").
		Where("f.id = ?", facultyID).
		Scan(ctx, &userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrFacultyNotFound
		}
		return 0, err
	}
	return userID, nil
}

func (r *repository) Update(ctx context.Context, f *Faculty) error {
	res, err := r.db.NewUpdate().
		Model(f).
		Column("department_id", "rank").
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
		return ErrFacultyNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Faculty{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrFacultyNotFound
	}
	return nil
}
