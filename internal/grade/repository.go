package grade

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/access"
)

var ErrGradeNotFound = errors.New("grade not found")

type Repository interface {
	Create(ctx context.Context, g *Grade) (*Grade, error)
	BulkCreate(ctx context.Context, rows []Grade) error
	GetAll(ctx context.Context, scope access.Scope) ([]Grade, error)
	GetByID(ctx context.Context, scope access.Scope, id int) (*Grade, error)
	Update(ctx context.Context, g *Grade) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Grade) (*Grade, error) {
	_, err := r.db.NewInsert().Model(g).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// BulkCreate inserts the whole batch as one multi-row statement; all rows
// commit or none do.
func (r *repository) BulkCreate(ctx context.Context, rows []Grade) error {
	_, err := r.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func (r *repository) GetAll(ctx context.Context, scope access.Scope) ([]Grade, error) {
	var grades []Grade
	q := r.db.NewSelect().
		Model(&grades).
		Order("g.date", "g.id")
	err := scope.StudentRecords(q, "g").Scan(ctx)
	return grades, err
}

func (r *repository) GetByID(ctx context.Context, scope access.Scope, id int) (*Grade, error) {
	g := new(Grade)
	q := r.db.NewSelect().
		Model(g).
		Where("g.id = ?", id)
	err := scope.StudentRecords(q, "g").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGradeNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *repository) Update(ctx context.Context, g *Grade) error {
	res, err := r.db.NewUpdate().
		Model(g).
		Column("label", "marks_obtained", "total_marks", "remarks", "date").
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
		return ErrGradeNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Grade{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrGradeNotFound
	}
	return nil
}
