package note

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/access"
)

var ErrNoteNotFound = errors.New("note not found")

type Repository interface {
	Create(ctx context.Context, n *Note) (*Note, error)
	GetAll(ctx context.Context, scope access.Scope) ([]Note, error)
	GetByID(ctx context.Context, scope access.Scope, id int) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Note) (*Note, error) {
	_, err := r.db.NewInsert().Model(n).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *repository) GetAll(ctx context.Context, scope access.Scope) ([]Note, error) {
	var notes []Note
	q := r.db.NewSelect().
		Model(&notes).
		Relation("Course").
		Order("n.id")
	err := scope.CourseContent(q, "n").Scan(ctx)
	return notes, err
}

func (r *repository) GetByID(ctx context.Context, scope access.Scope, id int) (*Note, error) {
	n := new(Note)
	q := r.db.NewSelect().
		Model(n).
		Relation("Course").
		Where("n.id = ?", id)
	err := scope.CourseContent(q, "n").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *repository) Update(ctx context.Context, n *Note) error {
	res, err := r.db.NewUpdate().
		Model(n).
		Column("title", "description").
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
		return ErrNoteNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Note{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
