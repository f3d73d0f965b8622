package assignment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/access"
)

var ErrAssignmentNotFound = errors.New("assignment not found")

type Repository interface {
	Create(ctx context.Context, a *Assignment) (*Assignment, error)
	GetAll(ctx context.Context, scope access.Scope) ([]Assignment, error)
	GetByID(ctx context.Context, scope access.Scope, id int) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, id int) error
	CreateComment(ctx context.Context, c *Comment) (*Comment, error)
	GetComments(ctx context.Context, assignmentID int) ([]Comment, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Assignment) (*Assignment, error) {
	_, err := r.db.NewInsert().Model(a).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repository) GetAll(ctx context.Context, scope access.Scope) ([]Assignment, error) {
	var assignments []Assignment
	q := r.db.NewSelect().
		Model(&assignments).
		Relation("Course").
		Order("a.id")
	err := scope.CourseContent(q, "a").Scan(ctx)
	return assignments, err
}

func (r *repository) GetByID(ctx context.Context, scope access.Scope, id int) (*Assignment, error) {
	a := new(Assignment)
	q := r.db.NewSelect().
		Model(a).
		Relation("Course").
		Where("a.id = ?", id)
	err := scope.CourseContent(q, "a").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return a, nil
}

// Update never touches created_at or the attachment.
func (r *repository) Update(ctx context.Context, a *Assignment) error {
	res, err := r.db.NewUpdate().
		Model(a).
		Column("title", "description", "due_date").
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
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Assignment{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *repository) CreateComment(ctx context.Context, c *Comment) (*Comment, error) {
	_, err := r.db.NewInsert().Model(c).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetComments(ctx context.Context, assignmentID int) ([]Comment, error) {
	var comments []Comment
	err := r.db.NewSelect().
		Model(&comments).
		Relation("User").
		Where("ac.assignment_id = ?", assignmentID).
		Order("ac.created_at").
		Scan(ctx)
	return comments, err
}
