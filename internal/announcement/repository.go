package announcement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/access"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

type Repository interface {
	Create(ctx context.Context, a *Announcement) (*Announcement, error)
	GetAll(ctx context.Context, scope access.Scope) ([]Announcement, error)
	GetByID(ctx context.Context, scope access.Scope, id int) (*Announcement, error)
	Update(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, id int) error
	CreateComment(ctx context.Context, c *Comment) (*Comment, error)
	GetComments(ctx context.Context, announcementID int) ([]Comment, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Announcement) (*Announcement, error) {
	_, err := r.db.NewInsert().Model(a).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repository) GetAll(ctx context.Context, scope access.Scope) ([]Announcement, error) {
	var announcements []Announcement
	q := r.db.NewSelect().
		Model(&announcements).
		Relation("Course").
		Order("ann.id")
	err := scope.CourseContent(q, "ann").Scan(ctx)
	return announcements, err
}

func (r *repository) GetByID(ctx context.Context, scope access.Scope, id int) (*Announcement, error) {
	a := new(Announcement)
	q := r.db.NewSelect().
		Model(a).
		Relation("Course").
		Where("ann.id = ?", id)
	err := scope.CourseContent(q, "ann").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, a *Announcement) error {
	res, err := r.db.NewUpdate().
		Model(a).
		Column("title", "content").
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
		return ErrAnnouncementNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Announcement{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAnnouncementNotFound
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

func (r *repository) GetComments(ctx context.Context, announcementID int) ([]Comment, error) {
	var comments []Comment
	err := r.db.NewSelect().
		Model(&comments).
		Relation("User").
		Where("anc.announcement_id = ?", announcementID).
		Order("anc.created_at").
		Scan(ctx)
	return comments, err
}
