package announcement

import (
	"context"
	"log/slog"
	"time"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/messaging"
)

// ActivityPublisher announces new content to interested consumers; nil-able.
type ActivityPublisher interface {
	SendMessage(value interface{}) error
}

type Service struct {
	repo   Repository
	owners *course.Authorizer
	events ActivityPublisher
	logger *slog.Logger
}

func NewService(repo Repository, owners *course.Authorizer, events ActivityPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		events: events,
		logger: logger,
	}
}

func (s *Service) GetAll(ctx context.Context, scope access.Scope) ([]Announcement, error) {
	return s.repo.GetAll(ctx, scope)
}

func (s *Service) GetByID(ctx context.Context, scope access.Scope, id int) (*Announcement, error) {
	return s.repo.GetByID(ctx, scope, id)
}

func (s *Service) Create(ctx context.Context, p auth.Principal, a *Announcement) (*Announcement, error) {
	if err := s.owners.RequireOwner(ctx, p, a.CourseID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	s.publish(messaging.ActivityEvent{
		Kind:       "announcement",
		CourseID:   created.CourseID,
		Title:      created.Title,
		OccurredAt: time.Now(),
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, a *Announcement) error {
	existing, err := s.repo.GetByID(ctx, access.Unrestricted(), a.ID)
	if err != nil {
		return err
	}
	if err := s.owners.RequireOwner(ctx, p, existing.CourseID); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id int) error {
	existing, err := s.repo.GetByID(ctx, access.Unrestricted(), id)
	if err != nil {
		return err
	}
	if err := s.owners.RequireOwner(ctx, p, existing.CourseID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddComment accepts any principal who can see the announcement.
func (s *Service) AddComment(ctx context.Context, scope access.Scope, p auth.Principal, announcementID int, text string) (*Comment, error) {
	if _, err := s.repo.GetByID(ctx, scope, announcementID); err != nil {
		return nil, err
	}
	return s.repo.CreateComment(ctx, &Comment{
		AnnouncementID: announcementID,
		UserID:         p.UserID,
		Comment:        text,
	})
}

func (s *Service) ListComments(ctx context.Context, scope access.Scope, announcementID int) ([]Comment, error) {
	if _, err := s.repo.GetByID(ctx, scope, announcementID); err != nil {
		return nil, err
	}
	return s.repo.GetComments(ctx, announcementID)
}

func (s *Service) publish(event messaging.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.SendMessage(event); err != nil {
		s.logger.Warn("failed to publish activity event", "kind", event.Kind, "error", err)
	}
}
