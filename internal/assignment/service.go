package assignment

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/messaging"
	"github.com/notashwinii/kucms-backend/internal/storage"
)

// allowedExts is the attachment allow-list for assignments.
var allowedExts = []string{".pdf", ".doc", ".docx"}

// Upload is an optional attachment carried with an assignment.
type Upload struct {
	Filename string
	Data     io.Reader
}

// ActivityPublisher announces new content to interested consumers; nil-able.
type ActivityPublisher interface {
	SendMessage(value interface{}) error
}

type Service struct {
	repo   Repository
	owners *course.Authorizer
	files  *storage.Store
	events ActivityPublisher
	logger *slog.Logger
}

func NewService(repo Repository, owners *course.Authorizer, files *storage.Store, events ActivityPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		files:  files,
		events: events,
		logger: logger,
	}
}

func (s *Service) GetAll(ctx context.Context, scope access.Scope) ([]Assignment, error) {
	return s.repo.GetAll(ctx, scope)
}

func (s *Service) GetByID(ctx context.Context, scope access.Scope, id int) (*Assignment, error) {
	return s.repo.GetByID(ctx, scope, id)
}

// Create requires the principal to teach the assignment's course. The
// attachment is optional; when present its extension must be a document
// type.
func (s *Service) Create(ctx context.Context, p auth.Principal, a *Assignment, upload *Upload) (*Assignment, error) {
	if err := s.owners.RequireOwner(ctx, p, a.CourseID); err != nil {
		return nil, err
	}

	if upload != nil {
		url, err := s.files.Save("assignments", upload.Filename, upload.Data, allowedExts)
		if err != nil {
			return nil, err
		}
		a.FileURL = url
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	s.publish(messaging.ActivityEvent{
		Kind:       "assignment",
		CourseID:   created.CourseID,
		Title:      created.Title,
		OccurredAt: time.Now(),
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, a *Assignment) error {
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

// AddComment accepts any principal who can see the assignment.
func (s *Service) AddComment(ctx context.Context, scope access.Scope, p auth.Principal, assignmentID int, text string) (*Comment, error) {
	if _, err := s.repo.GetByID(ctx, scope, assignmentID); err != nil {
		return nil, err
	}
	return s.repo.CreateComment(ctx, &Comment{
		AssignmentID: assignmentID,
		UserID:       p.UserID,
		Comment:      text,
	})
}

func (s *Service) ListComments(ctx context.Context, scope access.Scope, assignmentID int) ([]Comment, error) {
	if _, err := s.repo.GetByID(ctx, scope, assignmentID); err != nil {
		return nil, err
	}
	return s.repo.GetComments(ctx, assignmentID)
}

func (s *Service) publish(event messaging.ActivityEvent) {
	if s.events == nil {
		return
	}
	// Notification fan-out is best-effort; a broker outage must not fail
	// the request.
	if err := s.events.SendMessage(event); err != nil {
		s.logger.Warn("failed to publish activity event", "kind", event.Kind, "error", err)
	}
}
