package grade

import (
	"context"
	"log/slog"
	"time"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
)

// BulkRecord is one student's result inside a bulk submission.
type BulkRecord struct {
	StudentID     int     `json:"student_id" validate:"required"`
	MarksObtained float64 `json:"marks_obtained" validate:"min=0,ltefield=TotalMarks"`
	TotalMarks    float64 `json:"total_marks" validate:"min=0"`
	Remarks       string  `json:"remarks"`
}

type Service struct {
	repo   Repository
	owners *course.Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, owners *course.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, owners: owners, logger: logger}
}

func (s *Service) GetAll(ctx context.Context, scope access.Scope) ([]Grade, error) {
	return s.repo.GetAll(ctx, scope)
}

func (s *Service) GetByID(ctx context.Context, scope access.Scope, id int) (*Grade, error) {
	return s.repo.GetByID(ctx, scope, id)
}

func (s *Service) Create(ctx context.Context, p auth.Principal, g *Grade) (*Grade, error) {
	if err := s.owners.RequireOwner(ctx, p, g.CourseID); err != nil {
		return nil, err
	}
	if g.Date.IsZero() {
		g.Date = today()
	}
	return s.repo.Create(ctx, g)
}

// BulkCreate records one label's results for a whole class in a single
// atomic batch. An omitted date defaults to today.
func (s *Service) BulkCreate(ctx context.Context, p auth.Principal, courseID int, label string, date time.Time, records []BulkRecord) (int, error) {
	if err := s.owners.RequireOwner(ctx, p, courseID); err != nil {
		return 0, err
	}
	if date.IsZero() {
		date = today()
	}

	rows := make([]Grade, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Grade{
			CourseID:      courseID,
			StudentID:     rec.StudentID,
			Label:         label,
			MarksObtained: rec.MarksObtained,
			TotalMarks:    rec.TotalMarks,
			Remarks:       rec.Remarks,
			Date:          date,
		})
	}
	if err := s.repo.BulkCreate(ctx, rows); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "grades recorded", "course_id", courseID, "label", label, "rows", len(rows))
	return len(rows), nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, g *Grade) error {
	existing, err := s.repo.GetByID(ctx, access.Unrestricted(), g.ID)
	if err != nil {
		return err
	}
	if err := s.owners.RequireOwner(ctx, p, existing.CourseID); err != nil {
		return err
	}
	return s.repo.Update(ctx, g)
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

func today() time.Time {
	return time.Now().Truncate(24 * time.Hour)
}
