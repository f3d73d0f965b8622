package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
)

var ErrInvalidPeriod = errors.New("period must be all or month")

// BulkRecord is one student's mark inside a bulk submission.
type BulkRecord struct {
	StudentID int  `json:"student_id" validate:"required"`
	Present   bool `json:"present"`
}

// Report is the per-course attendance summary for one student.
type Report struct {
	StudentID int          `json:"studentId"`
	CourseID  int          `json:"courseId"`
	Total     int          `json:"total"`
	Present   int          `json:"present"`
	Absent    int          `json:"absent"`
	Records   []Attendance `json:"records"`
}

type Service struct {
	repo   Repository
	owners *course.Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, owners *course.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, owners: owners, logger: logger}
}

func (s *Service) GetAll(ctx context.Context, scope access.Scope) ([]Attendance, error) {
	return s.repo.GetAll(ctx, scope)
}

func (s *Service) GetByID(ctx context.Context, scope access.Scope, id int) (*Attendance, error) {
	return s.repo.GetByID(ctx, scope, id)
}

// Create records a single mark; only the course's teacher (or an admin) may
// write it.
func (s *Service) Create(ctx context.Context, p auth.Principal, a *Attendance) (*Attendance, error) {
	if err := s.owners.RequireOwner(ctx, p, a.CourseID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, a)
}

// BulkCreate records one day's marks for a whole class in a single atomic
// batch. The ownership check runs before any row is built, so a rejected
// principal inserts zero rows.
func (s *Service) BulkCreate(ctx context.Context, p auth.Principal, courseID int, date time.Time, records []BulkRecord) (int, error) {
	if err := s.owners.RequireOwner(ctx, p, courseID); err != nil {
		return 0, err
	}

	rows := make([]Attendance, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Attendance{
			CourseID:  courseID,
			StudentID: rec.StudentID,
			Date:      date,
			Present:   rec.Present,
		})
	}
	if err := s.repo.BulkCreate(ctx, rows); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "attendance recorded", "course_id", courseID, "rows", len(rows))
	return len(rows), nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, a *Attendance) error {
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

// StudentReport summarizes one student's marks in one course. period is
// "all" or "month"; month means the trailing 30 days.
func (s *Service) StudentReport(ctx context.Context, scope access.Scope, studentID, courseID int, period string) (*Report, error) {
	var since time.Time
	switch period {
	case "", "all":
	case "month":
		since = time.Now().AddDate(0, 0, -30)
	default:
		return nil, ErrInvalidPeriod
	}

	records, err := s.repo.GetByStudentCourse(ctx, scope, studentID, courseID, since)
	if err != nil {
		return nil, err
	}

	report := &Report{
		StudentID: studentID,
		CourseID:  courseID,
		Total:     len(records),
		Records:   records,
	}
	for _, rec := range records {
		if rec.Present {
			report.Present++
		}
	}
	report.Absent = report.Total - report.Present
	return report, nil
}
