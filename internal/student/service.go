package student

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/kafka"
	"github.com/notashwinii/kucms-backend/internal/user"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrMissingColumns = errors.New("csv must have registration_number, email, password and name columns")
)

// ImportError reports the first CSV row whose creation failed. Rows before
// it are already committed and stay committed.
type ImportError struct {
	Row int
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("error creating student at row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// ProgramStore is the slice of the academic repository the import needs.
type ProgramStore interface {
	GetProgram(ctx context.Context, id int) (*academic.Program, error)
}

// AuditPublisher records administrative bulk operations; nil-able.
type AuditPublisher interface {
	SendAudit(event kafka.AuditEvent) error
}

type Service struct {
	repo     Repository
	programs ProgramStore
	audit    AuditPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, programs ProgramStore, audit AuditPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		programs: programs,
		audit:    audit,
		logger:   logger,
	}
}

func (s *Service) GetAllStudents(ctx context.Context) ([]Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetStudentByUserID(ctx context.Context, userID int) (*Student, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) CreateStudent(ctx context.Context, st *Student) (*Student, error) {
	if st.CurrentSemester == 0 {
		st.CurrentSemester = 1
	}
	return s.repo.Create(ctx, st)
}

func (s *Service) UpdateStudent(ctx context.Context, st *Student) error {
	if st.ID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Update(ctx, st)
}

func (s *Service) DeleteStudent(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// ImportStudents reads CSV rows of {registration_number, email, password,
// name} and creates one user+student pair per row. The import is
// row-at-a-time: the first failing row stops the loop and is reported, rows
// committed before it are NOT rolled back, and later rows are never
// attempted. Callers must treat a failure as "some prefix succeeded".
func (s *Service) ImportStudents(ctx context.Context, actorEmail string, programID int, csvData io.Reader) (int, error) {
	if _, err := s.programs.GetProgram(ctx, programID); err != nil {
		return 0, err
	}

	reader := csv.NewReader(csvData)
	header, err := reader.Read()
	if err != nil {
		return 0, ErrMissingColumns
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"registration_number", "email", "password", "name"} {
		if _, ok := cols[required]; !ok {
			return 0, ErrMissingColumns
		}
	}

	created := 0
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return created, &ImportError{Row: row, Err: err}
		}

		if err := s.importRow(ctx, programID, record, cols); err != nil {
			return created, &ImportError{Row: row, Err: err}
		}
		created++
	}

	s.logger.InfoContext(ctx, "students imported", "count", created, "program_id", programID)
	s.publishAudit(kafka.AuditEvent{
		Action:     "upload_students",
		ActorEmail: actorEmail,
		Detail:     fmt.Sprintf("program %d", programID),
		Count:      created,
		OccurredAt: time.Now(),
	})

	return created, nil
}

func (s *Service) importRow(ctx context.Context, programID int, record []string, cols map[string]int) error {
	regNo := record[cols["registration_number"]]
	email := record[cols["email"]]
	password := record[cols["password"]]
	name := record[cols["name"]]

	if regNo == "" || email == "" || password == "" {
		return ErrInvalidInput
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u := &user.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: name,
		Role:      user.RoleStudent,
		IsActive:  true,
	}
	st := &Student{
		RegistrationNumber: regNo,
		ProgramID:          programID,
		CurrentSemester:    1,
	}
	return s.repo.CreateWithUser(ctx, u, st)
}

// StartNewSession advances every active student by one semester. Invoking it
// twice advances everyone by two; there is no double-invocation guard.
func (s *Service) StartNewSession(ctx context.Context, actorEmail string) (int, error) {
	affected, err := s.repo.AdvanceSemesters(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "new academic session started", "students_advanced", affected)
	s.publishAudit(kafka.AuditEvent{
		Action:     "start_new_session",
		ActorEmail: actorEmail,
		Count:      affected,
		OccurredAt: time.Now(),
	})

	return affected, nil
}

func (s *Service) publishAudit(event kafka.AuditEvent) {
	if s.audit == nil {
		return
	}
	// Audit is best-effort; a broker outage must not fail the operation.
	if err := s.audit.SendAudit(event); err != nil {
		s.logger.Warn("failed to publish audit event", "action", event.Action, "error", err)
	}
}
