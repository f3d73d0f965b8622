package student

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/kafka"
	"github.com/notashwinii/kucms-backend/internal/user"
)

var errDuplicateEmail = errors.New("duplicate key value violates unique constraint")

// fakeRepository records created user+student pairs and fails any row whose
// email is in failEmails, mimicking a uniqueness violation.
type fakeRepository struct {
	created    []*user.User
	failEmails map[string]bool
	rollovers  int
}

func (f *fakeRepository) CreateWithUser(_ context.Context, u *user.User, s *Student) error {
	if f.failEmails[u.Email] {
		return errDuplicateEmail
	}
	f.created = append(f.created, u)
	return nil
}

func (f *fakeRepository) AdvanceSemesters(context.Context) (int, error) {
	f.rollovers++
	return 2, nil
}

func (f *fakeRepository) Create(context.Context, *Student) (*Student, error) { return nil, nil }
func (f *fakeRepository) GetAll(context.Context) ([]Student, error)          { return nil, nil }
func (f *fakeRepository) GetByID(context.Context, int) (*Student, error)     { return nil, nil }
func (f *fakeRepository) GetByUserID(context.Context, int) (*Student, error) { return nil, nil }
func (f *fakeRepository) ScopeByUser(context.Context, int) (int, int, int, error) {
	return 0, 0, 0, nil
}
func (f *fakeRepository) InfoByID(context.Context, int) (int, int, int, error) {
	return 0, 0, 0, nil
}
func (f *fakeRepository) Update(context.Context, *Student) error { return nil }
func (f *fakeRepository) Delete(context.Context, int) error      { return nil }

type fakePrograms struct {
	known map[int]bool
}

func (f *fakePrograms) GetProgram(_ context.Context, id int) (*academic.Program, error) {
	if !f.known[id] {
		return nil, academic.ErrProgramNotFound
	}
	return &academic.Program{ID: id}, nil
}

type fakeAudit struct {
	events []kafka.AuditEvent
}

func (f *fakeAudit) SendAudit(event kafka.AuditEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newTestService(repo *fakeRepository, audit *fakeAudit) *Service {
	return NewService(repo, &fakePrograms{known: map[int]bool{1: true}}, audit, slog.Default())
}

const csvHeader = "registration_number,email,password,name\n"

func TestImportStudents_Success(t *testing.T) {
	repo := &fakeRepository{failEmails: map[string]bool{}}
	audit := &fakeAudit{}
	svc := newTestService(repo, audit)

	data := csvHeader +
		"REG001,a@ku.edu.np,pass1,Asha\n" +
		"REG002,b@ku.edu.np,pass2,Bibek\n" +
		"REG003,c@ku.edu.np,pass3,Chandra\n"

	created, err := svc.ImportStudents(context.Background(), "admin@ku.edu.np", 1, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Len(t, repo.created, 3)
	assert.Equal(t, user.RoleStudent, repo.created[0].Role)

	require.Len(t, audit.events, 1)
	assert.Equal(t, "upload_students", audit.events[0].Action)
	assert.Equal(t, 3, audit.events[0].Count)
}

// The failing row stops the loop: rows before it stay committed, rows after
// it are never attempted.
func TestImportStudents_PartialCommit(t *testing.T) {
	repo := &fakeRepository{failEmails: map[string]bool{"dup@ku.edu.np": true}}
	svc := newTestService(repo, &fakeAudit{})

	data := csvHeader +
		"REG001,ok@ku.edu.np,pass1,Asha\n" +
		"REG002,dup@ku.edu.np,pass2,Bibek\n" +
		"REG003,never@ku.edu.np,pass3,Chandra\n"

	created, err := svc.ImportStudents(context.Background(), "admin@ku.edu.np", 1, strings.NewReader(data))
	require.Error(t, err)
	assert.Equal(t, 1, created)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 2, importErr.Row)
	assert.ErrorIs(t, err, errDuplicateEmail)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "ok@ku.edu.np", repo.created[0].Email)
}

func TestImportStudents_MissingColumns(t *testing.T) {
	svc := newTestService(&fakeRepository{}, &fakeAudit{})

	data := "registration_number,email\nREG001,a@ku.edu.np\n"
	_, err := svc.ImportStudents(context.Background(), "admin@ku.edu.np", 1, strings.NewReader(data))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestImportStudents_EmptyField(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo, &fakeAudit{})

	data := csvHeader + "REG001,,pass1,Asha\n"
	_, err := svc.ImportStudents(context.Background(), "admin@ku.edu.np", 1, strings.NewReader(data))

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 1, importErr.Row)
	assert.Empty(t, repo.created)
}

func TestImportStudents_UnknownProgram(t *testing.T) {
	svc := newTestService(&fakeRepository{}, &fakeAudit{})

	data := csvHeader + "REG001,a@ku.edu.np,pass1,Asha\n"
	_, err := svc.ImportStudents(context.Background(), "admin@ku.edu.np", 42, strings.NewReader(data))
	assert.ErrorIs(t, err, academic.ErrProgramNotFound)
}

func TestStartNewSession_NoGuard(t *testing.T) {
	repo := &fakeRepository{}
	audit := &fakeAudit{}
	svc := newTestService(repo, audit)

	_, err := svc.StartNewSession(context.Background(), "admin@ku.edu.np")
	require.NoError(t, err)
	_, err = svc.StartNewSession(context.Background(), "admin@ku.edu.np")
	require.NoError(t, err)

	// Nothing stops the second invocation; every call advances again.
	assert.Equal(t, 2, repo.rollovers)
	assert.Len(t, audit.events, 2)
}
