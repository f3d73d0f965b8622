package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/student"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type fakeFacultyDirectory struct {
	byUser map[int]int
}

func (f *fakeFacultyDirectory) FacultyIDByUser(_ context.Context, userID int) (int, error) {
	id, ok := f.byUser[userID]
	if !ok {
		return 0, faculty.ErrFacultyNotFound
	}
	return id, nil
}

type studentScope struct {
	studentID, programID, semester int
}

type fakeStudentDirectory struct {
	byUser map[int]studentScope
}

func (f *fakeStudentDirectory) ScopeByUser(_ context.Context, userID int) (int, int, int, error) {
	s, ok := f.byUser[userID]
	if !ok {
		return 0, 0, 0, student.ErrStudentNotFound
	}
	return s.studentID, s.programID, s.semester, nil
}

func newTestResolver() *Resolver {
	return NewResolver(
		&fakeFacultyDirectory{byUser: map[int]int{10: 3}},
		&fakeStudentDirectory{byUser: map[int]studentScope{20: {studentID: 7, programID: 2, semester: 4}}},
	)
}

func TestResolve_Admin(t *testing.T) {
	r := newTestResolver()

	scope, err := r.Resolve(context.Background(), auth.Principal{UserID: 1, Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, scope.Admin)
}

func TestResolve_Faculty(t *testing.T) {
	r := newTestResolver()

	scope, err := r.Resolve(context.Background(), auth.Principal{UserID: 10, Role: user.RoleFaculty})
	require.NoError(t, err)
	assert.False(t, scope.Admin)
	assert.Equal(t, 3, scope.FacultyID)
}

func TestResolve_Student(t *testing.T) {
	r := newTestResolver()

	scope, err := r.Resolve(context.Background(), auth.Principal{UserID: 20, Role: user.RoleStudent})
	require.NoError(t, err)
	assert.False(t, scope.Admin)
	assert.Equal(t, 7, scope.StudentID)
	assert.Equal(t, 2, scope.ProgramID)
	assert.Equal(t, 4, scope.Semester)
}

// A role that demands a profile row must fail hard when none exists, never
// fall back to an empty or unrestricted scope.
func TestResolve_MissingProfile(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(context.Background(), auth.Principal{UserID: 99, Role: user.RoleFaculty})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = r.Resolve(context.Background(), auth.Principal{UserID: 99, Role: user.RoleStudent})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestResolve_UnknownRole(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(context.Background(), auth.Principal{UserID: 1, Role: user.Role("registrar")})
	assert.ErrorIs(t, err, ErrUnknownRole)
}
