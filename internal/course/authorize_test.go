package course

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/user"
)

// fakeCourseRepo only answers ownership lookups.
type fakeCourseRepo struct {
	owners map[int]int
}

func (f *fakeCourseRepo) CourseFacultyID(_ context.Context, id int) (int, error) {
	owner, ok := f.owners[id]
	if !ok {
		return 0, ErrCourseNotFound
	}
	return owner, nil
}

func (f *fakeCourseRepo) Create(context.Context, *Course) (*Course, error) { return nil, nil }
func (f *fakeCourseRepo) GetAll(context.Context, access.Scope) ([]Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) GetByID(context.Context, access.Scope, int) (*Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) GetByFaculty(context.Context, access.Scope, int) ([]Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) GetByProgramSemester(context.Context, access.Scope, int, int) ([]Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) Update(context.Context, *Course) error { return nil }
func (f *fakeCourseRepo) Delete(context.Context, int) error     { return nil }

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

func newTestAuthorizer() *Authorizer {
	// Course 100 is taught by faculty 3, whose user id is 10. User 11 owns
	// faculty 4.
	return NewAuthorizer(
		&fakeCourseRepo{owners: map[int]int{100: 3}},
		&fakeFacultyDirectory{byUser: map[int]int{10: 3, 11: 4}},
	)
}

func TestRequireOwner_OwningFaculty(t *testing.T) {
	a := newTestAuthorizer()

	err := a.RequireOwner(context.Background(), auth.Principal{UserID: 10, Role: user.RoleFaculty}, 100)
	assert.NoError(t, err)
}

func TestRequireOwner_OtherFaculty(t *testing.T) {
	a := newTestAuthorizer()

	err := a.RequireOwner(context.Background(), auth.Principal{UserID: 11, Role: user.RoleFaculty}, 100)
	assert.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestRequireOwner_Student(t *testing.T) {
	a := newTestAuthorizer()

	err := a.RequireOwner(context.Background(), auth.Principal{UserID: 20, Role: user.RoleStudent}, 100)
	assert.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestRequireOwner_Admin(t *testing.T) {
	a := newTestAuthorizer()

	err := a.RequireOwner(context.Background(), auth.Principal{UserID: 1, Role: user.RoleAdmin}, 100)
	assert.NoError(t, err)
}

func TestRequireOwner_MissingCourse(t *testing.T) {
	a := newTestAuthorizer()

	err := a.RequireOwner(context.Background(), auth.Principal{UserID: 10, Role: user.RoleFaculty}, 999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRequireOwner_FacultyWithoutProfile(t *testing.T) {
	a := newTestAuthorizer()

	err := a.RequireOwner(context.Background(), auth.Principal{UserID: 99, Role: user.RoleFaculty}, 100)
	assert.ErrorIs(t, err, ErrNotCourseOwner)
}
