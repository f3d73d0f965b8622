package course

import (
	"context"
	"errors"

	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/user"
)

// ErrNotCourseOwner means a principal tried to mutate content of a course
// they do not teach. Unlike scoped reads this is a hard 403, never a
// filtered no-op.
var ErrNotCourseOwner = errors.New("you do not teach this course")

// FacultyDirectory is the slice of the faculty repository ownership checks
// need.
type FacultyDirectory interface {
	FacultyIDByUser(ctx context.Context, userID int) (int, error)
}

// Authorizer decides whether a principal may write content under a course.
type Authorizer struct {
	courses Repository
	faculty FacultyDirectory
}

func NewAuthorizer(courses Repository, faculty FacultyDirectory) *Authorizer {
	return &Authorizer{courses: courses, faculty: faculty}
}

// RequireOwner passes admins through, requires faculty principals to be the
// exact teacher of the course, and rejects everyone else. Returns
// ErrCourseNotFound when the course does not exist.
func (a *Authorizer) RequireOwner(ctx context.Context, p auth.Principal, courseID int) error {
	owner, err := a.courses.CourseFacultyID(ctx, courseID)
	if err != nil {
		return err
	}
	if p.Role == user.RoleAdmin {
		return nil
	}
	if p.Role != user.RoleFaculty {
		return ErrNotCourseOwner
	}
	facultyID, err := a.faculty.FacultyIDByUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, faculty.ErrFacultyNotFound) {
			return ErrNotCourseOwner
		}
		return err
	}
	if facultyID != owner {
		return ErrNotCourseOwner
	}
	return nil
}
