package access

import (
	"context"
	"errors"
	"net/http"

	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/student"
	"github.com/notashwinii/kucms-backend/internal/user"
)

var (
	// ErrProfileNotFound means the principal's role requires a faculty or
	// student profile row and none exists.
	ErrProfileNotFound = errors.New("no profile for user")
	ErrUnknownRole     = errors.New("unknown role")
)

// FacultyDirectory is the slice of the faculty repository the resolver needs.
type FacultyDirectory interface {
	FacultyIDByUser(ctx context.Context, userID int) (int, error)
}

// StudentDirectory is the slice of the student repository the resolver needs.
type StudentDirectory interface {
	ScopeByUser(ctx context.Context, userID int) (studentID, programID, semester int, err error)
}

// Resolver turns an authenticated principal into its visibility scope.
type Resolver struct {
	faculty  FacultyDirectory
	students StudentDirectory
}

func NewResolver(faculty FacultyDirectory, students StudentDirectory) *Resolver {
	return &Resolver{faculty: faculty, students: students}
}

func (r *Resolver) Resolve(ctx context.Context, p auth.Principal) (Scope, error) {
	switch p.Role {
	case user.RoleAdmin:
		return Unrestricted(), nil
	case user.RoleFaculty:
		id, err := r.faculty.FacultyIDByUser(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, faculty.ErrFacultyNotFound) {
				return Scope{}, ErrProfileNotFound
			}
			return Scope{}, err
		}
		return ForFaculty(id), nil
	case user.RoleStudent:
		studentID, programID, semester, err := r.students.ScopeByUser(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, student.ErrStudentNotFound) {
				return Scope{}, ErrProfileNotFound
			}
			return Scope{}, err
		}
		return ForStudent(studentID, programID, semester), nil
	}
	return Scope{}, ErrUnknownRole
}

// RequireScope resolves the scope of the request's principal and writes the
// error response itself on failure. A missing profile is a hard 403, not an
// empty scope.
func (r *Resolver) RequireScope(w http.ResponseWriter, req *http.Request) (Scope, bool) {
	principal, ok := auth.GetPrincipal(req.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return Scope{}, false
	}
	scope, err := r.Resolve(req.Context(), principal)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			httputil.RespondWithError(w, http.StatusForbidden, "no profile for user")
		case errors.Is(err, ErrUnknownRole):
			httputil.RespondWithError(w, http.StatusForbidden, "unknown role")
		default:
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return Scope{}, false
	}
	return scope, true
}
