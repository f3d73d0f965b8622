package course

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/student"
)

// StudentLookup resolves the cohort anchors of a student row for the
// per-student course listing.
type StudentLookup interface {
	InfoByID(ctx context.Context, id int) (userID, programID, semester int, err error)
}

type Handler struct {
	repo     Repository
	resolver *access.Resolver
	students StudentLookup
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(repo Repository, resolver *access.Resolver, students StudentLookup, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		resolver: resolver,
		students: students,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/courses", h.GetAllCourses)
	router.Get("/courses/{id}", h.GetCourse)
	router.Get("/faculty/{id}/courses", h.GetFacultyCourses)
	router.Get("/student/{id}/courses", h.GetStudentCourses)
}

func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/courses", h.CreateCourse)
	router.Put("/courses/{id}", h.UpdateCourse)
	router.Delete("/courses/{id}", h.DeleteCourse)
}

func (h *Handler) GetAllCourses(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	courses, err := h.repo.GetAll(r.Context(), scope)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), scope, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, c)
}

// GetFacultyCourses lists the courses a faculty member teaches, restricted
// to what the caller may see.
func (h *Handler) GetFacultyCourses(w http.ResponseWriter, r *http.Request) {
	facultyID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid faculty ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	courses, err := h.repo.GetByFaculty(r.Context(), scope, facultyID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

// GetStudentCourses lists the courses offered to a student's cohort,
// restricted to what the caller may see.
func (h *Handler) GetStudentCourses(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	_, programID, semester, err := h.students.InfoByID(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "student not found")
			return
		}
		h.handleError(w, r, err)
		return
	}

	courses, err := h.repo.GetByProgramSemester(r.Context(), scope, programID, semester)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var c Course
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating course", "code", c.Code)
	created, err := h.repo.Create(r.Context(), &c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	var c Course
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = id

	if err := h.repo.Update(r.Context(), &c); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case db.IsUniqueViolation(err):
		httputil.RespondWithError(w, http.StatusBadRequest, "course code already exists")
	default:
		h.logger.ErrorContext(r.Context(), "course operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
