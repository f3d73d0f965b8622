package student

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/metrics"
	"github.com/notashwinii/kucms-backend/internal/user"
)

const maxUploadSize = 10 << 20 // 10 MiB

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service *Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/students", h.GetAllStudents)
	router.Get("/students/{id}", h.GetStudent)
}

func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/students", h.CreateStudent)
	router.Put("/students/{id}", h.UpdateStudent)
	router.Delete("/students/{id}", h.DeleteStudent)
	router.Post("/users/upload_students", h.UploadStudents)
	router.Post("/users/start_new_session", h.StartNewSession)
}

// GetAllStudents lists student records. A student principal sees only their
// own record; faculty and admins see all.
func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if principal.Role == user.RoleStudent {
		own, err := h.service.GetStudentByUserID(r.Context(), principal.UserID)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, []Student{*own})
		return
	}

	students, err := h.service.GetAllStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	st, err := h.service.GetStudentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// A student principal's scope contains only their own record.
	if principal.Role == user.RoleStudent && st.UserID != principal.UserID {
		httputil.RespondWithError(w, http.StatusNotFound, "student not found")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, st)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var st Student
	if err := httputil.DecodeJSON(r, &st); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&st); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "registration_number", st.RegistrationNumber)
	created, err := h.service.CreateStudent(r.Context(), &st)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	var st Student
	if err := httputil.DecodeJSON(r, &st); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&st); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	st.ID = id

	if err := h.service.UpdateStudent(r.Context(), &st); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, st)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadStudents imports students from a multipart CSV file.
func (h *Handler) UploadStudents(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "no file provided")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	programID, err := strconv.Atoi(r.FormValue("program_id"))
	if err != nil || programID <= 0 {
		httputil.RespondWithError(w, http.StatusBadRequest, "program ID is required")
		return
	}

	h.logger.InfoContext(r.Context(), "importing students", "program_id", programID, "actor", principal.Email)

	created, err := h.service.ImportStudents(r.Context(), principal.Email, programID, file)
	if err != nil {
		var importErr *ImportError
		switch {
		case errors.Is(err, academic.ErrProgramNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "program not found")
		case errors.As(err, &importErr):
			// Rows before the failing one stay committed.
			h.metrics.RecordStudentsImported(r.Context(), created)
			httputil.RespondWithError(w, http.StatusBadRequest, importErr.Error())
		case errors.Is(err, ErrMissingColumns):
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.handleServiceError(w, r, err)
		}
		return
	}

	h.metrics.RecordStudentsImported(r.Context(), created)
	httputil.RespondWithMessage(w, http.StatusCreated,
		fmt.Sprintf("Successfully created %d students", created))
}

// StartNewSession advances every active student's semester by one.
func (h *Handler) StartNewSession(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	if _, err := h.service.StartNewSession(r.Context(), principal.Email); err != nil {
		h.logger.ErrorContext(r.Context(), "semester rollover failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.metrics.RecordSessionRolled(r.Context())
	httputil.RespondWithMessage(w, http.StatusOK, "Successfully started new academic session")
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "student not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case db.IsUniqueViolation(err):
		httputil.RespondWithError(w, http.StatusBadRequest, "duplicate email or registration number")
	default:
		h.logger.ErrorContext(r.Context(), "student operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
