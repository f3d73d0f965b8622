package attendance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/metrics"
)

type bulkCreateRequest struct {
	CourseID int          `json:"course_id" validate:"required"`
	Date     string       `json:"date" validate:"required"`
	Records  []BulkRecord `json:"records" validate:"required,min=1,dive"`
}

type Handler struct {
	service  *Service
	resolver *access.Resolver
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service *Service, resolver *access.Resolver, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/attendance", h.GetAllAttendance)
	router.Get("/attendance/student_report", h.StudentReport)
	router.Get("/attendance/{id}", h.GetAttendance)
	router.Post("/attendance", h.CreateAttendance)
	router.Post("/attendance/bulk_create", h.BulkCreate)
	router.Put("/attendance/{id}", h.UpdateAttendance)
	router.Delete("/attendance/{id}", h.DeleteAttendance)
}

func (h *Handler) GetAllAttendance(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	records, err := h.service.GetAll(r.Context(), scope)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, records)
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid attendance ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	a, err := h.service.GetByID(r.Context(), scope, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var a Attendance
	if err := httputil.DecodeJSON(r, &a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), principal, &a)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordAttendance(r.Context(), 1)
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

// BulkCreate records one day of attendance for a whole class. The batch is
// atomic; any bad row rejects all rows.
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req bulkCreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid date")
		return
	}

	h.logger.InfoContext(r.Context(), "bulk attendance", "course_id", req.CourseID, "rows", len(req.Records))
	inserted, err := h.service.BulkCreate(r.Context(), principal, req.CourseID, date, req.Records)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordAttendance(r.Context(), inserted)
	httputil.RespondWithMessage(w, http.StatusCreated, "Attendance recorded successfully")
}

func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid attendance ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var a Attendance
	if err := httputil.DecodeJSON(r, &a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ID = id

	if err := h.service.Update(r.Context(), principal, &a); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid attendance ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StudentReport answers GET /attendance/student_report with query params
// student_id, course_id and period (all|month).
func (h *Handler) StudentReport(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(r.URL.Query().Get("student_id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "student ID is required")
		return
	}
	courseID, err := strconv.Atoi(r.URL.Query().Get("course_id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "course ID is required")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	report, err := h.service.StudentReport(r.Context(), scope, studentID, courseID, r.URL.Query().Get("period"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAttendanceNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "attendance record not found")
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, course.ErrNotCourseOwner):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidPeriod):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case db.IsUniqueViolation(err):
		httputil.RespondWithError(w, http.StatusBadRequest, "attendance already recorded for this date")
	default:
		h.logger.ErrorContext(r.Context(), "attendance operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
