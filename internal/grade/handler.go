package grade

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
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/metrics"
)

type bulkCreateRequest struct {
	CourseID int          `json:"course_id" validate:"required"`
	Label    string       `json:"label" validate:"required"`
	Date     string       `json:"date"`
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
	router.Get("/grades", h.GetAllGrades)
	router.Get("/grades/{id}", h.GetGrade)
	router.Post("/grades", h.CreateGrade)
	router.Post("/grades/bulk_create", h.BulkCreate)
	router.Put("/grades/{id}", h.UpdateGrade)
	router.Delete("/grades/{id}", h.DeleteGrade)
}

func (h *Handler) GetAllGrades(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	grades, err := h.service.GetAll(r.Context(), scope)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, grades)
}

func (h *Handler) GetGrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid grade ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	g, err := h.service.GetByID(r.Context(), scope, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, g)
}

func (h *Handler) CreateGrade(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var g Grade
	if err := httputil.DecodeJSON(r, &g); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&g); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), principal, &g)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordGrades(r.Context(), 1)
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

// BulkCreate records one assessment's results for a whole class. The batch
// is atomic; any bad row rejects all rows.
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

	// Date is optional and defaults to today.
	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid date")
			return
		}
	}

	h.logger.InfoContext(r.Context(), "bulk grades", "course_id", req.CourseID, "label", req.Label, "rows", len(req.Records))
	inserted, err := h.service.BulkCreate(r.Context(), principal, req.CourseID, req.Label, date, req.Records)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordGrades(r.Context(), inserted)
	httputil.RespondWithMessage(w, http.StatusCreated, "Grades recorded successfully")
}

func (h *Handler) UpdateGrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid grade ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var g Grade
	if err := httputil.DecodeJSON(r, &g); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&g); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	g.ID = id

	if err := h.service.Update(r.Context(), principal, &g); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, g)
}

func (h *Handler) DeleteGrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid grade ID")
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

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrGradeNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "grade not found")
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, course.ErrNotCourseOwner):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "grade operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
