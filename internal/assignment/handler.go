package assignment

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
	"github.com/notashwinii/kucms-backend/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

type commentRequest struct {
	Comment string `json:"comment" validate:"required"`
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
	router.Get("/assignments", h.GetAllAssignments)
	router.Get("/assignments/{id}", h.GetAssignment)
	router.Post("/assignments", h.CreateAssignment)
	router.Put("/assignments/{id}", h.UpdateAssignment)
	router.Delete("/assignments/{id}", h.DeleteAssignment)
	router.Post("/assignments/{id}/comment", h.AddComment)
	router.Get("/assignments/{id}/comments", h.GetComments)
}

func (h *Handler) GetAllAssignments(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.GetAll(r.Context(), scope)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, assignments)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid assignment ID")
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

// CreateAssignment accepts a multipart form: course_id, title, description,
// due_date, and an optional document attachment under "file".
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	courseID, err := strconv.Atoi(r.FormValue("course_id"))
	if err != nil || courseID <= 0 {
		httputil.RespondWithError(w, http.StatusBadRequest, "course ID is required")
		return
	}
	title := r.FormValue("title")
	if title == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	dueDate, err := parseDate(r.FormValue("due_date"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid due date")
		return
	}

	a := &Assignment{
		CourseID:    courseID,
		Title:       title,
		Description: r.FormValue("description"),
		DueDate:     dueDate,
	}

	var upload *Upload
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		upload = &Upload{Filename: header.Filename, Data: file}
	}

	h.logger.InfoContext(r.Context(), "creating assignment", "course_id", courseID, "title", title)
	created, err := h.service.Create(r.Context(), principal, a, upload)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordContentPublished(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var a Assignment
	if err := httputil.DecodeJSON(r, &a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if a.Title == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	a.ID = id

	if err := h.service.Update(r.Context(), principal, &a); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid assignment ID")
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

// AddComment accepts any principal who can see the assignment; visibility of
// the parent is the only restriction.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "comment is required")
		return
	}

	created, err := h.service.AddComment(r.Context(), scope, principal, id, req.Comment)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordCommentAdded(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	comments, err := h.service.ListComments(r.Context(), scope, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, comments)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAssignmentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "assignment not found")
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, course.ErrNotCourseOwner):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrUnsupportedType):
		httputil.RespondWithError(w, http.StatusBadRequest, "file type not allowed")
	default:
		h.logger.ErrorContext(r.Context(), "assignment operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
