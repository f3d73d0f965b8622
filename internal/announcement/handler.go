package announcement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/metrics"
)

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
	router.Get("/announcements", h.GetAllAnnouncements)
	router.Get("/announcements/{id}", h.GetAnnouncement)
	router.Post("/announcements", h.CreateAnnouncement)
	router.Put("/announcements/{id}", h.UpdateAnnouncement)
	router.Delete("/announcements/{id}", h.DeleteAnnouncement)
	router.Post("/announcements/{id}/comment", h.AddComment)
	router.Get("/announcements/{id}/comments", h.GetComments)
}

func (h *Handler) GetAllAnnouncements(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	announcements, err := h.service.GetAll(r.Context(), scope)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, announcements)
}

func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid announcement ID")
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

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var a Announcement
	if err := httputil.DecodeJSON(r, &a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating announcement", "course_id", a.CourseID, "title", a.Title)
	created, err := h.service.Create(r.Context(), principal, &a)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordContentPublished(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid announcement ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var a Announcement
	if err := httputil.DecodeJSON(r, &a); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if a.Title == "" || a.Content == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	a.ID = id

	if err := h.service.Update(r.Context(), principal, &a); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid announcement ID")
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

// AddComment accepts any principal who can see the announcement; visibility
// of the parent is the only restriction.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid announcement ID")
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
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid announcement ID")
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
	case errors.Is(err, ErrAnnouncementNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "announcement not found")
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, course.ErrNotCourseOwner):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "announcement operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
