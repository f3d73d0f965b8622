package note

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/metrics"
	"github.com/notashwinii/kucms-backend/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

// allowedExts for notes is wider than for assignments; lecture material is
// often slides.
var allowedExts = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx"}

type Handler struct {
	repo     Repository
	owners   *course.Authorizer
	files    *storage.Store
	resolver *access.Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(repo Repository, owners *course.Authorizer, files *storage.Store, resolver *access.Resolver, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		repo:     repo,
		owners:   owners,
		files:    files,
		resolver: resolver,
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/notes", h.GetAllNotes)
	router.Get("/notes/{id}", h.GetNote)
	router.Post("/notes", h.CreateNote)
	router.Put("/notes/{id}", h.UpdateNote)
	router.Delete("/notes/{id}", h.DeleteNote)
}

func (h *Handler) GetAllNotes(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	notes, err := h.repo.GetAll(r.Context(), scope)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, notes)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid note ID")
		return
	}

	scope, ok := h.resolver.RequireScope(w, r)
	if !ok {
		return
	}

	n, err := h.repo.GetByID(r.Context(), scope, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, n)
}

// CreateNote accepts a multipart form: course_id, title, description and a
// required attachment under "file".
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
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

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if err := h.owners.RequireOwner(r.Context(), principal, courseID); err != nil {
		h.handleError(w, r, err)
		return
	}

	url, err := h.files.Save("notes", header.Filename, file, allowedExts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	n := &Note{
		CourseID:    courseID,
		Title:       title,
		Description: r.FormValue("description"),
		FileURL:     url,
	}
	created, err := h.repo.Create(r.Context(), n)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.metrics.RecordContentPublished(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid note ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var n Note
	if err := httputil.DecodeJSON(r, &n); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if n.Title == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	n.ID = id

	existing, err := h.repo.GetByID(r.Context(), access.Unrestricted(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.owners.RequireOwner(r.Context(), principal, existing.CourseID); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.repo.Update(r.Context(), &n); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, n)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid note ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), access.Unrestricted(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.owners.RequireOwner(r.Context(), principal, existing.CourseID); err != nil {
		h.handleError(w, r, err)
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
	case errors.Is(err, ErrNoteNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "note not found")
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, course.ErrNotCourseOwner):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrUnsupportedType):
		httputil.RespondWithError(w, http.StatusBadRequest, "file type not allowed")
	default:
		h.logger.ErrorContext(r.Context(), "note operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
