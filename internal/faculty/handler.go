package faculty

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type Handler struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/faculty", h.GetAllFaculty)
	router.Get("/faculty/{id}", h.GetFaculty)
}

func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/faculty", h.CreateFaculty)
	router.Put("/faculty/{id}", h.UpdateFaculty)
	router.Delete("/faculty/{id}", h.DeleteFaculty)
}

// GetAllFaculty lists faculty records. A faculty principal sees only their
// own record; admins see all.
func (h *Handler) GetAllFaculty(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if principal.Role == user.RoleFaculty {
		own, err := h.repo.GetByUserID(r.Context(), principal.UserID)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, []Faculty{*own})
		return
	}

	faculty, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, faculty)
}

func (h *Handler) GetFaculty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid faculty ID")
		return
	}

	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	f, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// A faculty principal's scope contains only their own record, so any
	// other id behaves as absent.
	if principal.Role == user.RoleFaculty && f.UserID != principal.UserID {
		httputil.RespondWithError(w, http.StatusNotFound, "faculty not found")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, f)
}

func (h *Handler) CreateFaculty(w http.ResponseWriter, r *http.Request) {
	var f Faculty
	if err := httputil.DecodeJSON(r, &f); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&f); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating faculty", "user_id", f.UserID)
	created, err := h.repo.Create(r.Context(), &f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateFaculty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid faculty ID")
		return
	}

	var f Faculty
	if err := httputil.DecodeJSON(r, &f); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&f); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.ID = id

	if err := h.repo.Update(r.Context(), &f); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, f)
}

func (h *Handler) DeleteFaculty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid faculty ID")
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
	case errors.Is(err, ErrFacultyNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "faculty not found")
	case db.IsUniqueViolation(err):
		httputil.RespondWithError(w, http.StatusBadRequest, "faculty record already exists for this user")
	default:
		h.logger.ErrorContext(r.Context(), "faculty operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
