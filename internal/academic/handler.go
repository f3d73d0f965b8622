package academic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/httputil"
)

type Handler struct {
	repo     *Repository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterReadRoutes mounts listing/retrieval for any authenticated principal.
func (h *Handler) RegisterReadRoutes(router chi.Router) {
	router.Get("/schools", h.list(h.listSchools))
	router.Get("/schools/{id}", h.get(h.getSchool))
	router.Get("/departments", h.list(h.listDepartments))
	router.Get("/departments/{id}", h.get(h.getDepartment))
	router.Get("/programs", h.list(h.listPrograms))
	router.Get("/programs/{id}", h.get(h.getProgram))
	router.Get("/classes", h.list(h.listClasses))
	router.Get("/classes/{id}", h.get(h.getClass))
}

// RegisterAdminRoutes mounts the mutating endpoints; the admin check is
// applied by the router group in app.go.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/schools", h.createSchool)
	router.Put("/schools/{id}", h.updateSchool)
	router.Delete("/schools/{id}", h.deleteByID(h.repo.DeleteSchool))
	router.Post("/departments", h.createDepartment)
	router.Put("/departments/{id}", h.updateDepartment)
	router.Delete("/departments/{id}", h.deleteByID(h.repo.DeleteDepartment))
	router.Post("/programs", h.createProgram)
	router.Put("/programs/{id}", h.updateProgram)
	router.Delete("/programs/{id}", h.deleteByID(h.repo.DeleteProgram))
	router.Post("/classes", h.createClass)
	router.Put("/classes/{id}", h.updateClass)
	router.Delete("/classes/{id}", h.deleteByID(h.repo.DeleteClass))
}

func (h *Handler) list(fn func(r *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := fn(r)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, payload)
	}
}

func (h *Handler) get(fn func(r *http.Request, id int) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid ID")
			return
		}
		payload, err := fn(r, id)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, payload)
	}
}

func (h *Handler) deleteByID(fn func(ctx context.Context, id int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid ID")
			return
		}
		if err := fn(r.Context(), id); err != nil {
			h.handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) listSchools(r *http.Request) (interface{}, error) {
	return h.repo.GetSchools(r.Context())
}

func (h *Handler) getSchool(r *http.Request, id int) (interface{}, error) {
	return h.repo.GetSchool(r.Context(), id)
}

func (h *Handler) listDepartments(r *http.Request) (interface{}, error) {
	return h.repo.GetDepartments(r.Context())
}

func (h *Handler) getDepartment(r *http.Request, id int) (interface{}, error) {
	return h.repo.GetDepartment(r.Context(), id)
}

func (h *Handler) listPrograms(r *http.Request) (interface{}, error) {
	return h.repo.GetPrograms(r.Context())
}

func (h *Handler) getProgram(r *http.Request, id int) (interface{}, error) {
	return h.repo.GetProgram(r.Context(), id)
}

func (h *Handler) listClasses(r *http.Request) (interface{}, error) {
	return h.repo.GetClasses(r.Context())
}

func (h *Handler) getClass(r *http.Request, id int) (interface{}, error) {
	return h.repo.GetClass(r.Context(), id)
}

func (h *Handler) createSchool(w http.ResponseWriter, r *http.Request) {
	var s School
	if err := httputil.DecodeJSON(r, &s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.CreateSchool(r.Context(), &s); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSchool(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return
	}
	var s School
	if err := httputil.DecodeJSON(r, &s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ID = id
	if err := h.repo.UpdateSchool(r.Context(), &s); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, s)
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	var d Department
	if err := httputil.DecodeJSON(r, &d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.CreateDepartment(r.Context(), &d); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, d)
}

func (h *Handler) updateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return
	}
	var d Department
	if err := httputil.DecodeJSON(r, &d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.ID = id
	if err := h.repo.UpdateDepartment(r.Context(), &d); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, d)
}

func (h *Handler) createProgram(w http.ResponseWriter, r *http.Request) {
	var p Program
	if err := httputil.DecodeJSON(r, &p); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&p); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.CreateProgram(r.Context(), &p); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return
	}
	var p Program
	if err := httputil.DecodeJSON(r, &p); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&p); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = id
	if err := h.repo.UpdateProgram(r.Context(), &p); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) createClass(w http.ResponseWriter, r *http.Request) {
	var c Class
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.CreateClass(r.Context(), &c); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateClass(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return
	}
	var c Class
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = id
	if err := h.repo.UpdateClass(r.Context(), &c); err != nil {
		h.handleError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSchoolNotFound),
		errors.Is(err, ErrDepartmentNotFound),
		errors.Is(err, ErrProgramNotFound),
		errors.Is(err, ErrClassNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case db.IsUniqueViolation(err):
		httputil.RespondWithError(w, http.StatusBadRequest, "duplicate entry violates a uniqueness constraint")
	default:
		h.logger.ErrorContext(r.Context(), "academic operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
