package university

import (
	"errors"
	"log/slog"
	"net/http"

	"agency-service/internal/httputil"
	"agency-service/internal/metrics"
	"agency-service/internal/schema"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: schema.NewValidator(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/universities", h.GetAllUniversities)
	router.Post("/universities", h.CreateUniversity)
	router.Get("/universities/{id}", h.GetUniversity)
	router.Put("/universities/{id}", h.UpdateUniversity)
	router.Delete("/universities/{id}", h.DeleteUniversity)
	router.Get("/programs/university/{id}", h.GetProgramsByUniversity)
	router.Post("/programs", h.CreateProgram)
}

func (h *Handler) CreateUniversity(w http.ResponseWriter, r *http.Request) {
	var university University
	if err := httputil.DecodeJSON(r, &university); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&university); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "creating university", "name", university.Name)
	created, err := h.service.CreateUniversity(r.Context(), &university)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCreated(r.Context(), "university")
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllUniversities(w http.ResponseWriter, r *http.Request) {
	universities, err := h.service.GetAllUniversities(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, universities)
}

func (h *Handler) GetUniversity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	university, err := h.service.GetUniversityByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, university)
}

func (h *Handler) UpdateUniversity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	var university University
	if err := httputil.DecodeJSON(r, &university); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&university); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}
	university.ID = id

	h.logger.InfoContext(r.Context(), "updating university", "id", id)
	updated, err := h.service.UpdateUniversity(r.Context(), &university)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteUniversity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting university", "id", id)
	if err := h.service.DeleteUniversity(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordDeleted(r.Context(), "university")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProgramsByUniversity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	programs, err := h.service.GetProgramsByUniversity(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, programs)
}

func (h *Handler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var program Program
	if err := httputil.DecodeJSON(r, &program); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&program); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "creating program", "name", program.Name, "university_id", program.UniversityID)
	created, err := h.service.CreateProgram(r.Context(), &program)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCreated(r.Context(), "program")
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUniversityNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "University not found")
	case errors.Is(err, ErrProgramNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Program not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
