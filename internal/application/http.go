package application

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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
	router.Get("/applications", h.GetApplications)
	router.Post("/applications", h.CreateApplication)
	router.Get("/applications/{id}", h.GetApplication)
	router.Patch("/applications/{id}", h.PatchApplication)
	router.Delete("/applications/{id}", h.DeleteApplication)
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var app Application
	if err := httputil.DecodeJSON(r, &app); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&app); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "creating application",
		"student_id", app.StudentID,
		"university_id", app.UniversityID,
		"program_id", app.ProgramID,
	)
	created, err := h.service.CreateApplication(r.Context(), &app)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCreated(r.Context(), "application")
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

// GetApplications accepts optional studentId, universityId and stage query
// parameters.
func (h *Handler) GetApplications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter ListFilter
	if raw := query.Get("studentId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid studentId")
			return
		}
		filter.StudentID = id
	}
	if raw := query.Get("universityId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid universityId")
			return
		}
		filter.UniversityID = id
	}
	filter.Stage = schema.ApplicationStage(query.Get("stage"))
	if err := h.validate.Var(string(filter.Stage), "application_stage"); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid stage")
		return
	}

	apps, err := h.service.GetApplications(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, apps)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := h.service.GetApplicationByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, app)
}

func (h *Handler) PatchApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var patch Patch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&patch); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "patching application", "id", id)
	app, err := h.service.PatchApplication(r.Context(), id, patch)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, app)
}

func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting application", "id", id)
	if err := h.service.DeleteApplication(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordDeleted(r.Context(), "application")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
