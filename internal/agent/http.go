package agent

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
	router.Get("/agents", h.GetAllAgents)
	router.Post("/agents", h.CreateAgent)
	router.Get("/agents/{id}", h.GetAgent)
	router.Put("/agents/{id}", h.UpdateAgent)
	router.Delete("/agents/{id}", h.DeleteAgent)
}

func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var agent Agent
	if err := httputil.DecodeJSON(r, &agent); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&agent); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "creating agent", "email", agent.Email)
	created, err := h.service.CreateAgent(r.Context(), &agent)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCreated(r.Context(), "agent")
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.service.GetAllAgents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, agents)
}

func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid agent ID")
		return
	}

	agent, err := h.service.GetAgentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, agent)
}

func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid agent ID")
		return
	}

	var agent Agent
	if err := httputil.DecodeJSON(r, &agent); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&agent); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}
	agent.ID = id

	h.logger.InfoContext(r.Context(), "updating agent", "id", id)
	updated, err := h.service.UpdateAgent(r.Context(), &agent)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid agent ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting agent", "id", id)
	if err := h.service.DeleteAgent(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordDeleted(r.Context(), "agent")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAgentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Agent not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
