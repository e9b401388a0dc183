package event

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
	router.Get("/events", h.GetEvents)
	router.Post("/events", h.ScheduleEvent)
}

func (h *Handler) ScheduleEvent(w http.ResponseWriter, r *http.Request) {
	var event Event
	if err := httputil.DecodeJSON(r, &event); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&event); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "scheduling event", "title", event.Title, "starts_at", event.StartsAt)
	created, err := h.service.ScheduleEvent(r.Context(), &event)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordEventScheduled(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var upcoming bool
	if raw := r.URL.Query().Get("upcoming"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid upcoming flag")
			return
		}
		upcoming = v
	}

	list, err := h.service.GetEvents(r.Context(), upcoming)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
