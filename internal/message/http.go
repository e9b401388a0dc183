package message

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"agency-service/internal/auth"
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
	router.Post("/messages", h.SendMessage)
	router.Get("/messages", h.GetMessages)
}

// SendMessage records the signed-in user as the sender.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := httputil.DecodeJSON(r, &msg); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&msg); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	msg.Sender = ""
	if username, ok := auth.GetUsername(r.Context()); ok {
		msg.Sender = username
	}
	if email, ok := auth.GetEmail(r.Context()); ok {
		msg.Sender = email
	}

	sent, err := h.service.SendMessage(r.Context(), &msg)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordMessageSent(r.Context())
	h.logger.InfoContext(r.Context(), "message sent", "id", sent.ID, "to", sent.Email)
	httputil.RespondWithJSON(w, http.StatusCreated, sent)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	studentID := 0
	if raw := r.URL.Query().Get("studentId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
			return
		}
		studentID = id
	}

	messages, err := h.service.GetMessages(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDeliveryFailed):
		h.logger.ErrorContext(r.Context(), "message delivery failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadGateway, "Failed to send message")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
