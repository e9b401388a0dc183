package card

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
	router.Get("/cards", h.GetCards)
	router.Post("/cards", h.IssueCard)
}

func (h *Handler) IssueCard(w http.ResponseWriter, r *http.Request) {
	var card Card
	if err := httputil.DecodeJSON(r, &card); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&card); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "issuing card", "student_id", card.StudentID)
	issued, err := h.service.IssueCard(r.Context(), &card)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCardIssued(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, issued)
}

func (h *Handler) GetCards(w http.ResponseWriter, r *http.Request) {
	var studentID int
	if raw := r.URL.Query().Get("studentId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid studentId")
			return
		}
		studentID = id
	}

	cards, err := h.service.GetCards(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, cards)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCardNumberExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
