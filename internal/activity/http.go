package activity

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"agency-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/activity", h.GetActivity)
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	q := Query{Entity: r.URL.Query().Get("entity")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		q.Limit = limit
	}

	entries, err := h.service.Recent(r.Context(), q)
	if err != nil {
		if errors.Is(err, ErrInvalidLimit) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, entries)
}
