package auth

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
	service   *Service
	tokens    *JWTService
	cookies   Cookies
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator *validator.Validate
}

func NewHandler(service *Service, tokens *JWTService, cookies Cookies, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		tokens:    tokens,
		cookies:   cookies,
		logger:    logger,
		metrics:   metrics,
		validator: schema.NewValidator(),
	}
}

// RegisterRoutes mounts the public endpoints plus current-user, which
// carries its own token check.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Get("/auth/logout", h.Logout)
	router.Post("/auth/register", h.Register)
	router.Post("/auth/refresh", h.Refresh)
	router.With(Middleware(h.tokens, h.logger)).Get("/auth/current-user", h.CurrentUser)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", "username", resp.User.Username)
	h.cookies.Set(w, resp)
	httputil.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	h.metrics.RecordLogin(r.Context(), err == nil)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "username", req.Username)
	h.cookies.Set(w, resp)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Refresh takes the refresh token from the body, falling back to the cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(refreshCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.cookies.Set(w, resp)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout always clears the cookies, even when the refresh token is unknown.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.WarnContext(r.Context(), "failed to revoke refresh token", "error", err)
		}
	}

	h.cookies.Clear(w)
	h.logger.InfoContext(r.Context(), "user logged out")
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		h.logger.WarnContext(r.Context(), "authentication failed", "error", err)
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUsernameExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "auth error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
