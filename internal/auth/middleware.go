package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"agency-service/internal/httputil"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
	EmailKey    contextKey = "email"
	RoleKey     contextKey = "role"
)

const (
	accessCookie  = "token"
	refreshCookie = "refresh_token"
)

// Middleware accepts the access token from the "token" cookie or an
// Authorization header and puts the claims on the request context.
func Middleware(tokens *JWTService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractBearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				if cookie, err := r.Cookie(accessCookie); err == nil {
					raw = cookie.Value
				}
			}
			if raw == "" {
				logger.DebugContext(r.Context(), "no access token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token", "path", r.URL.Path, "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok
}

func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok && email != ""
}

// Cookies writes the session cookies. Secure cookies require HTTPS, so it
// stays off for local runs.
type Cookies struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c Cookies) Set(w http.ResponseWriter, resp *AuthResponse) {
	sameSite := http.SameSiteStrictMode
	if !c.Secure {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    resp.AccessToken,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   int(c.AccessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    resp.RefreshToken,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
		Path:     "/api/auth",
		MaxAge:   int(c.RefreshTTL.Seconds()),
	})
}

func (c Cookies) Clear(w http.ResponseWriter) {
	for name, path := range map[string]string{accessCookie: "/", refreshCookie: "/api/auth"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteStrictMode,
			Path:     path,
			MaxAge:   -1,
		})
	}
}
