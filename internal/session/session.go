// Package session tracks who is signed in to the agency API on the client.
//
// A Session is created once at the application root and handed down
// through a context; nothing here is global.
package session

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"agency-service/internal/apiclient"
	"agency-service/internal/auth"
	"agency-service/internal/schema"

	"github.com/go-playground/validator/v10"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

type Session struct {
	api      *apiclient.Client
	validate *validator.Validate

	mu   sync.RWMutex
	user *auth.User
	err  string
}

func New(api *apiclient.Client) *Session {
	return &Session{api: api, validate: schema.NewValidator()}
}

// Init loads the current user. Any failure leaves the session signed out
// without reporting an error.
func (s *Session) Init(ctx context.Context) {
	var user auth.User
	if err := s.api.Get(ctx, "/api/auth/current-user", &user); err != nil {
		s.set(nil, "")
		return
	}
	s.set(&user, "")
}

// Login reports whether the credentials were accepted. On failure Error
// holds the reason.
func (s *Session) Login(ctx context.Context, username, password string) bool {
	var resp auth.AuthResponse
	err := s.api.Do(ctx, http.MethodPost, "/api/auth/login", auth.LoginRequest{
		Username: strings.TrimSpace(username),
		Password: password,
	}, &resp)
	return s.finish(resp, err)
}

func (s *Session) Register(ctx context.Context, in RegisterInput) bool {
	if err := s.validate.Struct(&in); err != nil {
		s.set(s.User(), firstFieldError(schema.FieldErrors(err)))
		return false
	}

	var resp auth.AuthResponse
	err := s.api.Do(ctx, http.MethodPost, "/api/auth/register", auth.RegisterRequest{
		Username: in.Username,
		Password: in.Password,
		FullName: in.FullName,
		Email:    in.Email,
	}, &resp)
	return s.finish(resp, err)
}

// Logout clears local state whatever the server answers.
func (s *Session) Logout(ctx context.Context) {
	_ = s.api.Get(ctx, "/api/auth/logout", nil)
	s.api.SetToken("")
	s.set(nil, "")
}

func (s *Session) finish(resp auth.AuthResponse, err error) bool {
	if err == nil && resp.User == nil {
		err = &apiclient.Error{Message: apiclient.FallbackMessage}
	}
	if err != nil {
		s.set(nil, apiclient.Message(err))
		return false
	}
	s.api.SetToken(resp.AccessToken)
	s.set(resp.User, "")
	return true
}

func (s *Session) set(user *auth.User, errMsg string) {
	s.mu.Lock()
	s.user = user
	s.err = errMsg
	s.mu.Unlock()
}

// User is nil when signed out.
func (s *Session) User() *auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

// Error is the message of the last failed login or register.
func (s *Session) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func firstFieldError(fields map[string]string) string {
	for _, name := range []string{"username", "password", "fullName", "email"} {
		if msg, ok := fields[name]; ok {
			return name + ": " + msg
		}
	}
	return "validation failed"
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext panics when ctx carries no session: that is a wiring bug,
// not a runtime condition.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok || s == nil {
		panic("session: no Session in context; wrap it with session.WithSession at startup")
	}
	return s
}
