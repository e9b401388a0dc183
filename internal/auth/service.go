package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agency-service/internal/schema"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameExists      = errors.New("username already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type Service struct {
	repo   Repository
	tokens *JWTService
	logger *slog.Logger
}

func NewService(repo Repository, tokens *JWTService, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = schema.RoleCounselor
	}
	user := &User{
		Username:  strings.TrimSpace(req.Username),
		Password:  hashed,
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, created)
}

// Login never tells apart an unknown username from a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token: the old one is deleted and a new pair issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *Service) CurrentUser(ctx context.Context, userID int) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredTokens(ctx)
}

// SeedAdmin creates the first administrator when the users table is empty.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.Register(ctx, RegisterRequest{
		Username: username,
		Password: password,
		FullName: "Administrator",
		Role:     schema.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded admin user", "username", username)
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := s.tokens.NewRefreshToken()
	if err := s.repo.CreateRefreshToken(ctx, user.ID, refreshToken, s.tokens.RefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.AccessTokenTTL().Seconds()),
		User:         user,
	}, nil
}
