// Package authtest provides an in-memory auth.Repository for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"agency-service/internal/auth"
)

type MemoryRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[int]auth.User
	tokens map[string]auth.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  map[int]auth.User{},
		tokens: map[string]auth.RefreshToken{},
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, auth.ErrUsernameExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return user, nil
}

func (m *MemoryRepository) GetUserByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *MemoryRepository) GetUserByID(_ context.Context, id int) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryRepository) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MemoryRepository) CreateRefreshToken(_ context.Context, userID int, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = auth.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (m *MemoryRepository) GetRefreshToken(_ context.Context, token string) (*auth.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[token]
	if !ok || !rt.ExpiresAt.After(time.Now()) {
		return nil, auth.ErrInvalidRefreshToken
	}
	return &rt, nil
}

func (m *MemoryRepository) DeleteRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *MemoryRepository) DeleteExpiredTokens(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, rt := range m.tokens {
		if rt.ExpiresAt.Before(time.Now()) {
			delete(m.tokens, token)
			n++
		}
	}
	return n, nil
}

// TokenCount reports how many refresh tokens are stored.
func (m *MemoryRepository) TokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
