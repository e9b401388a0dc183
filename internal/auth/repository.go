package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agency-service/internal/db"
	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	CountUsers(ctx context.Context) (int, error)
	CreateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) CreateUser(ctx context.Context, user *User) (*User, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, "username = ?", username)
}

func (r *repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *repository) getUser(ctx context.Context, where string, arg interface{}) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().Model(user).Where(where, arg).Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) CountUsers(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.db.NewSelect().Model((*User)(nil)).Count(ctx)

	r.metrics.RecordQuery(ctx, "count", "users", time.Since(start), err)

	return n, err
}

func (r *repository) CreateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	start := time.Now()
	refreshToken := &RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.NewInsert().Model(refreshToken).Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return err
}

// GetRefreshToken only returns tokens that have not expired.
func (r *repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := new(RefreshToken)
	err := r.db.NewSelect().
		Model(refreshToken).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "refresh_tokens", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return refreshToken, nil
}

func (r *repository) DeleteRefreshToken(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

func (r *repository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
