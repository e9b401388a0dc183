package auth

import (
	"time"

	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        int         `bun:"id,pk,autoincrement" json:"id"`
	Username  string      `bun:"username,unique,notnull" json:"username"`
	Password  string      `bun:"password,notnull" json:"-"`
	FullName  string      `bun:"full_name,notnull" json:"fullName"`
	Email     string      `bun:"email" json:"email,omitempty"`
	Role      schema.Role `bun:"role,notnull,default:'counselor'" json:"role"`
	CreatedAt time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// RefreshToken stores refresh tokens in database
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        int       `bun:"id,pk,autoincrement"`
	UserID    int       `bun:"user_id,notnull"`
	Token     string    `bun:"token,unique,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string      `json:"username" validate:"required,min=3,max=64"`
	Password string      `json:"password" validate:"required,min=8"`
	FullName string      `json:"fullName" validate:"required"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Role     schema.Role `json:"role" validate:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by login, register and refresh. The access token
// also travels in the HttpOnly cookie.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	User         *User  `json:"user"`
}
