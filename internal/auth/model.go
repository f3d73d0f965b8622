package auth

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/user"
)

// Principal is the authenticated identity threaded through request contexts.
// There is no ambient/global current user; every scoping call receives one.
type Principal struct {
	UserID int
	Email  string
	Role   user.Role
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

// TokenRequest is the request body for the plain token endpoint
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the role-checked login: user_type must match the stored role
type LoginRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required"`
	UserType user.Role `json:"user_type" validate:"required,oneof=admin faculty student"`
}

// RefreshRequest is the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse is the response for successful authentication
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	UserType     user.Role `json:"user_type"`
}
