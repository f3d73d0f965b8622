package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/notashwinii/kucms-backend/internal/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserTypeMismatch    = errors.New("invalid user type")
	ErrInactiveUser        = errors.New("user account is inactive")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type Service struct {
	authRepo *Repository
	users    user.Repository
}

func NewService(authRepo *Repository, users user.Repository) *Service {
	return &Service{
		authRepo: authRepo,
		users:    users,
	}
}

// Token authenticates by email and password only.
func (s *Service) Token(ctx context.Context, req TokenRequest) (*AuthResponse, error) {
	u, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, u)
}

// Login authenticates and additionally verifies that the claimed user_type
// matches the stored role.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if u.Role != req.UserType {
		return nil, ErrUserTypeMismatch
	}
	return s.generateTokenPair(ctx, u)
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

// RefreshAccessToken generates a new token pair using a refresh token
func (s *Service) RefreshAccessToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	refreshToken, err := s.authRepo.GetRefreshToken(ctx, refreshTokenString)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, refreshToken.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.generateTokenPair(ctx, u)
}

// Logout invalidates a refresh token
func (s *Service) Logout(ctx context.Context, refreshTokenString string) error {
	return s.authRepo.DeleteRefreshToken(ctx, refreshTokenString)
}

// LogoutAll invalidates all refresh tokens for a user
func (s *Service) LogoutAll(ctx context.Context, userID int) error {
	return s.authRepo.DeleteAllUserTokens(ctx, userID)
}

func (s *Service) generateTokenPair(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	if err := s.authRepo.CreateRefreshToken(ctx, u.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserType:     u.Role,
	}, nil
}
