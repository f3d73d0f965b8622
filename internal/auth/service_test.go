package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/notashwinii/kucms-backend/internal/testutil"
	"github.com/notashwinii/kucms-backend/internal/user"
)

func seedUser(t *testing.T, pg *testutil.PostgresContainer, email, password string, role user.Role, active bool) *user.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	u := &user.User{
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: active,
	}
	_, err = pg.DB.NewInsert().Model(u).Exec(context.Background())
	require.NoError(t, err)
	return u
}

func TestAuthService(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")

	pg := testutil.SetupSharedPostgres(t)
	defer pg.Cleanup(t)

	pg.RunMigrations(t, (*user.User)(nil), (*RefreshToken)(nil))

	userRepo := user.NewRepository(pg.DB)
	svc := NewService(NewRepository(pg.DB), userRepo)
	ctx := context.Background()

	t.Run("Token_Success", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "refresh_tokens", "users")
		seedUser(t, pg, "admin@ku.edu.np", "secret123", user.RoleAdmin, true)

		resp, err := svc.Token(ctx, TokenRequest{Email: "admin@ku.edu.np", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, user.RoleAdmin, resp.UserType)

		claims, err := ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin@ku.edu.np", claims.Email)
	})

	t.Run("Token_WrongPassword", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "refresh_tokens", "users")
		seedUser(t, pg, "admin@ku.edu.np", "secret123", user.RoleAdmin, true)

		_, err := svc.Token(ctx, TokenRequest{Email: "admin@ku.edu.np", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Token_InactiveUser", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "refresh_tokens", "users")
		seedUser(t, pg, "gone@ku.edu.np", "secret123", user.RoleStudent, false)

		_, err := svc.Token(ctx, TokenRequest{Email: "gone@ku.edu.np", Password: "secret123"})
		assert.ErrorIs(t, err, ErrInactiveUser)
	})

	t.Run("Login_UserTypeMismatch", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "refresh_tokens", "users")
		seedUser(t, pg, "stud@ku.edu.np", "secret123", user.RoleStudent, true)

		_, err := svc.Login(ctx, LoginRequest{
			Email: "stud@ku.edu.np", Password: "secret123", UserType: user.RoleFaculty,
		})
		assert.ErrorIs(t, err, ErrUserTypeMismatch)

		resp, err := svc.Login(ctx, LoginRequest{
			Email: "stud@ku.edu.np", Password: "secret123", UserType: user.RoleStudent,
		})
		require.NoError(t, err)
		assert.Equal(t, user.RoleStudent, resp.UserType)
	})

	t.Run("Refresh_RoundTrip", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "refresh_tokens", "users")
		seedUser(t, pg, "admin@ku.edu.np", "secret123", user.RoleAdmin, true)

		first, err := svc.Token(ctx, TokenRequest{Email: "admin@ku.edu.np", Password: "secret123"})
		require.NoError(t, err)

		refreshed, err := svc.RefreshAccessToken(ctx, first.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
	})

	t.Run("Logout_InvalidatesToken", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "refresh_tokens", "users")
		seedUser(t, pg, "admin@ku.edu.np", "secret123", user.RoleAdmin, true)

		resp, err := svc.Token(ctx, TokenRequest{Email: "admin@ku.edu.np", Password: "secret123"})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, resp.RefreshToken))

		_, err = svc.RefreshAccessToken(ctx, resp.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}
