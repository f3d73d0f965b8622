package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/user"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")

	u := &user.User{
		ID:    42,
		Email: "jane.faculty@ku.edu.np",
		Role:  user.RoleFaculty,
	}

	token, err := GenerateAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "jane.faculty@ku.edu.np", claims.Email)
	assert.Equal(t, user.RoleFaculty, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")

	token, err := GenerateAccessToken(&user.User{ID: 1, Email: "a@b.c", Role: user.RoleStudent})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")

	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")

	_, err := ValidateAccessToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
