package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/models"
)

func jwtTestConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 24
	cfg.JWT.Issuer = "jollybaba-backend"
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(jwtTestConfig("test-secret"))

	token, err := mgr.GenerateToken(&models.Technician{
		ID:    3,
		Email: "tech@shop.in",
		Name:  "Tech One",
		Role:  "technician",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, 3, claims.UserID)
	require.Equal(t, "tech@shop.in", claims.Email)
	require.Equal(t, "Tech One", claims.Name)
	require.Equal(t, "technician", claims.Role)
	require.Equal(t, "jollybaba-backend", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager(jwtTestConfig("secret-a")).GenerateToken(&models.Technician{ID: 1})
	require.NoError(t, err)

	_, err = NewJWTManager(jwtTestConfig("secret-b")).ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager(jwtTestConfig("s")).ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	require.True(t, VerifyPassword(hash, "hunter2"))
	require.False(t, VerifyPassword(hash, "wrong"))
}
