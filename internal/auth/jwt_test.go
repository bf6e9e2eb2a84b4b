package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(accessExp, refreshExp time.Duration) *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "SkillMatch", "SkillMatch", accessExp, refreshExp)
}

func TestGenerateTokens_RoundTrip(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 24*time.Hour)

	access, refresh, err := a.GenerateTokens(42, "Coach")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := a.ValidateAccessToken(access)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "Coach", claims["user_type"])
	assert.Equal(t, "SkillMatch", claims["iss"])
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 24*time.Hour)

	_, refresh, err := a.GenerateTokens(42, "Player")
	require.NoError(t, err)

	// Signed with the refresh secret, so it must not pass access validation.
	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	a := newTestAuthenticator(-time.Minute, 24*time.Hour)

	access, _, err := a.GenerateTokens(42, "Player")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 24*time.Hour)
	b := NewJWTAuthenticator("other-secret", "refresh-secret", "SkillMatch", "SkillMatch", time.Hour, 24*time.Hour)

	access, _, err := a.GenerateTokens(42, "Player")
	require.NoError(t, err)

	_, err = b.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 24*time.Hour)

	_, refresh, err := a.GenerateTokens(42, "Player")
	require.NoError(t, err)

	token, err := a.ValidateRefreshToken(refresh)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
}
