package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/config"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

func testJWTService(secret string) *JWTService {
	return NewJWTServiceFromConfig(&config.JWTConfig{
		SecretKey:      secret,
		AccessTokenTTL: time.Hour,
		Issuer:         "siivi-test",
		Audience:       []string{"siivi-app"},
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testJWTService("test-secret-key")
	userID := kernel.NewUserID("user-123")

	token, err := svc.GenerateAccessToken(userID, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := testJWTService("key-one").GenerateAccessToken(kernel.NewUserID("u1"), "a@b.com")
	require.NoError(t, err)

	_, err = testJWTService("key-two").ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testJWTService("key").ValidateAccessToken("not.a.token")
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTServiceFromConfig(&config.JWTConfig{
		SecretKey:      "key",
		AccessTokenTTL: -time.Minute,
		Issuer:         "siivi-test",
	})

	token, err := svc.GenerateAccessToken(kernel.NewUserID("u1"), "a@b.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}
