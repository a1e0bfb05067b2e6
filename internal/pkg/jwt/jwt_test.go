package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 5*time.Minute)

	token, expiresIn, err := svc.GenerateSSEToken("kiosk-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	subject, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "kiosk-1", subject)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 5*time.Minute)

	access, _, err := svc.GenerateAccessToken("admin", true)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)
}

func TestValidateSSEToken_RejectsOtherSecret(t *testing.T) {
	issuer := NewJWTService("secret", time.Hour, 5*time.Minute)
	verifier := NewJWTService("other", time.Hour, 5*time.Minute)

	token, _, err := issuer.GenerateSSEToken("kiosk-1")
	require.NoError(t, err)

	_, err = verifier.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 5*time.Minute)

	tokenString, expiresAt, err := svc.GenerateAccessToken("admin", true)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "admin", token.Subject())

	isAdmin, ok := token.Get("is_admin")
	require.True(t, ok)
	assert.Equal(t, true, isAdmin)

	tokenType, _ := token.Get("type")
	assert.Equal(t, TypeAccess, tokenType)
}
