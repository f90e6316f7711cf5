package services

import (
	"testing"
	"time"

	"ebanking/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.Username = "operator"
	cfg.Auth.PasswordHash = string(hash)
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpiresIn = 1
	return NewAuthService(cfg)
}

func TestSignInAndParseToken(t *testing.T) {
	auth := newTestAuthService(t)

	token, err := auth.SignIn("operator", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "operator", claims.Subject)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.SignIn("operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.SignIn("intruder", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	auth := newTestAuthService(t)

	issued := time.Now()
	auth.now = func() time.Time { return issued }
	token, err := auth.SignIn("operator", "s3cret")
	require.NoError(t, err)

	auth.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = auth.ParseToken(token)
	assert.Error(t, err)

	auth.now = time.Now
	other := newTestAuthService(t)
	other.secret = []byte("another-secret")
	foreign, err := other.SignIn("operator", "s3cret")
	require.NoError(t, err)
	_, err = auth.ParseToken(foreign)
	assert.Error(t, err)

	_, err = auth.ParseToken("not-a-token")
	assert.Error(t, err)
}
