package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

func testTokenService() *TokenService {
	return NewTokenService(config.AuthConfig{
		AccessSecret:  "access-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshExpiry: 240 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@x.com",
	}
}

func TestIssuePair(t *testing.T) {
	svc := testTokenService()

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}

func TestVerifyAccess(t *testing.T) {
	svc := testTokenService()

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@x.com", claims.Email)
}

func TestVerifyRefresh(t *testing.T) {
	svc := testTokenService()

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	claims, err := svc.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokensUseDistinctSecrets(t *testing.T) {
	svc := testTokenService()

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	// An access token must not verify as a refresh token and vice versa.
	_, err = svc.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRefreshFailuresAreNormalized(t *testing.T) {
	svc := testTokenService()

	otherSvc := NewTokenService(config.AuthConfig{
		AccessSecret:  "other-access",
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: "other-refresh",
		RefreshExpiry: 240 * time.Hour,
	})
	forged, err := otherSvc.IssuePair(testUser())
	require.NoError(t, err)

	expiredSvc := NewTokenService(config.AuthConfig{
		AccessSecret:  "access-secret",
		AccessExpiry:  -time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshExpiry: -time.Minute,
	})
	expired, err := expiredSvc.IssuePair(testUser())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"wrong secret", forged.RefreshToken},
		{"expired", expired.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyRefresh(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secr3t!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!", hash)

	assert.True(t, CheckPassword("Secr3t!", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
