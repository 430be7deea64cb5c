package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conveyease/internal/core/domain"
	"conveyease/internal/pkg/jwt"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	store := seededStore(t)
	return NewAuthService(store, store, testConfig(), zap.NewNop())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	resp, err := svc.Login(ctx, &LoginInput{Email: " bob@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "user-2", resp.User.ID)
	assert.Equal(t, "supervisor", resp.User.Role)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "test-access-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
	assert.Equal(t, "Bob Supervisor", claims.Name)

	_, err = svc.Login(ctx, &LoginInput{Email: "bob@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	first, err := svc.Login(ctx, &LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, "user-1", second.User.ID)

	// replaying the rotated token revokes the whole family
	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestRefreshTokenInvalid(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	// validly signed but never stored
	unknown, err := jwt.GenerateRefreshToken("user-1", "tok-x", "test-refresh-secret", 7)
	require.NoError(t, err)
	_, err = svc.RefreshToken(context.Background(), unknown)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	resp, err := svc.Login(ctx, &LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.Error(t, err)

	assert.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestLogoutAll(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	a, err := svc.Login(ctx, &LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)
	b, err := svc.Login(ctx, &LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, "user-1"))
	for _, tok := range []string{a.RefreshToken, b.RefreshToken} {
		_, err := svc.RefreshToken(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	}
}

func TestCronPurgesStaleTokens(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	auth := NewAuthService(store, store, testConfig(), zap.NewNop())

	a, err := auth.Login(ctx, &LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)
	_, err = auth.Login(ctx, &LoginInput{Email: "bob@example.com", Password: testPassword})
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, a.RefreshToken))

	cron := NewCronService(store, zap.NewNop())
	assert.Equal(t, int64(1), cron.PurgeTokens(ctx))

	// everything is stale a year from now
	cron.now = func() time.Time { return time.Now().UTC().AddDate(1, 0, 0) }
	assert.Equal(t, int64(1), cron.PurgeTokens(ctx))
	assert.Equal(t, int64(0), cron.PurgeTokens(ctx))
}

func TestCronStartStop(t *testing.T) {
	store := seededStore(t)
	cron := NewCronService(store, zap.NewNop())
	require.NoError(t, cron.Start())
	assert.Len(t, cron.cron.Entries(), 1)
	cron.Stop()
}
