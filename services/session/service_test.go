package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/saasforge/authcore/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr, client := testutils.SetupTestRedis(t)
	return NewService(client, testutils.GetTestConfig(), nil), mr
}

func TestStart(t *testing.T) {
	svc, mr := setupTestService(t)
	ctx := context.Background()

	token, err := svc.Start(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "user-1:"))

	// Only a hash is at rest, never the token itself.
	stored, err := mr.Get("refresh:user-1")
	require.NoError(t, err)
	assert.NotEqual(t, token, stored)
	assert.Len(t, stored, 64)

	ttl := mr.TTL("refresh:user-1")
	assert.Greater(t, ttl, 719*time.Hour)
}

func TestStart_SupersedesPriorSession(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Start(ctx, "user-1")
	require.NoError(t, err)

	// The superseded token now mismatches, which reads as reuse.
	_, _, err = svc.Rotate(ctx, first)
	assert.ErrorIs(t, err, ErrReuseDetected)
}

func TestRotate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token rotates", func(t *testing.T) {
		svc, _ := setupTestService(t)

		token, err := svc.Start(ctx, "user-1")
		require.NoError(t, err)

		userID, newToken, err := svc.Rotate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
		assert.NotEqual(t, token, newToken)
		assert.True(t, strings.HasPrefix(newToken, "user-1:"))
	})

	t.Run("rotated token can itself rotate", func(t *testing.T) {
		svc, _ := setupTestService(t)

		token, err := svc.Start(ctx, "user-1")
		require.NoError(t, err)

		_, second, err := svc.Rotate(ctx, token)
		require.NoError(t, err)
		_, third, err := svc.Rotate(ctx, second)
		require.NoError(t, err)
		assert.NotEqual(t, second, third)
	})

	t.Run("superseded token destroys the session", func(t *testing.T) {
		svc, mr := setupTestService(t)

		token, err := svc.Start(ctx, "user-1")
		require.NoError(t, err)

		_, newToken, err := svc.Rotate(ctx, token)
		require.NoError(t, err)

		_, _, err = svc.Rotate(ctx, token)
		assert.ErrorIs(t, err, ErrReuseDetected)

		assert.False(t, mr.Exists("refresh:user-1"))

		// The legitimately rotated token is dead too.
		_, _, err = svc.Rotate(ctx, newToken)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("no session", func(t *testing.T) {
		svc, _ := setupTestService(t)

		_, _, err := svc.Rotate(ctx, "user-1:deadbeef")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("malformed token", func(t *testing.T) {
		svc, _ := setupTestService(t)

		for _, malformed := range []string{"", "no-separator", ":missing-user", "user-1:"} {
			_, _, err := svc.Rotate(ctx, malformed)
			assert.ErrorIs(t, err, ErrMalformedToken, "token %q", malformed)
		}
	})
}

func TestEnd(t *testing.T) {
	svc, mr := setupTestService(t)
	ctx := context.Background()

	token, err := svc.Start(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.End(ctx, "user-1"))
	assert.False(t, mr.Exists("refresh:user-1"))

	_, _, err = svc.Rotate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Ending an absent session is fine.
	assert.NoError(t, svc.End(ctx, "user-1"))
}

func TestUserIDFromToken(t *testing.T) {
	userID, err := UserIDFromToken("user-1:abc123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = UserIDFromToken("bare")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
