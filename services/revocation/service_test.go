package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/saasforge/authcore/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("blacklisted jti is reported", func(t *testing.T) {
		mr, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		err := svc.Blacklist(ctx, "jti-1", "logout", time.Now().Add(15*time.Minute))
		require.NoError(t, err)

		revoked, err := svc.IsBlacklisted("jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		ttl := mr.TTL("blacklist:jti-1")
		assert.Greater(t, ttl, 14*time.Minute)
		assert.LessOrEqual(t, ttl, 15*time.Minute)
	})

	t.Run("unknown jti is not blacklisted", func(t *testing.T) {
		_, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		revoked, err := svc.IsBlacklisted("unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("already expired token is a no-op", func(t *testing.T) {
		_, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		err := svc.Blacklist(ctx, "jti-2", "logout", time.Now().Add(-time.Minute))
		assert.ErrorIs(t, err, ErrAlreadyExpired)

		revoked, err := svc.IsBlacklisted("jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("entry expires with the token", func(t *testing.T) {
		mr, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		err := svc.Blacklist(ctx, "jti-3", "logout", time.Now().Add(time.Minute))
		require.NoError(t, err)

		mr.FastForward(2 * time.Minute)

		revoked, err := svc.IsBlacklisted("jti-3")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
