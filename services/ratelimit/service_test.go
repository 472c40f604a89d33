package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/saasforge/authcore/testutils"
	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to max within a window", func(t *testing.T) {
		_, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		for i := 0; i < 5; i++ {
			assert.True(t, svc.Allow(ctx, "login:rate:a@x.com", 5, time.Minute), "attempt %d", i+1)
		}
		assert.False(t, svc.Allow(ctx, "login:rate:a@x.com", 5, time.Minute))
		assert.False(t, svc.Allow(ctx, "login:rate:a@x.com", 5, time.Minute))
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		mr, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		for i := 0; i < 6; i++ {
			svc.Allow(ctx, "key", 5, time.Minute)
		}
		assert.False(t, svc.Allow(ctx, "key", 5, time.Minute))

		mr.FastForward(2 * time.Minute)
		assert.True(t, svc.Allow(ctx, "key", 5, time.Minute))
	})

	t.Run("keys are independent", func(t *testing.T) {
		_, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)

		for i := 0; i < 6; i++ {
			svc.Allow(ctx, "key-a", 5, time.Minute)
		}
		assert.False(t, svc.Allow(ctx, "key-a", 5, time.Minute))
		assert.True(t, svc.Allow(ctx, "key-b", 5, time.Minute))
	})

	t.Run("fails open when the cache is down", func(t *testing.T) {
		mr, client := testutils.SetupTestRedis(t)
		svc := NewService(client, nil)
		mr.Close()

		assert.True(t, svc.Allow(ctx, "key", 5, time.Minute))
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	_, client := testutils.SetupTestRedis(t)
	svc := NewService(client, nil)

	for i := 0; i < 6; i++ {
		svc.Allow(ctx, "key", 5, time.Minute)
	}
	assert.False(t, svc.Allow(ctx, "key", 5, time.Minute))

	svc.Reset(ctx, "key")
	assert.True(t, svc.Allow(ctx, "key", 5, time.Minute))
}
