package twofactor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisSessionStore(client, WithSessionKeyPrefix("test:twofactor:enrollment:"))

	t.Run("contract", func(t *testing.T) {
		testSessionStore(t, store)
	})

	t.Run("ttl follows the session", func(t *testing.T) {
		ctx := context.Background()
		e := &Enrollment{ID: "ttl-" + time.Now().Format("150405.000000000"), AccountID: "acct-1"}
		require.NoError(t, store.Create(ctx, e, time.Minute))
		t.Cleanup(func() { _ = store.Delete(ctx, e.ID) })

		ttl, err := client.TTL(ctx, "test:twofactor:enrollment:"+e.ID).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("full service flow", func(t *testing.T) {
		svc := NewService(NewMemoryStorage(), store, testCipher(t))
		ctx := context.Background()

		view, err := svc.Open(ctx, "acct-redis", "jane")
		require.NoError(t, err)
		code, err := generateCode(view.Secret.Key)
		require.NoError(t, err)
		_, err = svc.Submit(ctx, view.ID, "acct-redis", code)
		require.NoError(t, err)
		codes, err := svc.ShowRecoveryCodes(ctx, view.ID, "acct-redis")
		require.NoError(t, err)
		assert.Len(t, codes, RecoveryCodeCount)
		status, err := svc.Confirm(ctx, view.ID, "acct-redis")
		require.NoError(t, err)
		assert.True(t, status.Enabled)
	})
}
