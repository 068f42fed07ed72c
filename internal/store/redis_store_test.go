package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"pocketchat/internal/model"
	"pocketchat/internal/store"
)

// unreachableRedisClient returns a client whose dials fail fast, for
// exercising behavior when the backend cannot be read.
func unreachableRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisStore_MutationWithCanceledContextFails(t *testing.T) {
	st := store.NewRedisStore(unreachableRedisClient(t))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.Put(canceled, model.Conversation{ID: "conv1"})
	require.ErrorIs(t, err, context.Canceled)
	err = st.Remove(canceled, "conv1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRedisStore_MutationAbortsWhenCollectionUnreadable(t *testing.T) {
	ctx := context.Background()
	st := store.NewRedisStore(unreachableRedisClient(t))

	// A mutation that cannot read the current collection must fail instead
	// of writing back an empty one.
	require.Error(t, st.Put(ctx, model.Conversation{ID: "conv1"}))
	require.Error(t, st.Remove(ctx, "conv1"))
}
