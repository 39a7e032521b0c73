package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/genson/pkg/adapters/memory"
	"github.com/aretw0/genson/pkg/adapters/redis"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/ports"
	contract "github.com/aretw0/genson/pkg/ports/tests"
	"github.com/aretw0/genson/pkg/schema"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SchemaLoader = (*redis.Loader)(nil)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Loader) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	loader := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = loader.Close() })
	return mr, loader
}

func TestRedisLoader_Contract(t *testing.T) {
	_, loader := setup(t)

	data := map[string]string{
		"world": `{"title":"World","slot":["town"]}`,
		"town":  `{"title":"Town"}`,
	}
	n, err := loader.Publish(context.Background(), memory.NewLoader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expected := make(map[string][]byte)
	for k, v := range data {
		expected[k] = []byte(v)
	}
	contract.SchemaLoaderContractTest(t, loader, expected)
}

func TestRedisLoader_KeepsPublishedOrder(t *testing.T) {
	mr, loader := setup(t, redis.WithPrefix("test:"))

	src := memory.NewLoader(map[string]string{
		"a": `{"title":"A"}`, "b": `{"title":"B"}`, "c": `{"slot":["a"]}`,
	}, "c", "a", "b")
	_, err := loader.Publish(context.Background(), src)
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:node:c"))
	assert.True(t, mr.Exists("test:index"))

	keys, err := loader.ListNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, keys)

	s, err := schema.Load(loader)
	require.NoError(t, err)
	assert.Equal(t, "c", s.RootKey())
}

func TestRedisLoader_PublishDropsStaleNodes(t *testing.T) {
	mr, loader := setup(t)
	ctx := context.Background()

	_, err := loader.Publish(ctx, memory.NewLoader(map[string]string{"old": `{}`, "kept": `{}`}))
	require.NoError(t, err)
	_, err = loader.Publish(ctx, memory.NewLoader(map[string]string{"kept": `{"title":"v2"}`}))
	require.NoError(t, err)

	assert.False(t, mr.Exists(redis.DefaultPrefix+"node:old"))
	keys, err := loader.ListNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, keys)

	data, err := loader.GetNode("kept")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"v2"}`, string(data))

	_, err = loader.GetNode("old")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestRedisLoader_PublishWaitsForLock(t *testing.T) {
	mr, loader := setup(t, redis.WithPrefix("p:"))

	// Another publisher holds the lock.
	require.NoError(t, mr.Set("p:lock:publish", "someone-else"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := loader.Publish(ctx, memory.NewLoader(map[string]string{"a": `{}`}))
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Once released the publish goes through and the lock is cleaned up.
	mr.Del("p:lock:publish")
	_, err = loader.Publish(context.Background(), memory.NewLoader(map[string]string{"a": `{}`}))
	require.NoError(t, err)
	assert.False(t, mr.Exists("p:lock:publish"))
}

func TestRedisLoader_BackendErrors(t *testing.T) {
	mr, loader := setup(t, redis.WithReadTimeout(time.Second))
	mr.Close()

	_, err := loader.GetNode("a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNodeNotFound)

	_, err = loader.ListNodes()
	assert.Error(t, err)
}
