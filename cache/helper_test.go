package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGetSetJSON(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	var dest payload
	found, err := GetJSON(ctx, rdb, "missing", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, rdb, "item", payload{Name: "soup", Count: 3}, time.Minute))

	found, err = GetJSON(ctx, rdb, "item", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "soup", dest.Name)
	assert.Equal(t, 3, dest.Count)
}

func TestAside(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "fetched", Count: calls}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, rdb, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)

	// Second read is served from cache, fetch not called again.
	var second payload
	require.NoError(t, Aside(ctx, rdb, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	Invalidate(ctx, rdb, "k")

	var third payload
	require.NoError(t, Aside(ctx, rdb, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestNilClientIsDisabledCache(t *testing.T) {
	ctx := context.Background()

	var dest payload
	found, err := GetJSON(ctx, nil, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(ctx, nil, "k", payload{}, time.Minute))
	Invalidate(ctx, nil, "k")

	calls := 0
	require.NoError(t, Aside(ctx, nil, "k", &dest, time.Minute, func() error {
		calls++
		dest = payload{Name: "direct"}
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "direct", dest.Name)
}
