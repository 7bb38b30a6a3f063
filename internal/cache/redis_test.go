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

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissFetchesAndStores(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	fetched := 0
	var got cachedThing
	err := Aside(ctx, "thing:1", &got, time.Minute, func() error {
		fetched++
		got = cachedThing{ID: 1, Name: "first"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, "first", got.Name)
	assert.True(t, mr.Exists("thing:1"))

	// Second call must be served from cache.
	var again cachedThing
	err = Aside(ctx, "thing:1", &again, time.Minute, func() error {
		fetched++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, "first", again.Name)
}

func TestAside_NilClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetched := 0
	var got cachedThing
	for i := 0; i < 2; i++ {
		err := Aside(ctx, "thing:2", &got, time.Minute, func() error {
			fetched++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fetched)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ContentKey(7), cachedThing{ID: 7}, time.Minute))
	require.True(t, mr.Exists("content:7"))

	InvalidateContent(ctx, 7)
	assert.False(t, mr.Exists("content:7"))
}
