package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/treatly/backend-treats/internal/catalog"
)

func TestCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	items, err := catalog.LoadFile(filepath.Join("testdata", "treats_sales.json"))
	require.NoError(t, err)

	cache := catalog.NewCache(client, time.Minute)
	ctx := context.Background()

	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, cache.Set(ctx, items))

	cached, found, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, cached, len(items))
	require.Equal(t, "Cookie", cached[2].Name)
	require.NotNil(t, cached[2].Sale)
	require.Equal(t, catalog.DiscountQuantityForFixedPrice, cached[2].Sale.Price.Kind)
	require.True(t, cached[2].UnitPrice.Equal(items[2].UnitPrice))

	require.Greater(t, mr.TTL(catalog.CacheKey), time.Duration(0))
}
