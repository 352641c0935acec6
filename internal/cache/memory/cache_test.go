package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/skinarb/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "a8db")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := domain.CachedEntry{
		Options: []domain.SkinArbitrageOption{
			{ItemName: "Test Item", BuyMarket: "DMarket", SellMarket: "Bitskins", Profit: 5},
		},
		CachedAt: time.Now(),
	}
	require.NoError(t, c.Set(ctx, "a8db", entry))

	got, ok, err := c.Get(ctx, "a8db")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Options, 1)
	assert.Equal(t, "Test Item", got.Options[0].ItemName)
	assert.Equal(t, entry.CachedAt, got.CachedAt)
}

func TestCacheDelete(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", domain.CachedEntry{CachedAt: time.Now()}))
	c.Delete(ctx, "k")

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheOverwrite(t *testing.T) {
	c := New()
	ctx := context.Background()

	first := domain.CachedEntry{CachedAt: time.Unix(1000, 0)}
	second := domain.CachedEntry{CachedAt: time.Unix(2000, 0)}
	require.NoError(t, c.Set(ctx, "k", first))
	require.NoError(t, c.Set(ctx, "k", second))

	got, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, second.CachedAt, got.CachedAt)
}
