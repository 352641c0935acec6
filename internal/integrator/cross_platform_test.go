package integrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/skinarb/internal/domain"
	"github.com/dkotenko/skinarb/internal/platform/dmarket"
)

func listing(id, title string, price, liquidity float64) dmarket.RawItem {
	return dmarket.RawItem{
		ItemID:    id,
		Title:     title,
		Prices:    map[string]float64{"USD": price},
		Liquidity: liquidity,
	}
}

func TestCrossPlatformFindsPriceGap(t *testing.T) {
	primary := &fakeAdapter{items: []dmarket.RawItem{listing("d1", "AK-47 Redline", 10.0, 5)}}
	secondary := map[string]MarketAdapter{
		"Bitskins": &fakeAdapter{items: []dmarket.RawItem{listing("b1", "AK-47 Redline", 15.0, 3)}},
	}
	in := newTestIntegrator(primary, secondary, time.Minute)

	options := in.GetCrossPlatformArbitrage(context.Background(), domain.GameCS2, false)
	require.Len(t, options, 1)
	opt := options[0]

	assert.Equal(t, "AK-47 Redline", opt.ItemName)
	assert.Equal(t, "DMarket", opt.BuyMarket)
	assert.Equal(t, "Bitskins", opt.SellMarket)
	assert.InDelta(t, 10.0, opt.BuyPrice, 1e-9)
	assert.InDelta(t, 15.0, opt.SellPrice, 1e-9)
	// Net of the 5% sell fee: 15*0.95 - 10 = 4.25.
	assert.InDelta(t, 4.25, opt.Profit, 1e-9)
	assert.InDelta(t, 42.5, opt.ProfitPercent, 1e-9)
	assert.InDelta(t, 3.0, opt.Liquidity, 1e-9)
	assert.Equal(t, domain.GameCS2, opt.Game)
}

func TestCrossPlatformNoGapNoOptions(t *testing.T) {
	primary := &fakeAdapter{items: []dmarket.RawItem{listing("d1", "AK-47 Redline", 10.0, 5)}}
	secondary := map[string]MarketAdapter{
		"Bitskins": &fakeAdapter{items: []dmarket.RawItem{listing("b1", "AK-47 Redline", 10.2, 3)}},
	}
	in := newTestIntegrator(primary, secondary, time.Minute)

	// 10.2*0.95 = 9.69 < 10 and 10*0.95 = 9.5 < 10.2: no profitable direction.
	options := in.GetCrossPlatformArbitrage(context.Background(), domain.GameCS2, false)
	assert.Empty(t, options)
}

func TestCrossPlatformCacheHit(t *testing.T) {
	primary := &fakeAdapter{items: []dmarket.RawItem{listing("d1", "Item", 10.0, 5)}}
	bitskins := &fakeAdapter{items: []dmarket.RawItem{listing("b1", "Item", 15.0, 3)}}
	in := newTestIntegrator(primary, map[string]MarketAdapter{"Bitskins": bitskins}, time.Minute)
	ctx := context.Background()

	first := in.GetCrossPlatformArbitrage(ctx, domain.GameCS2, false)
	require.Len(t, first, 1)
	assert.Equal(t, 1, primary.calls)

	// Fresh cache: no adapter calls on the second read.
	second := in.GetCrossPlatformArbitrage(ctx, domain.GameCS2, false)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, bitskins.calls)
}

func TestCrossPlatformStaleCacheRecomputes(t *testing.T) {
	primary := &fakeAdapter{items: []dmarket.RawItem{listing("d1", "Item", 10.0, 5)}}
	in := newTestIntegrator(primary, nil, time.Nanosecond)
	ctx := context.Background()

	in.GetCrossPlatformArbitrage(ctx, domain.GameCS2, false)
	time.Sleep(time.Millisecond)
	in.GetCrossPlatformArbitrage(ctx, domain.GameCS2, false)

	assert.Equal(t, 2, primary.calls)
}

func TestCrossPlatformForceUpdateBypassesCache(t *testing.T) {
	primary := &fakeAdapter{items: []dmarket.RawItem{listing("d1", "Item", 10.0, 5)}}
	in := newTestIntegrator(primary, nil, time.Hour)
	ctx := context.Background()

	in.GetCrossPlatformArbitrage(ctx, domain.GameCS2, false)
	in.GetCrossPlatformArbitrage(ctx, domain.GameCS2, true)

	assert.Equal(t, 2, primary.calls)
}

func TestCrossPlatformVenueFailureSwallowed(t *testing.T) {
	primary := &fakeAdapter{items: []dmarket.RawItem{listing("d1", "Item", 10.0, 5)}}
	broken := &fakeAdapter{err: errors.New("connection refused")}
	in := newTestIntegrator(primary, map[string]MarketAdapter{"Bitskins": broken}, time.Minute)

	options := in.GetCrossPlatformArbitrage(context.Background(), domain.GameCS2, false)
	assert.Empty(t, options)
	assert.Equal(t, int64(1), in.SwallowedFailures())
}
