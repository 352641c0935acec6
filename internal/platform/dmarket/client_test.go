package dmarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/skinarb/internal/domain"
)

func TestGetMarketItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange/v1/market/items", r.URL.Path)
		assert.Equal(t, "a8db", r.URL.Query().Get("gameId"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		w.Write([]byte(`{"objects":[
			{"itemId":"item1","title":"Test Item 1","gameId":"a8db",
			 "price":{"USD":10.5},"extra":{"salesPerDay":5},"category":"weapon","rarity":"rare"},
			{"item_id":"item2","title":"Test Item 2","game":"a8db",
			 "prices":{"USD":5.0},"liquidity":3}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "")
	items, err := c.GetMarketItems(context.Background(), "a8db", 50, 0, "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "item1", items[0].ID())
	assert.InDelta(t, 10.5, items[0].PriceUSD(), 1e-9)
	assert.InDelta(t, 5.0, items[0].LiquidityScore(), 1e-9)

	assert.Equal(t, "item2", items[1].ID())
	assert.InDelta(t, 5.0, items[1].PriceUSD(), 1e-9)
	assert.InDelta(t, 3.0, items[1].LiquidityScore(), 1e-9)
}

func TestSignedRequestHeaders(t *testing.T) {
	var gotSign, gotDate, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotSign = r.Header.Get("X-Request-Sign")
		gotDate = r.Header.Get("X-Sign-Date")
		w.Write([]byte(`{"objects":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	_, err := c.GetMarketItems(context.Background(), "a8db", 10, 0, "USD")
	require.NoError(t, err)

	assert.Equal(t, "key", gotKey)
	assert.NotEmpty(t, gotSign)
	assert.NotEmpty(t, gotDate)
	// HMAC-SHA256 hex digest.
	assert.Len(t, gotSign, 64)
}

func TestUnsignedWithoutSecret(t *testing.T) {
	var gotSign string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSign = r.Header.Get("X-Request-Sign")
		w.Write([]byte(`{"objects":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "")
	_, err := c.GetMarketItems(context.Background(), "a8db", 10, 0, "USD")
	require.NoError(t, err)
	assert.Empty(t, gotSign)
}

func TestRetryOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"slow down","code":"RATE_LIMIT"}`))
			return
		}
		w.Write([]byte(`{"objects":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "")
	_, err := c.GetMarketItems(context.Background(), "a8db", 10, 0, "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUnauthorizedNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad key","code":"UNAUTHORIZED"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	_, err := c.GetMarketItems(context.Background(), "a8db", 10, 0, "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/v1/balance", r.URL.Path)
		w.Write([]byte(`{"usd":"12345"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	cents, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12345), cents)
}
