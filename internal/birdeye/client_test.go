package birdeye

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memecoin-hunter/internal/cache"
	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/httpclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc, c cache.Cache) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:            server.URL,
		APIKey:             "test-key",
		RateLimitPerMinute: 6000,
		MaxRetries:         0,
		Cache:              c,
		CacheTTL:           0,
		Logger:             zerolog.Nop(),
	})
	t.Cleanup(client.Close)
	return client
}

func TestClient_ListNewTokens(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/tokenlist", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "solana", r.Header.Get("x-chain"))

		q := r.URL.Query()
		assert.Equal(t, "solana", q.Get("chain"))
		assert.Equal(t, "created_time", q.Get("sort_by"))
		assert.Equal(t, "desc", q.Get("sort_type"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))

		w.Write([]byte(`{"success":true,"data":{"tokens":[
			{"address":"A1","symbol":"PEPE","name":"Pepe","liquidity":60000,"v24hUSD":150000,"creationTime":1700000000},
			{"address":"A2","symbol":"WIF","name":"Dogwifhat","liquidity":70000,"v24hUSD":250000}
		]}}`))
	}, nil)

	tokens, err := client.ListNewTokens(context.Background(), domain.ChainSolana, 50, 0)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, "PEPE", tokens[0].Symbol)
	assert.Equal(t, 150000.0, tokens[0].Volume24h)
	require.NotNil(t, tokens[0].CreationTime)
	assert.Equal(t, int64(1700000000), *tokens[0].CreationTime)
	assert.Nil(t, tokens[1].CreationTime)
}

func TestClient_ListNewTokens_NoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":null}`))
	}, nil)

	tokens, err := client.ListNewTokens(context.Background(), domain.ChainBase, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestClient_ListNewTokens_Unsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Unauthorized","data":null}`))
	}, nil)

	tokens, err := client.ListNewTokens(context.Background(), domain.ChainSolana, 50, 0)
	require.Error(t, err)
	assert.Nil(t, tokens)

	var ue *httpclient.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusOK, ue.Status)
	assert.Equal(t, "Unauthorized", ue.Body)
}

func TestClient_ListNewTokens_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}, nil)

	_, err := client.ListNewTokens(context.Background(), domain.ChainSolana, 50, 0)
	require.Error(t, err)
	assert.True(t, httpclient.IsUpstream(err))
}

func TestClient_GetDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/token_overview", r.URL.Path)
		assert.Equal(t, "A1", r.URL.Query().Get("address"))
		w.Write([]byte(`{"success":true,"data":{"address":"A1","symbol":"PEPE","name":"Pepe",
			"price":0.0012,"mc":2500000,"liquidity":80000,"v24hUSD":120000,"priceChange24hPercent":-12.5}}`))
	}, nil)

	d, err := client.GetDetail(context.Background(), "A1", domain.ChainSolana)
	require.NoError(t, err)
	assert.Equal(t, 0.0012, d.Price)
	assert.Equal(t, 2500000.0, d.MarketCap)
	assert.Equal(t, -12.5, d.PriceChange24h)
	require.NotNil(t, d.Liquidity)
	assert.Equal(t, 80000.0, *d.Liquidity)
}

func TestClient_GetDetail_ZeroVersusOmitted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"address":"A1","price":0.5,"liquidity":0}}`))
	}, nil)

	d, err := client.GetDetail(context.Background(), "A1", domain.ChainSolana)
	require.NoError(t, err)
	require.NotNil(t, d.Liquidity, "a reported zero is present")
	assert.Equal(t, 0.0, *d.Liquidity)
	assert.Nil(t, d.Volume24h, "an omitted field stays nil")
}

func TestClient_GetDetail_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"symbol":"PEPE"}}`))
	}, nil)

	_, err := client.GetDetail(context.Background(), "A1", domain.ChainSolana)
	require.Error(t, err)
	assert.True(t, httpclient.IsMalformed(err))
}

func TestClient_GetDetail_Cached(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"success":true,"data":{"address":"A1","price":1.5}}`))
	}, cache.NewMemory())

	for i := 0; i < 3; i++ {
		d, err := client.GetDetail(context.Background(), "A1", domain.ChainSolana)
		require.NoError(t, err)
		assert.Equal(t, 1.5, d.Price)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetSecurity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/token_security", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"rugPull":false,"isBlacklisted":true,
			"top10HolderPercent":72.5,"isLiquidityLocked":true}}`))
	}, nil)

	sec, err := client.GetSecurity(context.Background(), "A1", domain.ChainSolana)
	require.NoError(t, err)
	require.NotNil(t, sec)
	assert.True(t, sec.IsBlacklisted)
	assert.Equal(t, 72.5, sec.Top10HolderPercent)
}

func TestClient_GetSecurity_NoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{}}`))
	}, nil)

	sec, err := client.GetSecurity(context.Background(), "A1", domain.ChainSolana)
	require.NoError(t, err)
	assert.Nil(t, sec)
}

func TestClient_GetSecurity_Unsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"data":null}`))
	}, nil)

	sec, err := client.GetSecurity(context.Background(), "A1", domain.ChainSolana)
	require.Error(t, err)
	assert.Nil(t, sec)
	assert.True(t, httpclient.IsUpstream(err))
}
