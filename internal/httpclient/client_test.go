package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/tokenlist", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("chain"))
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer server.Close()

	client := New("test", server.URL, WithHeader("X-API-KEY", "secret"), WithRateLimit(0))
	defer client.Close()

	var out payload
	err := client.GetJSON(context.Background(), "/defi/tokenlist", url.Values{"chain": {"solana"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Value)
}

func TestClient_GetJSON_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad address"))
	}))
	defer server.Close()

	client := New("test", server.URL, WithRateLimit(0), WithRetryDelay(time.Millisecond))
	defer client.Close()

	err := client.GetJSON(context.Background(), "x", nil, &payload{})
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusBadRequest, ue.Status)
	assert.Equal(t, "bad address", ue.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetJSON_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New("test", server.URL,
		WithRateLimit(0),
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond),
	)
	defer client.Close()

	err := client.GetJSON(context.Background(), "x", nil, &payload{})
	assert.True(t, IsUpstream(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GetJSON_RetrySucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"value":"second"}`))
	}))
	defer server.Close()

	client := New("test", server.URL, WithRateLimit(0), WithRetryDelay(time.Millisecond))
	defer client.Close()

	var out payload
	require.NoError(t, client.GetJSON(context.Background(), "x", nil, &out))
	assert.Equal(t, "second", out.Value)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GetJSON_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := New("test", server.URL, WithRateLimit(0))
	defer client.Close()

	err := client.GetJSON(context.Background(), "x", nil, &payload{})
	assert.True(t, IsMalformed(err))
	assert.Equal(t, "malformed", Kind(err))
}

func TestClient_GetJSON_Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := New("test", addr, WithRateLimit(0), WithMaxRetries(0))
	defer client.Close()

	err := client.GetJSON(context.Background(), "x", nil, &payload{})
	assert.True(t, IsTransport(err))
	assert.False(t, IsUpstream(err))
}

func TestClient_RateLimitFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	// 600 per minute = one request every 100ms.
	client := New("test", server.URL, WithRateLimit(600))
	defer client.Close()

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, client.GetJSON(ctx, "x", nil, nil))
	}
	assert.GreaterOrEqual(t, time.Since(start), 190*time.Millisecond)
}

func TestClient_RateLimitIsPerClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	slow := New("slow", server.URL, WithRateLimit(1))
	defer slow.Close()
	fast := New("fast", server.URL, WithRateLimit(6000))
	defer fast.Close()

	ctx := context.Background()
	require.NoError(t, slow.GetJSON(ctx, "x", nil, nil))

	// slow's next slot is a minute away; fast must not wait for it.
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, fast.GetJSON(ctx, "x", nil, nil))
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_RateLimitWaitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New("test", server.URL, WithRateLimit(1), WithMaxRetries(0))
	defer client.Close()

	require.NoError(t, client.GetJSON(context.Background(), "x", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.GetJSON(ctx, "x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsTransport(err))
	assert.Equal(t, "cancelled", Kind(err))
}

func TestClient_RateLimitWaitCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New("test", server.URL, WithRateLimit(1), WithMaxRetries(0))
	defer client.Close()

	require.NoError(t, client.GetJSON(context.Background(), "x", nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.GetJSON(ctx, "x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTransport(err))
	assert.Equal(t, "cancelled", Kind(err))
}

func TestClient_CancelledInFlightIsNotTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New("test", server.URL, WithRateLimit(0), WithMaxRetries(2), WithRetryDelay(time.Millisecond))
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.GetJSON(ctx, "x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsCallerCancelled(err))
	assert.Equal(t, "cancelled", Kind(err))
}

func TestIsCallerCancelled_ClientTimeoutStaysTransport(t *testing.T) {
	err := &TransportError{Method: "GET", URL: "/x", Err: context.DeadlineExceeded}
	assert.False(t, IsCallerCancelled(err))
	assert.Equal(t, "transport", Kind(err))
}

func TestClient_CloseOnce(t *testing.T) {
	client := New("test", "http://127.0.0.1:1")
	client.Close()
	client.Close()

	err := client.GetJSON(context.Background(), "x", nil, nil)
	assert.ErrorIs(t, err, ErrClientClosed)
}
