// Package birdeye is the market and security data provider client.
package birdeye

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/cache"
	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/httpclient"
)

// Source is the upstream name used in errors, logs and metrics.
const Source = "birdeye"

const (
	listEndpoint     = "/defi/tokenlist"
	overviewEndpoint = "/defi/token_overview"
	securityEndpoint = "/defi/token_security"
)

// Options configures Client.
type Options struct {
	BaseURL            string
	APIKey             string
	RateLimitPerMinute int
	Timeout            time.Duration
	MaxRetries         int
	Cache              cache.Cache // optional
	CacheTTL           time.Duration
	Logger             zerolog.Logger
}

// Client lists new tokens and fetches per-token overview and security data.
type Client struct {
	http     *httpclient.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// New creates a Client. The API key is sent on every request.
func New(opts Options) *Client {
	logger := opts.Logger.With().Str("component", Source).Logger()

	httpOpts := []httpclient.Option{
		httpclient.WithRateLimit(opts.RateLimitPerMinute),
		httpclient.WithMaxRetries(opts.MaxRetries),
		httpclient.WithLogger(logger),
		httpclient.WithHeader("X-API-KEY", opts.APIKey),
	}
	if opts.Timeout > 0 {
		httpOpts = append(httpOpts, httpclient.WithTimeout(opts.Timeout))
	}

	return &Client{
		http:     httpclient.New(Source, opts.BaseURL, httpOpts...),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenList struct {
	Tokens []domain.RawToken `json:"tokens"`
}

// ListNewTokens returns the most recently created tokens on chain, newest first.
func (c *Client) ListNewTokens(ctx context.Context, chain domain.Chain, pageSize, offset int) ([]domain.RawToken, error) {
	params := url.Values{}
	params.Set("chain", chain.String())
	params.Set("sort_by", "created_time")
	params.Set("sort_type", "desc")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(pageSize))

	data, err := c.get(ctx, listEndpoint, chain, params)
	if err != nil {
		return nil, err
	}
	if isEmpty(data) {
		return []domain.RawToken{}, nil
	}

	var list tokenList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &httpclient.MalformedDataError{Source: Source, Reason: fmt.Sprintf("token list: %v", err)}
	}
	return list.Tokens, nil
}

// GetDetail returns the market overview of address on chain.
// A response with neither address nor price is *httpclient.MalformedDataError.
func (c *Client) GetDetail(ctx context.Context, address string, chain domain.Chain) (*domain.TokenDetail, error) {
	key := cacheKey("overview", chain, address)

	var detail domain.TokenDetail
	if c.cached(ctx, key, &detail) {
		return &detail, nil
	}

	data, err := c.get(ctx, overviewEndpoint, chain, url.Values{"address": {address}})
	if err != nil {
		return nil, err
	}
	if isEmpty(data) {
		return nil, &httpclient.MalformedDataError{Source: Source, Reason: "token overview: no data for " + address}
	}
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, &httpclient.MalformedDataError{Source: Source, Reason: fmt.Sprintf("token overview: %v", err)}
	}
	if detail.Address == "" && detail.Price == 0 {
		return nil, &httpclient.MalformedDataError{Source: Source, Reason: "token overview: missing address and price"}
	}

	c.store(ctx, key, detail)
	return &detail, nil
}

// GetSecurity returns the security audit of address on chain.
// Returns nil, nil when the provider has no security data for the token.
func (c *Client) GetSecurity(ctx context.Context, address string, chain domain.Chain) (*domain.RawSecurity, error) {
	key := cacheKey("security", chain, address)

	var sec domain.RawSecurity
	if c.cached(ctx, key, &sec) {
		return &sec, nil
	}

	data, err := c.get(ctx, securityEndpoint, chain, url.Values{"address": {address}})
	if err != nil {
		return nil, err
	}
	if isEmpty(data) {
		return nil, nil
	}
	if err := json.Unmarshal(data, &sec); err != nil {
		return nil, &httpclient.MalformedDataError{Source: Source, Reason: fmt.Sprintf("token security: %v", err)}
	}

	c.store(ctx, key, sec)
	return &sec, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() {
	c.http.Close()
}

func (c *Client) get(ctx context.Context, endpoint string, chain domain.Chain, params url.Values) (json.RawMessage, error) {
	if params.Get("chain") == "" {
		params.Set("chain", chain.String())
	}

	var env envelope
	header := http.Header{"X-Chain": {chain.String()}}
	if err := c.http.GetJSONWithHeader(ctx, endpoint, params, header, &env); err != nil {
		return nil, err
	}
	// Birdeye reports some failures (bad key, unsupported chain) as HTTP 200.
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "success=false"
		}
		return nil, &httpclient.UpstreamError{Status: http.StatusOK, Body: msg}
	}
	return env.Data, nil
}

func (c *Client) cached(ctx context.Context, key string, dst interface{}) bool {
	if c.cache == nil {
		return false
	}
	ok, err := c.cache.Get(ctx, key, dst)
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return ok
}

func (c *Client) store(ctx context.Context, key string, val interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, val, c.cacheTTL); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func cacheKey(kind string, chain domain.Chain, address string) string {
	return Source + ":" + kind + ":" + chain.String() + ":" + address
}

func isEmpty(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null")) || bytes.Equal(d, []byte("{}"))
}
