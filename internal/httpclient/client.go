// Package httpclient provides the rate-limited JSON client shared by every
// upstream data source.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"memecoin-hunter/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultRateLimit   = 60 // requests per minute

	maxErrorBody = 512
)

// Client issues GET requests against one upstream, never faster than its
// configured requests-per-minute floor.
type Client struct {
	source  string
	baseURL string
	client  *http.Client
	headers http.Header

	rateLimit   int
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	breakerCfg  *gobreaker.Settings
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64

	logger    zerolog.Logger
	closeOnce sync.Once
	closed    atomic.Bool
}

// Option configures Client.
type Option func(*Client)

// WithRateLimit sets the requests-per-minute floor. Zero or less disables it.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		c.rateLimit = perMinute
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreaker overrides the circuit breaker settings. Name is set to the source.
func WithBreaker(settings gobreaker.Settings) Option {
	return func(c *Client) {
		c.breakerCfg = &settings
	}
}

// New creates a client for one upstream source.
func New(source, baseURL string, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		source:      source,
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout, Transport: transport},
		headers:     make(http.Header),
		rateLimit:   DefaultRateLimit,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With().Str("component", "httpclient").Str("source", source).Logger()
	c.limiter = newLimiter(c.rateLimit)
	c.breaker = gobreaker.NewCircuitBreaker(c.breakerSettings())
	return c
}

// newLimiter allows one request per 60/perMinute seconds with no burst.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func (c *Client) breakerSettings() gobreaker.Settings {
	var st gobreaker.Settings
	if c.breakerCfg != nil {
		st = *c.breakerCfg
	} else {
		st.Interval = 60 * time.Second
		st.Timeout = 30 * time.Second
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	st.Name = c.source
	if st.IsSuccessful == nil {
		// Client errors other than 429 say nothing about upstream health.
		st.IsSuccessful = func(err error) bool {
			if err == nil || IsCallerCancelled(err) {
				return true
			}
			var ue *UpstreamError
			if errors.As(err, &ue) {
				return ue.Status < 500 && ue.Status != http.StatusTooManyRequests
			}
			return false
		}
	}
	logger := c.logger
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
	}
	return st
}

// Source returns the upstream name used in logs and metrics.
func (c *Client) Source() string {
	return c.source
}

// GetJSON requests baseURL+endpoint with params and decodes the JSON body into out.
// Non-2xx responses return *UpstreamError, network failures *TransportError and
// undecodable bodies *MalformedDataError. 429, 5xx and transport failures are
// retried with exponential backoff; every attempt waits on the rate limiter.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	return c.GetJSONWithHeader(ctx, endpoint, params, nil, out)
}

// GetJSONWithHeader is GetJSON with extra headers for this request only.
func (c *Client) GetJSONWithHeader(ctx context.Context, endpoint string, params url.Values, header http.Header, out interface{}) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	reqURL := c.url(endpoint, params)
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		body, err := c.do(ctx, reqURL, header)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return &MalformedDataError{Source: c.source, Reason: fmt.Sprintf("decode response: %v", err)}
			}
			return nil
		}

		lastErr = err
		if !retryable(ctx, err) {
			break
		}
		c.logger.Debug().Err(err).Int("attempt", attempt+1).Str("endpoint", endpoint).Msg("retrying request")
	}

	c.logger.Warn().Err(lastErr).Str("endpoint", endpoint).Msg("request failed")
	return lastErr
}

// do performs one rate-limited request through the circuit breaker.
func (c *Client) do(ctx context.Context, reqURL string, header http.Header) ([]byte, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		// The limiter fails early when the deadline would pass before a token frees up.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s rate limit wait: %w", c.source, ctxErr)
		}
		return nil, fmt.Errorf("%s rate limit wait: %v: %w", c.source, err, context.DeadlineExceeded)
	}
	observability.RecordRateLimitWait(c.source, time.Since(waitStart).Seconds())

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, reqURL, header)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%s: %w", c.source, ErrCircuitOpen)
	}
	observability.RecordUpstreamRequest(c.source, Kind(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) roundTrip(ctx context.Context, reqURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	for _, h := range []http.Header{c.headers, header} {
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", http.MethodGet, reqURL, ctxErr)
		}
		return nil, &TransportError{Method: http.MethodGet, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: reqURL, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}
	return body, nil
}

// Close releases the client's pooled connections. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.client.CloseIdleConnections()
		c.logger.Debug().Msg("connections released")
	})
}

func (c *Client) url(endpoint string, params url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status == http.StatusTooManyRequests || ue.Status >= 500
	}
	return IsTransport(err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
