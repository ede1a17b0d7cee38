// Package social searches recent posts on the social feed provider.
package social

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/httpclient"
)

// Source is the upstream name used in errors, logs and metrics.
const Source = "twitter"

const (
	searchEndpoint = "/2/tweets/search/recent"
	queryFilter    = "-is:retweet lang:en"

	minPageSize = 10
	maxPageSize = 100
)

// Options configures Client.
type Options struct {
	BaseURL            string
	BearerToken        string
	RateLimitPerMinute int
	Timeout            time.Duration
	MaxRetries         int
	Logger             zerolog.Logger
}

// Client issues bounded recent-post searches.
type Client struct {
	http   *httpclient.Client
	logger zerolog.Logger
}

// New creates a Client authenticated with a bearer token.
func New(opts Options) *Client {
	logger := opts.Logger.With().Str("component", Source).Logger()

	httpOpts := []httpclient.Option{
		httpclient.WithRateLimit(opts.RateLimitPerMinute),
		httpclient.WithMaxRetries(opts.MaxRetries),
		httpclient.WithLogger(logger),
		httpclient.WithHeader("Authorization", "Bearer "+opts.BearerToken),
	}
	if opts.Timeout > 0 {
		httpOpts = append(httpOpts, httpclient.WithTimeout(opts.Timeout))
	}

	return &Client{
		http:   httpclient.New(Source, opts.BaseURL, httpOpts...),
		logger: logger,
	}
}

type searchResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

// Search returns the text of up to maxResults recent original English posts
// matching query. Pages are followed until maxResults or the last page.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		return []string{}, nil
	}

	q := strings.TrimSpace(query) + " " + queryFilter
	posts := make([]string, 0, maxResults)
	next := ""

	for len(posts) < maxResults {
		params := url.Values{}
		params.Set("query", q)
		params.Set("max_results", strconv.Itoa(pageSize(maxResults-len(posts))))
		if next != "" {
			params.Set("next_token", next)
		}

		var resp searchResponse
		if err := c.http.GetJSON(ctx, searchEndpoint, params, &resp); err != nil {
			if len(posts) > 0 {
				c.logger.Warn().Err(err).Str("query", query).Int("posts", len(posts)).Msg("pagination stopped early")
				return posts, nil
			}
			return nil, err
		}

		for _, p := range resp.Data {
			if p.Text == "" {
				continue
			}
			posts = append(posts, p.Text)
			if len(posts) == maxResults {
				break
			}
		}

		next = resp.Meta.NextToken
		if next == "" || len(resp.Data) == 0 {
			break
		}
	}

	c.logger.Debug().Str("query", query).Int("posts", len(posts)).Msg("search complete")
	return posts, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() {
	c.http.Close()
}

// pageSize clamps a remaining count to the provider's allowed page range.
func pageSize(remaining int) int {
	if remaining < minPageSize {
		return minPageSize
	}
	if remaining > maxPageSize {
		return maxPageSize
	}
	return remaining
}
