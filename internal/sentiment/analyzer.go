package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/domain"
)

// DefaultMaxResults bounds the posts fetched per query.
const DefaultMaxResults = 100

// Searcher returns recent post texts for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// Result is the sentiment of one token.
type Result struct {
	Indicators   domain.NarrativeIndicators
	MentionCount int
}

// Analyzer gathers posts about a token and aggregates them.
type Analyzer struct {
	searcher   Searcher
	aggregator *Aggregator
	maxResults int
	logger     zerolog.Logger
}

// NewAnalyzer creates an Analyzer. maxResults <= 0 uses DefaultMaxResults.
func NewAnalyzer(searcher Searcher, aggregator *Aggregator, maxResults int, logger zerolog.Logger) *Analyzer {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Analyzer{
		searcher:   searcher,
		aggregator: aggregator,
		maxResults: maxResults,
		logger:     logger.With().Str("component", "sentiment").Logger(),
	}
}

// Queries returns the searches issued for a token: "$SYM", the name and "SYM token".
// Empty queries are omitted.
func Queries(symbol, name string) []string {
	symbol = strings.TrimSpace(symbol)
	name = strings.TrimSpace(name)

	var qs []string
	if symbol != "" {
		qs = append(qs, "$"+symbol)
	}
	if name != "" {
		qs = append(qs, name)
	}
	if symbol != "" {
		qs = append(qs, symbol+" token")
	}
	return qs
}

// AnalyzeToken searches every query for the token and aggregates all posts found.
// It fails only when every query failed; partial failures are logged.
func (a *Analyzer) AnalyzeToken(ctx context.Context, symbol, name string) (Result, error) {
	queries := Queries(symbol, name)

	var posts []string
	var errs []error
	for _, q := range queries {
		found, err := a.searcher.Search(ctx, q, a.maxResults)
		if err != nil {
			a.logger.Warn().Err(err).Str("query", q).Msg("social search failed")
			errs = append(errs, fmt.Errorf("search %q: %w", q, err))
			continue
		}
		posts = append(posts, found...)
	}

	if len(queries) > 0 && len(errs) == len(queries) {
		return Result{}, errors.Join(errs...)
	}

	return Result{
		Indicators:   a.aggregator.Aggregate(posts),
		MentionCount: len(posts),
	}, nil
}
