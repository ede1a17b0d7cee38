package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/observability"
)

// DefaultPageSize is the number of newest tokens requested per chain.
const DefaultPageSize = 50

// Lister lists the newest tokens on a chain.
type Lister interface {
	ListNewTokens(ctx context.Context, chain domain.Chain, pageSize, offset int) ([]domain.RawToken, error)
}

// Options configures Discoverer.
type Options struct {
	Lister   Lister
	PageSize int
	// Filters maps chain to its floors; chains without an entry use Default.
	Filters map[domain.Chain]Filter
	Default Filter
	Now     func() time.Time
	Logger  zerolog.Logger
}

// Discoverer produces token candidates for a chain.
type Discoverer struct {
	lister   Lister
	pageSize int
	filters  map[domain.Chain]Filter
	def      Filter
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates a Discoverer.
func New(opts Options) *Discoverer {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Discoverer{
		lister:   opts.Lister,
		pageSize: opts.PageSize,
		filters:  opts.Filters,
		def:      opts.Default,
		now:      opts.Now,
		logger:   opts.Logger.With().Str("component", "discovery").Logger(),
	}
}

// FilterFor returns the filter applied to chain.
func (d *Discoverer) FilterFor(chain domain.Chain) Filter {
	if f, ok := d.filters[chain]; ok {
		return f
	}
	return d.def
}

// Discover returns eligible candidates from one page of the newest tokens on chain.
// On upstream failure it returns an empty slice together with the error.
func (d *Discoverer) Discover(ctx context.Context, chain domain.Chain) ([]domain.TokenCandidate, error) {
	raw, err := d.lister.ListNewTokens(ctx, chain, d.pageSize, 0)
	if err != nil {
		observability.RecordDiscoveryError(chain.String())
		d.logger.Warn().Err(err).Str("chain", chain.String()).Msg("token listing failed")
		return []domain.TokenCandidate{}, fmt.Errorf("discover %s: %w", chain, err)
	}

	filter := d.FilterFor(chain)
	now := d.now()
	seen := make(map[string]bool, len(raw))
	candidates := make([]domain.TokenCandidate, 0, len(raw))

	for _, r := range raw {
		if seen[r.Address] || !filter.Eligible(r, chain, now) {
			continue
		}
		seen[r.Address] = true
		candidates = append(candidates, domain.TokenCandidate{
			Address:   r.Address,
			Symbol:    r.Symbol,
			Name:      r.Name,
			Liquidity: r.Liquidity,
			Volume24h: r.Volume24h,
			CreatedAt: r.CreationTime,
			Chain:     chain,
		})
	}

	observability.RecordTokensDiscovered(chain.String(), len(candidates))
	d.logger.Info().
		Str("chain", chain.String()).
		Int("listed", len(raw)).
		Int("eligible", len(candidates)).
		Msg("discovery complete")

	return candidates, nil
}
