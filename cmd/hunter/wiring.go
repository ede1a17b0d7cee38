package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/birdeye"
	"memecoin-hunter/internal/cache"
	"memecoin-hunter/internal/config"
	"memecoin-hunter/internal/discovery"
	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/orchestrator"
	"memecoin-hunter/internal/presentation"
	"memecoin-hunter/internal/scoring"
	"memecoin-hunter/internal/sentiment"
	"memecoin-hunter/internal/social"
	"memecoin-hunter/internal/storage"
	chstore "memecoin-hunter/internal/storage/clickhouse"
	"memecoin-hunter/internal/storage/memory"
	"memecoin-hunter/internal/storage/migrations"
	pgstore "memecoin-hunter/internal/storage/postgres"
	"memecoin-hunter/internal/storage/sqlite"
)

// stores holds the opened persistence backends.
type stores struct {
	store   storage.Store
	history storage.ScoreHistoryStore
	closers []func() error
}

func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// openStores opens and migrates the configured store. Only a failure of the
// primary store is returned; the score history is optional.
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	s := &stores{}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		s.store = memory.NewStore()
		s.history = memory.NewScoreHistoryStore()
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		s.store = pgstore.NewStore(pool)
	default:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLite(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		s.store = sqlite.NewStore(db)
	}
	s.closers = append(s.closers, s.store.Close)

	if dsn := cfg.Storage.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouse(ctx, dsn)
		if err != nil {
			logger.Warn().Err(err).Msg("score history disabled: clickhouse unavailable")
		} else {
			s.history = chstore.NewScoreHistoryStore(conn)
			s.closers = append(s.closers, conn.Close)
		}
	}

	logger.Info().
		Str("driver", cfg.Storage.Driver).
		Bool("score_history", s.history != nil).
		Msg("store opened")
	return s, nil
}

// pipeline owns the upstream clients of one hunter process.
type pipeline struct {
	orch   *orchestrator.Orchestrator
	market *birdeye.Client
	feed   *social.Client
	cache  cache.Cache
	logger zerolog.Logger
}

func (p *pipeline) Close() {
	p.market.Close()
	p.feed.Close()
	if err := p.cache.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("close cache")
	}
}

// buildPipeline wires clients, discovery, sentiment and scoring into an orchestrator.
func buildPipeline(ctx context.Context, cfg *config.Config, st *stores, renderer presentation.Renderer, logger zerolog.Logger) *pipeline {
	c, err := cache.NewAuto(ctx, cfg.Cache.RedisAddr)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-process cache")
		c = cache.NewMemory()
	}

	if cfg.Birdeye.APIKey == "" {
		logger.Warn().Msg("BIRDEYE_API_KEY not set; market requests will likely be rejected")
	}
	if cfg.Social.BearerToken == "" {
		logger.Warn().Msg("TWITTER_BEARER_TOKEN not set; social sentiment will be degraded")
	}

	market := birdeye.New(birdeye.Options{
		BaseURL:            cfg.Birdeye.BaseURL,
		APIKey:             cfg.Birdeye.APIKey,
		RateLimitPerMinute: cfg.Birdeye.RateLimitPerMinute,
		Timeout:            cfg.Birdeye.Timeout,
		MaxRetries:         cfg.Birdeye.MaxRetries,
		Cache:              c,
		CacheTTL:           cfg.Cache.TTL,
		Logger:             logger,
	})
	feed := social.New(social.Options{
		BaseURL:            cfg.Social.BaseURL,
		BearerToken:        cfg.Social.BearerToken,
		RateLimitPerMinute: cfg.Social.RateLimitPerMinute,
		Timeout:            cfg.Social.Timeout,
		MaxRetries:         cfg.Social.MaxRetries,
		Logger:             logger,
	})

	chains := make([]domain.Chain, 0, len(cfg.Hunt.Chains))
	filters := make(map[domain.Chain]discovery.Filter, len(cfg.Hunt.Chains))
	for _, name := range cfg.Hunt.Chains {
		chain := domain.ParseChain(name)
		chains = append(chains, chain)
		filters[chain] = discoveryFilter(cfg.Filters.ForChain(name))
	}

	disc := discovery.New(discovery.Options{
		Lister:   market,
		PageSize: cfg.Birdeye.PageSize,
		Filters:  filters,
		Default:  discoveryFilter(cfg.Filters.Default),
		Logger:   logger,
	})
	analyzer := sentiment.NewAnalyzer(feed, sentiment.NewAggregator(nil), cfg.Social.MaxResults, logger)

	orch := orchestrator.New(orchestrator.Options{
		Chains:         chains,
		Discoverer:     disc,
		Market:         market,
		Sentiment:      analyzer,
		Scorer:         scoring.New(),
		Store:          st.store,
		History:        st.history,
		Renderer:       renderer,
		MaxConcurrent:  cfg.Hunt.MaxConcurrent,
		ScoreThreshold: cfg.Hunt.ScoreThreshold,
		TopN:           cfg.Hunt.TopN,
		Logger:         logger,
	})

	return &pipeline{orch: orch, market: market, feed: feed, cache: c, logger: logger}
}

func discoveryFilter(fc config.FilterConfig) discovery.Filter {
	return discovery.Filter{
		MinLiquidity:    fc.MinLiquidity,
		MinVolume24h:    fc.MinVolume24h,
		MaxAge:          time.Duration(fc.MaxAgeHours * float64(time.Hour)),
		MaxSymbolLength: fc.MaxSymbolLength,
	}
}
