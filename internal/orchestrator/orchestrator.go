// Package orchestrator runs one hunt pass: discovery, enrichment, scoring,
// ranking, persistence and presentation.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/httpclient"
	"memecoin-hunter/internal/observability"
	"memecoin-hunter/internal/presentation"
	"memecoin-hunter/internal/scoring"
	"memecoin-hunter/internal/security"
	"memecoin-hunter/internal/sentiment"
	"memecoin-hunter/internal/storage"
)

// Discoverer finds candidate tokens on a chain.
type Discoverer interface {
	Discover(ctx context.Context, chain domain.Chain) ([]domain.TokenCandidate, error)
}

// MarketData fetches per-token market and security records.
type MarketData interface {
	GetDetail(ctx context.Context, address string, chain domain.Chain) (*domain.TokenDetail, error)
	GetSecurity(ctx context.Context, address string, chain domain.Chain) (*domain.RawSecurity, error)
}

// SentimentAnalyzer scores social sentiment for a token.
type SentimentAnalyzer interface {
	AnalyzeToken(ctx context.Context, symbol, name string) (sentiment.Result, error)
}

// Defaults applied when Options leave a field zero, or for the score
// threshold, negative.
const (
	DefaultMaxConcurrent  = 15
	DefaultScoreThreshold = 40.0
	DefaultTopN           = 10
	HighConfidence        = 70.0
)

// Options for creating Orchestrator.
type Options struct {
	Chains     []domain.Chain
	Discoverer Discoverer
	Market     MarketData
	Sentiment  SentimentAnalyzer
	Scorer     *scoring.Scorer

	// Store receives the qualified top-N. Required.
	Store storage.OpportunityStore
	// History receives every scored opportunity. Optional.
	History storage.ScoreHistoryStore
	// Renderer displays the ranking. Optional.
	Renderer presentation.Renderer

	MaxConcurrent int
	TopN          int

	// ScoreThreshold is the minimum qualifying score. Zero qualifies every
	// scored token; a negative value selects DefaultScoreThreshold.
	ScoreThreshold float64

	Logger zerolog.Logger
}

// Orchestrator coordinates one pipeline pass across all configured chains.
type Orchestrator struct {
	chains     []domain.Chain
	discoverer Discoverer
	market     MarketData
	sentiment  SentimentAnalyzer
	scorer     *scoring.Scorer
	store      storage.OpportunityStore
	history    storage.ScoreHistoryStore
	renderer   presentation.Renderer

	maxConcurrent  int
	scoreThreshold float64
	topN           int

	logger zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		chains:         opts.Chains,
		discoverer:     opts.Discoverer,
		market:         opts.Market,
		sentiment:      opts.Sentiment,
		scorer:         opts.Scorer,
		store:          opts.Store,
		history:        opts.History,
		renderer:       opts.Renderer,
		maxConcurrent:  opts.MaxConcurrent,
		scoreThreshold: opts.ScoreThreshold,
		topN:           opts.TopN,
		logger:         opts.Logger.With().Str("component", "orchestrator").Logger(),
	}
	if o.scorer == nil {
		o.scorer = scoring.New()
	}
	if o.maxConcurrent <= 0 {
		o.maxConcurrent = DefaultMaxConcurrent
	}
	if o.scoreThreshold < 0 {
		o.scoreThreshold = DefaultScoreThreshold
	}
	if o.topN <= 0 {
		o.topN = DefaultTopN
	}
	return o
}

// tokenOutcome is the slot one enrichment task owns.
type tokenOutcome struct {
	opp      *domain.Opportunity
	skipped  bool
	degraded int
	err      string
}

// Run executes one full pass. It returns an error only when ctx is done;
// every upstream and persistence failure is counted in the result instead.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{Chains: len(o.chains)}

	var scored []domain.Opportunity
	for _, chain := range o.chains {
		if ctx.Err() != nil {
			break
		}
		scored = append(scored, o.runChain(ctx, chain, result)...)
	}
	result.Scored = len(scored)

	ranked := Rank(scored, o.scoreThreshold)
	result.Qualified = len(ranked)
	if len(ranked) > o.topN {
		ranked = ranked[:o.topN]
	}
	result.Opportunities = ranked
	result.Summary = Summarize(ranked)

	o.persist(ctx, result)
	o.recordHistory(ctx, scored, result)
	observability.RecordRanking(result.Qualified, result.Persisted)

	if o.renderer != nil {
		o.renderer.Render(result.Opportunities, result.Summary)
	}

	status := "success"
	if err := ctx.Err(); err != nil {
		status = "cancelled"
		observability.RecordHuntRun(status, time.Since(start).Seconds())
		return result, err
	}
	if result.ChainFailures == result.Chains && result.Chains > 0 {
		status = "failed"
	}
	observability.RecordHuntRun(status, time.Since(start).Seconds())

	o.logger.Info().
		Int("discovered", result.Discovered).
		Int("scored", result.Scored).
		Int("skipped", result.Skipped).
		Int("degraded", result.Degraded).
		Int("qualified", result.Qualified).
		Int("persisted", result.Persisted).
		Dur("duration", time.Since(start)).
		Msg("hunt pass complete")

	return result, nil
}

// runChain discovers candidates on chain, then enriches and scores them concurrently.
func (o *Orchestrator) runChain(ctx context.Context, chain domain.Chain, result *RunResult) []domain.Opportunity {
	candidates, err := o.discoverer.Discover(ctx, chain)
	if err != nil {
		result.ChainFailures++
		result.Errors = append(result.Errors, err.Error())
	}
	result.Discovered += len(candidates)
	if len(candidates) == 0 {
		return nil
	}

	outcomes := make([]tokenOutcome, len(candidates))
	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)
	for i := range candidates {
		g.Go(func() error {
			outcomes[i] = o.enrich(ctx, candidates[i])
			return nil
		})
	}
	_ = g.Wait()

	var opps []domain.Opportunity
	for _, out := range outcomes {
		result.Degraded += out.degraded
		if out.skipped {
			result.Skipped++
			result.Errors = append(result.Errors, out.err)
			continue
		}
		opps = append(opps, *out.opp)
	}
	return opps
}

// enrich fetches detail, security and sentiment for c and scores it.
// A detail failure skips the token; security or social failures degrade it.
func (o *Orchestrator) enrich(ctx context.Context, c domain.TokenCandidate) tokenOutcome {
	log := o.logger.With().Str("chain", c.Chain.String()).Str("address", c.Address).Logger()
	chain := c.Chain.String()

	detail, err := o.market.GetDetail(ctx, c.Address, c.Chain)
	if err == nil && detail == nil {
		err = &httpclient.MalformedDataError{Source: "market", Reason: "empty detail"}
	}
	if err != nil {
		kind := httpclient.Kind(err)
		log.Warn().Err(err).Str("error_type", kind).Msg("token skipped")
		observability.RecordTokenSkipped(chain, kind)
		return tokenOutcome{skipped: true, err: fmt.Sprintf("%s %s: %v", chain, c.Address, err)}
	}
	d := detail.MergeCandidate(c)

	var degraded int

	assessment := security.NoData()
	raw, err := o.market.GetSecurity(ctx, c.Address, c.Chain)
	if err != nil {
		degraded++
		log.Warn().Err(err).Msg("security data unavailable")
		observability.RecordTokenDegraded(chain, "security")
	} else {
		assessment = security.Assess(raw)
	}

	var social sentiment.Result
	if o.sentiment != nil {
		social, err = o.sentiment.AnalyzeToken(ctx, d.Symbol, d.Name)
		if err != nil {
			degraded++
			social = sentiment.Result{}
			log.Warn().Err(err).Msg("social sentiment unavailable")
			observability.RecordTokenDegraded(chain, "social")
		}
	}

	opp := o.scorer.Score(d, social.Indicators, assessment, c.Chain)
	opp.MentionCount = social.MentionCount
	observability.RecordTokenScored(opp.PotentialType.String(), opp.OverallScore)

	return tokenOutcome{opp: &opp, degraded: degraded}
}

// persist saves each ranked opportunity. A failed write does not block the rest.
func (o *Orchestrator) persist(ctx context.Context, result *RunResult) {
	if o.store == nil {
		return
	}
	for i := range result.Opportunities {
		opp := &result.Opportunities[i]
		if err := o.store.SaveOpportunity(ctx, opp); err != nil {
			result.PersistFailures++
			result.Errors = append(result.Errors, err.Error())
			o.logger.Error().Err(err).Str("coin_id", opp.CoinID()).Msg("persist opportunity failed")
			continue
		}
		result.Persisted++
	}
}

func (o *Orchestrator) recordHistory(ctx context.Context, scored []domain.Opportunity, result *RunResult) {
	if o.history == nil || len(scored) == 0 {
		return
	}
	batch := make([]*domain.Opportunity, len(scored))
	for i := range scored {
		batch[i] = &scored[i]
	}
	if err := o.history.InsertBulk(ctx, batch); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("score history: %v", err))
		o.logger.Error().Err(err).Int("count", len(batch)).Msg("score history insert failed")
	}
}

// Rank returns the opportunities scoring at least threshold, highest first.
// Ties keep their input order.
func Rank(opps []domain.Opportunity, threshold float64) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.OverallScore >= threshold {
			out = append(out, opp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OverallScore > out[j].OverallScore
	})
	return out
}

// Summarize computes the display statistics for a ranked list.
func Summarize(opps []domain.Opportunity) domain.Summary {
	s := domain.Summary{Count: len(opps)}
	if len(opps) == 0 {
		return s
	}
	scores := make([]float64, len(opps))
	for i, opp := range opps {
		scores[i] = opp.OverallScore
		if opp.Confidence >= HighConfidence {
			s.HighConfidenceCount++
		}
	}
	s.AvgScore = stat.Mean(scores, nil)
	return s
}
