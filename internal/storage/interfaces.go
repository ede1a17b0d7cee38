package storage

import (
	"context"

	"memecoin-hunter/internal/domain"
)

// CoinStore provides access to coins.
type CoinStore interface {
	// UpsertCoin creates the coin or refreshes its identity and last-seen time.
	// Empty symbol or name never overwrite stored values; first_detected keeps the earliest value.
	UpsertCoin(ctx context.Context, c *domain.Coin) error

	// GetCoin retrieves a coin by ID. Returns ErrNotFound if not exists.
	GetCoin(ctx context.Context, id string) (*domain.Coin, error)
}

// SnapshotStore provides access to price and sentiment snapshots.
// Appending for an unknown coin creates the coin row in the same transaction.
type SnapshotStore interface {
	AppendPriceSnapshot(ctx context.Context, s *domain.PriceSnapshot) error
	AppendSentimentSnapshot(ctx context.Context, s *domain.SentimentSnapshot) error

	// PriceSnapshots returns a coin's snapshots ordered by timestamp ASC.
	PriceSnapshots(ctx context.Context, coinID string) ([]*domain.PriceSnapshot, error)

	// SentimentSnapshots returns a coin's snapshots ordered by timestamp ASC.
	SentimentSnapshots(ctx context.Context, coinID string) ([]*domain.SentimentSnapshot, error)
}

// OpportunityStore provides access to trading potentials and the opportunities they carry.
type OpportunityStore interface {
	// AppendTradingPotential appends one potential row, creating the coin if needed.
	AppendTradingPotential(ctx context.Context, p *domain.TradingPotential) error

	// SaveOpportunity writes coin, price snapshot, sentiment snapshot and
	// trading potential for o in one transaction.
	SaveOpportunity(ctx context.Context, o *domain.Opportunity) error

	// TradingPotentials returns a coin's potentials ordered by created_at ASC.
	TradingPotentials(ctx context.Context, coinID string) ([]*domain.TradingPotential, error)

	// LatestOpportunities returns up to limit opportunities, newest first.
	LatestOpportunities(ctx context.Context, limit int) ([]*domain.Opportunity, error)

	// OpportunitiesByCoin returns a coin's opportunities ordered by created_at ASC.
	OpportunitiesByCoin(ctx context.Context, coinID string) ([]*domain.Opportunity, error)
}

// Store is the complete persistent store.
type Store interface {
	CoinStore
	SnapshotStore
	OpportunityStore
	Close() error
}

// ScoreHistoryStore keeps every scored opportunity for analytics, qualified or not.
type ScoreHistoryStore interface {
	// InsertBulk appends opportunities. An empty batch is a no-op.
	InsertBulk(ctx context.Context, opps []*domain.Opportunity) error

	// GetByChain returns a chain's opportunities created within [start, end] ms (inclusive),
	// ordered by created_at ASC.
	GetByChain(ctx context.Context, chain domain.Chain, start, end int64) ([]*domain.Opportunity, error)
}
