package clickhouse

import (
	"context"
	"fmt"
	"time"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/observability"
	"memecoin-hunter/internal/storage"
)

// ScoreHistoryStore implements storage.ScoreHistoryStore using ClickHouse.
type ScoreHistoryStore struct {
	conn *Conn
}

// NewScoreHistoryStore creates a new ScoreHistoryStore.
func NewScoreHistoryStore(conn *Conn) *ScoreHistoryStore {
	return &ScoreHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

const scoreHistoryColumns = `
	id, chain, token_address, symbol, name,
	price, market_cap, liquidity, volume_24h, price_change_24h,
	hype_level, fomo_intensity, community_growth, utility_mentions, meme_virality, risk_awareness,
	mention_count, security_score, security_flags,
	overall_score, potential_type, confidence, reasoning, created_at_ms
`

// InsertBulk appends opportunities in a single batch.
func (s *ScoreHistoryStore) InsertBulk(ctx context.Context, opps []*domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	for _, o := range opps {
		if o == nil || o.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	err := s.insert(ctx, opps)
	observability.RecordDBQuery("clickhouse", "insert_score_history", time.Since(start).Seconds(), err)
	return err
}

func (s *ScoreHistoryStore) insert(ctx context.Context, opps []*domain.Opportunity) error {
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO score_history (`+scoreHistoryColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range opps {
		flags := o.SecurityFlags
		if flags == nil {
			flags = []string{}
		}
		n := o.Narrative
		err = batch.Append(
			o.ID, o.Chain.String(), o.TokenAddress, o.Symbol, o.Name,
			o.Price, o.MarketCap, o.Liquidity, o.Volume24h, o.PriceChange24h,
			n.HypeLevel, n.FomoIntensity, n.CommunityGrowth, n.UtilityMentions, n.MemeVirality, n.RiskAwareness,
			uint32(o.MentionCount), o.SecurityScore, flags,
			o.OverallScore, o.PotentialType.String(), o.Confidence, o.Reasoning, uint64(o.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByChain retrieves a chain's opportunities within [start, end] (inclusive), ordered by created_at ASC.
func (s *ScoreHistoryStore) GetByChain(ctx context.Context, chain domain.Chain, start, end int64) ([]*domain.Opportunity, error) {
	query := `
		SELECT ` + scoreHistoryColumns + `
		FROM score_history
		WHERE chain = ? AND created_at_ms >= ? AND created_at_ms <= ?
		ORDER BY created_at_ms ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, chain.String(), uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	return scanScoreHistory(rows)
}

func scanScoreHistory(rows chRows) ([]*domain.Opportunity, error) {
	var out []*domain.Opportunity

	for rows.Next() {
		var o domain.Opportunity
		var chain, potentialType string
		var mentions uint32
		var createdAt uint64
		n := &o.Narrative
		err := rows.Scan(
			&o.ID, &chain, &o.TokenAddress, &o.Symbol, &o.Name,
			&o.Price, &o.MarketCap, &o.Liquidity, &o.Volume24h, &o.PriceChange24h,
			&n.HypeLevel, &n.FomoIntensity, &n.CommunityGrowth, &n.UtilityMentions, &n.MemeVirality, &n.RiskAwareness,
			&mentions, &o.SecurityScore, &o.SecurityFlags,
			&o.OverallScore, &potentialType, &o.Confidence, &o.Reasoning, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan score history row: %w", err)
		}
		o.Chain = domain.Chain(chain)
		o.PotentialType = domain.PotentialType(potentialType)
		o.MentionCount = int(mentions)
		o.CreatedAt = int64(createdAt)
		if len(o.SecurityFlags) == 0 {
			o.SecurityFlags = nil
		}
		out = append(out, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history rows: %w", err)
	}
	return out, nil
}
