package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/observability"
	"memecoin-hunter/internal/storage"
)

const dbName = "sqlite"

// Store implements storage.Store using SQLite.
type Store struct {
	db *DB
}

// NewStore creates a Store on db. The schema must already be migrated.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Compile-time interface check.
var _ storage.Store = (*Store)(nil)

const upsertCoinSQL = `
	INSERT INTO coins (id, symbol, name, is_memecoin, first_detected, last_updated)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		symbol = CASE WHEN excluded.symbol <> '' THEN excluded.symbol ELSE coins.symbol END,
		name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE coins.name END,
		is_memecoin = MAX(coins.is_memecoin, excluded.is_memecoin),
		first_detected = MIN(coins.first_detected, excluded.first_detected),
		last_updated = MAX(coins.last_updated, excluded.last_updated)
`

const ensureCoinSQL = `
	INSERT INTO coins (id, first_detected, last_updated)
	VALUES (?, ?, ?)
	ON CONFLICT (id) DO NOTHING
`

// UpsertCoin creates or refreshes a coin.
func (s *Store) UpsertCoin(ctx context.Context, c *domain.Coin) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}
	err := s.observe("upsert_coin", func() error {
		return upsertCoin(ctx, s.db, c)
	})
	return storage.Persist("upsert coin", err)
}

func upsertCoin(ctx context.Context, db execer, c *domain.Coin) error {
	_, err := db.ExecContext(ctx, upsertCoinSQL, c.ID, c.Symbol, c.Name, c.IsMemecoin, c.FirstDetected, c.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert coin: %w", err)
	}
	return nil
}

func ensureCoin(ctx context.Context, db execer, id string, ts int64) error {
	if _, err := db.ExecContext(ctx, ensureCoinSQL, id, ts, ts); err != nil {
		return fmt.Errorf("ensure coin: %w", err)
	}
	return nil
}

// GetCoin retrieves a coin by ID. Returns ErrNotFound if not exists.
func (s *Store) GetCoin(ctx context.Context, id string) (*domain.Coin, error) {
	var c domain.Coin
	err := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, name, is_memecoin, first_detected, last_updated
		FROM coins
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Symbol, &c.Name, &c.IsMemecoin, &c.FirstDetected, &c.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get coin: %w", err)
	}
	return &c, nil
}

// AppendPriceSnapshot appends a price snapshot, creating the coin if needed.
func (s *Store) AppendPriceSnapshot(ctx context.Context, p *domain.PriceSnapshot) error {
	if p == nil || p.CoinID == "" {
		return storage.ErrInvalidInput
	}
	err := s.inTx(ctx, "append_price", func(tx *sql.Tx) error {
		if err := ensureCoin(ctx, tx, p.CoinID, p.Timestamp); err != nil {
			return err
		}
		return insertPrice(ctx, tx, p)
	})
	return storage.Persist("append price snapshot", err)
}

func insertPrice(ctx context.Context, db execer, p *domain.PriceSnapshot) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO price_data (coin_id, price, volume_24h, market_cap, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, p.CoinID, p.Price, p.Volume24h, p.MarketCap, p.Timestamp)
	if err != nil {
		return fmt.Errorf("insert price snapshot: %w", err)
	}
	return nil
}

// AppendSentimentSnapshot appends a sentiment snapshot, creating the coin if needed.
func (s *Store) AppendSentimentSnapshot(ctx context.Context, snap *domain.SentimentSnapshot) error {
	if snap == nil || snap.CoinID == "" || snap.Platform == "" {
		return storage.ErrInvalidInput
	}
	err := s.inTx(ctx, "append_sentiment", func(tx *sql.Tx) error {
		if err := ensureCoin(ctx, tx, snap.CoinID, snap.Timestamp); err != nil {
			return err
		}
		return insertSentiment(ctx, tx, snap)
	})
	return storage.Persist("append sentiment snapshot", err)
}

func insertSentiment(ctx context.Context, db execer, snap *domain.SentimentSnapshot) error {
	aspects, err := storage.EncodeAspects(snap.AspectScores)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO sentiment_data (coin_id, platform, sentiment_score, aspect_scores, mention_count, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.CoinID, snap.Platform, snap.SentimentScore, aspects, snap.MentionCount, snap.Timestamp)
	if err != nil {
		return fmt.Errorf("insert sentiment snapshot: %w", err)
	}
	return nil
}

// AppendTradingPotential appends a potential, creating the coin if needed.
func (s *Store) AppendTradingPotential(ctx context.Context, p *domain.TradingPotential) error {
	if p == nil || p.CoinID == "" || !p.PotentialType.IsValid() {
		return storage.ErrInvalidInput
	}
	err := s.inTx(ctx, "append_potential", func(tx *sql.Tx) error {
		if err := ensureCoin(ctx, tx, p.CoinID, p.CreatedAt); err != nil {
			return err
		}
		return insertPotential(ctx, tx, p)
	})
	return storage.Persist("append trading potential", err)
}

func insertPotential(ctx context.Context, db execer, p *domain.TradingPotential) error {
	var details sql.NullString
	if len(p.Details) > 0 {
		details = sql.NullString{String: string(p.Details), Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO trading_potential (coin_id, potential_type, confidence_score, details, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.CoinID, p.PotentialType.String(), p.ConfidenceScore, details, p.IsActive, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert trading potential: %w", err)
	}
	return nil
}

// SaveOpportunity writes coin, price, sentiment and potential rows for o in one transaction.
func (s *Store) SaveOpportunity(ctx context.Context, o *domain.Opportunity) error {
	rec, err := storage.RecordsFor(o)
	if err != nil {
		return storage.Persist("save opportunity", err)
	}

	err = s.inTx(ctx, "save_opportunity", func(tx *sql.Tx) error {
		if err := upsertCoin(ctx, tx, &rec.Coin); err != nil {
			return err
		}
		if err := insertPrice(ctx, tx, &rec.Price); err != nil {
			return err
		}
		if err := insertSentiment(ctx, tx, &rec.Sentiment); err != nil {
			return err
		}
		return insertPotential(ctx, tx, &rec.Potential)
	})
	return storage.Persist("save opportunity", err)
}

// PriceSnapshots returns a coin's snapshots ordered by timestamp ASC.
func (s *Store) PriceSnapshots(ctx context.Context, coinID string) ([]*domain.PriceSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coin_id, price, COALESCE(volume_24h, 0), COALESCE(market_cap, 0), timestamp
		FROM price_data
		WHERE coin_id = ?
		ORDER BY timestamp ASC, id ASC
	`, coinID)
	if err != nil {
		return nil, fmt.Errorf("get price snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.PriceSnapshot
	for rows.Next() {
		var p domain.PriceSnapshot
		if err := rows.Scan(&p.ID, &p.CoinID, &p.Price, &p.Volume24h, &p.MarketCap, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan price snapshot row: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price snapshot rows: %w", err)
	}
	return out, nil
}

// SentimentSnapshots returns a coin's snapshots ordered by timestamp ASC.
func (s *Store) SentimentSnapshots(ctx context.Context, coinID string) ([]*domain.SentimentSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coin_id, platform, sentiment_score, aspect_scores, mention_count, timestamp
		FROM sentiment_data
		WHERE coin_id = ?
		ORDER BY timestamp ASC, id ASC
	`, coinID)
	if err != nil {
		return nil, fmt.Errorf("get sentiment snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.SentimentSnapshot
	for rows.Next() {
		var snap domain.SentimentSnapshot
		var aspects string
		if err := rows.Scan(&snap.ID, &snap.CoinID, &snap.Platform, &snap.SentimentScore, &aspects, &snap.MentionCount, &snap.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sentiment snapshot row: %w", err)
		}
		if snap.AspectScores, err = storage.DecodeAspects(aspects); err != nil {
			return nil, err
		}
		out = append(out, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiment snapshot rows: %w", err)
	}
	return out, nil
}

const potentialColumns = `id, coin_id, potential_type, confidence_score, COALESCE(details, ''), is_active, created_at`

// TradingPotentials returns a coin's potentials ordered by created_at ASC.
func (s *Store) TradingPotentials(ctx context.Context, coinID string) ([]*domain.TradingPotential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+potentialColumns+`
		FROM trading_potential
		WHERE coin_id = ?
		ORDER BY created_at ASC, id ASC
	`, coinID)
	if err != nil {
		return nil, fmt.Errorf("get trading potentials: %w", err)
	}
	defer rows.Close()

	return scanPotentials(rows)
}

// LatestOpportunities returns up to limit opportunities, newest first.
func (s *Store) LatestOpportunities(ctx context.Context, limit int) ([]*domain.Opportunity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+potentialColumns+`
		FROM trading_potential
		WHERE details IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get latest opportunities: %w", err)
	}
	defer rows.Close()

	potentials, err := scanPotentials(rows)
	if err != nil {
		return nil, err
	}
	return decodeOpportunities(potentials)
}

// OpportunitiesByCoin returns a coin's opportunities ordered by created_at ASC.
func (s *Store) OpportunitiesByCoin(ctx context.Context, coinID string) ([]*domain.Opportunity, error) {
	potentials, err := s.TradingPotentials(ctx, coinID)
	if err != nil {
		return nil, err
	}
	return decodeOpportunities(potentials)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// inTx runs fn in a transaction, rolling back on any error.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return s.observe(op, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

func (s *Store) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.RecordDBQuery(dbName, op, time.Since(start).Seconds(), err)
	return err
}

func scanPotentials(rows *sql.Rows) ([]*domain.TradingPotential, error) {
	var out []*domain.TradingPotential
	for rows.Next() {
		var p domain.TradingPotential
		var typ, details string
		if err := rows.Scan(&p.ID, &p.CoinID, &typ, &p.ConfidenceScore, &details, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trading potential row: %w", err)
		}
		p.PotentialType = domain.PotentialType(typ)
		if details != "" {
			p.Details = []byte(details)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading potential rows: %w", err)
	}
	return out, nil
}

func decodeOpportunities(potentials []*domain.TradingPotential) ([]*domain.Opportunity, error) {
	out := make([]*domain.Opportunity, 0, len(potentials))
	for _, p := range potentials {
		if len(p.Details) == 0 {
			continue
		}
		o, err := storage.OpportunityFromPotential(p)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
