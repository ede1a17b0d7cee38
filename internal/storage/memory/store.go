package memory

import (
	"context"
	"sort"
	"sync"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu         sync.RWMutex
	coins      map[string]*domain.Coin
	prices     []*domain.PriceSnapshot
	sentiments []*domain.SentimentSnapshot
	potentials []*domain.TradingPotential
	nextID     int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{coins: make(map[string]*domain.Coin)}
}

// Compile-time interface check.
var _ storage.Store = (*Store)(nil)

// UpsertCoin creates or refreshes a coin.
func (s *Store) UpsertCoin(_ context.Context, c *domain.Coin) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(c)
	return nil
}

func (s *Store) upsertLocked(c *domain.Coin) {
	existing, ok := s.coins[c.ID]
	if !ok {
		coinCopy := *c
		s.coins[c.ID] = &coinCopy
		return
	}
	if c.Symbol != "" {
		existing.Symbol = c.Symbol
	}
	if c.Name != "" {
		existing.Name = c.Name
	}
	existing.IsMemecoin = existing.IsMemecoin || c.IsMemecoin
	if c.FirstDetected < existing.FirstDetected {
		existing.FirstDetected = c.FirstDetected
	}
	if c.LastUpdated > existing.LastUpdated {
		existing.LastUpdated = c.LastUpdated
	}
}

// ensureCoinLocked creates a placeholder coin when id is unknown.
func (s *Store) ensureCoinLocked(id string, ts int64) {
	if _, ok := s.coins[id]; ok {
		return
	}
	s.coins[id] = &domain.Coin{ID: id, FirstDetected: ts, LastUpdated: ts}
}

// GetCoin retrieves a coin by ID. Returns ErrNotFound if not exists.
func (s *Store) GetCoin(_ context.Context, id string) (*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.coins[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	coinCopy := *c
	return &coinCopy, nil
}

// AppendPriceSnapshot appends a price snapshot, creating the coin if needed.
func (s *Store) AppendPriceSnapshot(_ context.Context, p *domain.PriceSnapshot) error {
	if p == nil || p.CoinID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendPriceLocked(p)
	return nil
}

func (s *Store) appendPriceLocked(p *domain.PriceSnapshot) {
	s.ensureCoinLocked(p.CoinID, p.Timestamp)
	s.nextID++
	pCopy := *p
	pCopy.ID = s.nextID
	s.prices = append(s.prices, &pCopy)
}

// AppendSentimentSnapshot appends a sentiment snapshot, creating the coin if needed.
func (s *Store) AppendSentimentSnapshot(_ context.Context, snap *domain.SentimentSnapshot) error {
	if snap == nil || snap.CoinID == "" || snap.Platform == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendSentimentLocked(snap)
	return nil
}

func (s *Store) appendSentimentLocked(snap *domain.SentimentSnapshot) {
	s.ensureCoinLocked(snap.CoinID, snap.Timestamp)
	s.nextID++
	sCopy := *snap
	sCopy.ID = s.nextID
	sCopy.AspectScores = copyAspects(snap.AspectScores)
	s.sentiments = append(s.sentiments, &sCopy)
}

// AppendTradingPotential appends a potential, creating the coin if needed.
func (s *Store) AppendTradingPotential(_ context.Context, p *domain.TradingPotential) error {
	if p == nil || p.CoinID == "" || !p.PotentialType.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendPotentialLocked(p)
	return nil
}

func (s *Store) appendPotentialLocked(p *domain.TradingPotential) {
	s.ensureCoinLocked(p.CoinID, p.CreatedAt)
	s.nextID++
	pCopy := *p
	pCopy.ID = s.nextID
	pCopy.Details = append([]byte(nil), p.Details...)
	s.potentials = append(s.potentials, &pCopy)
}

// SaveOpportunity writes all four rows for o atomically.
func (s *Store) SaveOpportunity(_ context.Context, o *domain.Opportunity) error {
	rec, err := storage.RecordsFor(o)
	if err != nil {
		return storage.Persist("save opportunity", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertLocked(&rec.Coin)
	s.appendPriceLocked(&rec.Price)
	s.appendSentimentLocked(&rec.Sentiment)
	s.appendPotentialLocked(&rec.Potential)
	return nil
}

// PriceSnapshots returns a coin's snapshots ordered by timestamp ASC.
func (s *Store) PriceSnapshots(_ context.Context, coinID string) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.PriceSnapshot
	for _, p := range s.prices {
		if p.CoinID == coinID {
			pCopy := *p
			out = append(out, &pCopy)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// SentimentSnapshots returns a coin's snapshots ordered by timestamp ASC.
func (s *Store) SentimentSnapshots(_ context.Context, coinID string) ([]*domain.SentimentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.SentimentSnapshot
	for _, snap := range s.sentiments {
		if snap.CoinID == coinID {
			sCopy := *snap
			sCopy.AspectScores = copyAspects(snap.AspectScores)
			out = append(out, &sCopy)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// TradingPotentials returns a coin's potentials ordered by created_at ASC.
func (s *Store) TradingPotentials(_ context.Context, coinID string) ([]*domain.TradingPotential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TradingPotential
	for _, p := range s.potentials {
		if p.CoinID == coinID {
			pCopy := *p
			pCopy.Details = append([]byte(nil), p.Details...)
			out = append(out, &pCopy)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// LatestOpportunities returns up to limit opportunities, newest first.
func (s *Store) LatestOpportunities(_ context.Context, limit int) ([]*domain.Opportunity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	potentials := make([]*domain.TradingPotential, len(s.potentials))
	copy(potentials, s.potentials)
	s.mu.RUnlock()

	// Newest first; insertion order breaks ties.
	sort.SliceStable(potentials, func(i, j int) bool {
		if potentials[i].CreatedAt != potentials[j].CreatedAt {
			return potentials[i].CreatedAt > potentials[j].CreatedAt
		}
		return potentials[i].ID > potentials[j].ID
	})

	var out []*domain.Opportunity
	for _, p := range potentials {
		if len(out) == limit {
			break
		}
		o, err := storage.OpportunityFromPotential(p)
		if err != nil {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// OpportunitiesByCoin returns a coin's opportunities ordered by created_at ASC.
func (s *Store) OpportunitiesByCoin(ctx context.Context, coinID string) ([]*domain.Opportunity, error) {
	potentials, err := s.TradingPotentials(ctx, coinID)
	if err != nil {
		return nil, err
	}

	var out []*domain.Opportunity
	for _, p := range potentials {
		o, err := storage.OpportunityFromPotential(p)
		if err != nil {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func copyAspects(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
