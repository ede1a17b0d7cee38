package memory

import (
	"context"
	"sort"
	"sync"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/storage"
)

// ScoreHistoryStore is an in-memory implementation of storage.ScoreHistoryStore.
type ScoreHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.Opportunity
}

// NewScoreHistoryStore creates an empty history store.
func NewScoreHistoryStore() *ScoreHistoryStore {
	return &ScoreHistoryStore{}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

// InsertBulk appends opportunities.
func (s *ScoreHistoryStore) InsertBulk(_ context.Context, opps []*domain.Opportunity) error {
	for _, o := range opps {
		if o == nil || o.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range opps {
		oCopy := *o
		oCopy.SecurityFlags = append([]string(nil), o.SecurityFlags...)
		s.data = append(s.data, &oCopy)
	}
	return nil
}

// GetByChain returns a chain's opportunities created within [start, end].
func (s *ScoreHistoryStore) GetByChain(_ context.Context, chain domain.Chain, start, end int64) ([]*domain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Opportunity
	for _, o := range s.data {
		if o.Chain == chain && o.CreatedAt >= start && o.CreatedAt <= end {
			oCopy := *o
			out = append(out, &oCopy)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}
