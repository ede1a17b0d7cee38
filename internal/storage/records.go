package storage

import (
	"encoding/json"
	"fmt"

	"memecoin-hunter/internal/domain"
)

// OpportunityRecords is the row set written for one Opportunity.
type OpportunityRecords struct {
	Coin      domain.Coin
	Price     domain.PriceSnapshot
	Sentiment domain.SentimentSnapshot
	Potential domain.TradingPotential
}

// RecordsFor maps o onto the four persisted rows. The potential's details
// carry the full opportunity as JSON.
func RecordsFor(o *domain.Opportunity) (*OpportunityRecords, error) {
	if err := ValidateOpportunity(o); err != nil {
		return nil, err
	}

	details, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode opportunity details: %w", err)
	}

	coinID := o.CoinID()
	return &OpportunityRecords{
		Coin: domain.Coin{
			ID:            coinID,
			Symbol:        o.Symbol,
			Name:          o.Name,
			IsMemecoin:    true,
			FirstDetected: o.CreatedAt,
			LastUpdated:   o.CreatedAt,
		},
		Price: domain.PriceSnapshot{
			CoinID:    coinID,
			Price:     o.Price,
			Volume24h: o.Volume24h,
			MarketCap: o.MarketCap,
			Timestamp: o.CreatedAt,
		},
		Sentiment: domain.SentimentSnapshot{
			CoinID:         coinID,
			Platform:       domain.PlatformTwitter,
			SentimentScore: o.Narrative.Composite(),
			AspectScores:   o.Narrative.Map(),
			MentionCount:   o.MentionCount,
			Timestamp:      o.CreatedAt,
		},
		Potential: domain.TradingPotential{
			CoinID:          coinID,
			PotentialType:   o.PotentialType,
			ConfidenceScore: o.Confidence,
			Details:         details,
			IsActive:        true,
			CreatedAt:       o.CreatedAt,
		},
	}, nil
}

// OpportunityFromPotential decodes the opportunity stored in p's details.
func OpportunityFromPotential(p *domain.TradingPotential) (*domain.Opportunity, error) {
	if len(p.Details) == 0 {
		return nil, fmt.Errorf("potential %d: empty details", p.ID)
	}
	var o domain.Opportunity
	if err := json.Unmarshal(p.Details, &o); err != nil {
		return nil, fmt.Errorf("decode potential %d details: %w", p.ID, err)
	}
	return &o, nil
}

// ValidateOpportunity checks the fields required to persist o.
func ValidateOpportunity(o *domain.Opportunity) error {
	if o == nil || o.TokenAddress == "" || o.Chain == "" {
		return ErrInvalidInput
	}
	if !o.PotentialType.IsValid() {
		return fmt.Errorf("%w: potential type %q", ErrInvalidInput, o.PotentialType)
	}
	return nil
}

// EncodeAspects serializes aspect scores for storage.
func EncodeAspects(m map[string]float64) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode aspect scores: %w", err)
	}
	return string(b), nil
}

// DecodeAspects parses stored aspect scores.
func DecodeAspects(s string) (map[string]float64, error) {
	m := map[string]float64{}
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode aspect scores: %w", err)
	}
	return m, nil
}
