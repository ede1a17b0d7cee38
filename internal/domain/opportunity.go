package domain

// PotentialType classifies a scored opportunity.
type PotentialType string

const (
	PotentialDipBuy    PotentialType = "DIP_BUY"
	PotentialHypeTrain PotentialType = "HYPE_TRAIN"
	PotentialNewGem    PotentialType = "NEW_GEM"
)

// String returns the string representation of PotentialType.
func (p PotentialType) String() string {
	return string(p)
}

// IsValid checks if the potential type is a valid value.
func (p PotentialType) IsValid() bool {
	return p == PotentialDipBuy || p == PotentialHypeTrain || p == PotentialNewGem
}

// Opportunity is the scored, persisted result for one token in one pass.
// Score is clamped to [0,100] and Confidence to [10,100].
type Opportunity struct {
	ID             string              `json:"id"`
	TokenAddress   string              `json:"token_address"`
	Symbol         string              `json:"symbol"`
	Name           string              `json:"name"`
	Chain          Chain               `json:"chain"`
	Price          float64             `json:"price"`
	MarketCap      float64             `json:"market_cap"`
	Liquidity      float64             `json:"liquidity"`
	Volume24h      float64             `json:"volume_24h"`
	PriceChange24h float64             `json:"price_change_24h"`
	Narrative      NarrativeIndicators `json:"narrative_indicators"`
	MentionCount   int                 `json:"mention_count"`
	SecurityScore  float64             `json:"security_score"`
	SecurityFlags  []string            `json:"security_flags"`
	OverallScore   float64             `json:"overall_score"`
	PotentialType  PotentialType       `json:"potential_type"`
	Confidence     float64             `json:"confidence"`
	Reasoning      string              `json:"reasoning"`
	CreatedAt      int64               `json:"created_at"` // unix ms
}

// CoinID returns the persistent coin identifier of the opportunity's token.
func (o Opportunity) CoinID() string {
	return CoinID(o.Chain, o.TokenAddress)
}

// Summary aggregates a ranked opportunity list for display.
type Summary struct {
	Count               int     `json:"count"`
	AvgScore            float64 `json:"avg_score"`
	HighConfidenceCount int     `json:"high_confidence_count"`
}
