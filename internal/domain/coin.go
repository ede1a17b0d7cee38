package domain

// Coin is the identity row every snapshot and potential references.
type Coin struct {
	ID            string // chain:address
	Symbol        string
	Name          string
	IsMemecoin    bool
	FirstDetected int64 // unix ms
	LastUpdated   int64 // unix ms
}

// PriceSnapshot is one market observation of a coin.
type PriceSnapshot struct {
	ID        int64
	CoinID    string
	Price     float64
	Volume24h float64
	MarketCap float64
	Timestamp int64 // unix ms
}

// SentimentSnapshot is one social sentiment observation of a coin.
type SentimentSnapshot struct {
	ID             int64
	CoinID         string
	Platform       string
	SentimentScore float64
	AspectScores   map[string]float64 // serialized as JSON
	MentionCount   int
	Timestamp      int64 // unix ms
}

// TradingPotential is one classified opportunity row for a coin.
// Details carries the serialized Opportunity.
type TradingPotential struct {
	ID              int64
	CoinID          string
	PotentialType   PotentialType
	ConfidenceScore float64
	Details         []byte // JSON
	IsActive        bool
	CreatedAt       int64 // unix ms
}

// PlatformTwitter is the sentiment platform recorded for social feed snapshots.
const PlatformTwitter = "twitter"
