package domain

// RawToken is one entry of a provider's newly-listed token page.
type RawToken struct {
	Address      string  `json:"address"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Liquidity    float64 `json:"liquidity"`
	Volume24h    float64 `json:"v24hUSD"`
	CreationTime *int64  `json:"creationTime,omitempty"` // unix seconds, nil when unknown
}

// TokenCandidate is a token that passed discovery eligibility filters.
// Lives for one discovery cycle and is never persisted directly.
type TokenCandidate struct {
	Address   string // unique per chain
	Symbol    string
	Name      string
	Liquidity float64
	Volume24h float64
	CreatedAt *int64 // unix seconds, nil when the provider omits it
	Chain     Chain
}

// CoinID returns the persistent coin identifier for the candidate.
func (c TokenCandidate) CoinID() string {
	return CoinID(c.Chain, c.Address)
}

// CoinID builds the persistent coin identifier for an address on a chain.
func CoinID(chain Chain, address string) string {
	return string(chain) + ":" + address
}
