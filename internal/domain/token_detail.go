package domain

// TokenDetail is the market overview of a single token. Liquidity and
// Volume24h are nil when the provider omitted them; a reported 0 is kept.
type TokenDetail struct {
	Address        string   `json:"address"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	MarketCap      float64  `json:"mc"`
	Liquidity      *float64 `json:"liquidity,omitempty"`
	Volume24h      *float64 `json:"v24hUSD,omitempty"`
	PriceChange24h float64  `json:"priceChange24hPercent"`
}

// LiquidityOrZero returns the reported liquidity, or 0 when absent.
func (d TokenDetail) LiquidityOrZero() float64 {
	if d.Liquidity == nil {
		return 0
	}
	return *d.Liquidity
}

// Volume24hOrZero returns the reported 24h volume, or 0 when absent.
func (d TokenDetail) Volume24hOrZero() float64 {
	if d.Volume24h == nil {
		return 0
	}
	return *d.Volume24h
}

// MergeCandidate fills identity and liquidity fields the overview omitted
// with the values observed at discovery.
func (d TokenDetail) MergeCandidate(c TokenCandidate) TokenDetail {
	if d.Address == "" {
		d.Address = c.Address
	}
	if d.Symbol == "" {
		d.Symbol = c.Symbol
	}
	if d.Name == "" {
		d.Name = c.Name
	}
	if d.Liquidity == nil {
		v := c.Liquidity
		d.Liquidity = &v
	}
	if d.Volume24h == nil {
		v := c.Volume24h
		d.Volume24h = &v
	}
	return d
}
