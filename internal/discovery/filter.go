// Package discovery lists newly created tokens per chain and keeps the ones
// that pass static eligibility filters.
package discovery

import (
	"time"

	"github.com/mr-tron/base58"

	"memecoin-hunter/internal/domain"
)

// solanaAddressLen is the decoded length of a Solana public key.
const solanaAddressLen = 32

// Filter holds eligibility floors. Zero MaxAge disables the age check and zero
// MaxSymbolLength disables the symbol length bound.
type Filter struct {
	MinLiquidity    float64
	MinVolume24h    float64
	MaxAge          time.Duration
	MaxSymbolLength int
}

// DefaultFilter returns the stock eligibility floors.
func DefaultFilter() Filter {
	return Filter{
		MinLiquidity:    50000,
		MinVolume24h:    100000,
		MaxAge:          24 * time.Hour,
		MaxSymbolLength: 10,
	}
}

// Eligible reports whether raw passes every filter at time now.
// Tokens without a creation time are not excluded by age.
func (f Filter) Eligible(raw domain.RawToken, chain domain.Chain, now time.Time) bool {
	if !validAddress(raw.Address, chain) {
		return false
	}
	if raw.Symbol == "" {
		return false
	}
	if f.MaxSymbolLength > 0 && len([]rune(raw.Symbol)) > f.MaxSymbolLength {
		return false
	}
	if raw.Liquidity < f.MinLiquidity {
		return false
	}
	if raw.Volume24h < f.MinVolume24h {
		return false
	}
	if f.MaxAge > 0 && raw.CreationTime != nil {
		age := now.Sub(time.Unix(*raw.CreationTime, 0))
		if age > f.MaxAge {
			return false
		}
	}
	return true
}

func validAddress(address string, chain domain.Chain) bool {
	if address == "" {
		return false
	}
	if chain != domain.ChainSolana {
		return true
	}
	b, err := base58.Decode(address)
	return err == nil && len(b) == solanaAddressLen
}
