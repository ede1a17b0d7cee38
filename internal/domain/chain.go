package domain

import "strings"

// Chain identifies a blockchain network that scopes token addresses.
type Chain string

const (
	ChainSolana Chain = "solana"
	ChainBase   Chain = "base"
)

// String returns the string representation of Chain.
func (c Chain) String() string {
	return string(c)
}

// ParseChain normalizes a chain identifier from configuration or flags.
func ParseChain(s string) Chain {
	return Chain(strings.ToLower(strings.TrimSpace(s)))
}
