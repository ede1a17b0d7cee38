// Package presentation displays ranked opportunities. Renderers consume the
// ranking only; they never feed anything back into the pipeline.
package presentation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"memecoin-hunter/internal/domain"
)

// Renderer displays one pass's ranking and summary.
type Renderer interface {
	Render(opps []domain.Opportunity, summary domain.Summary)
}

// Multi fans a ranking out to several renderers in order.
type Multi []Renderer

// Render calls every renderer.
func (m Multi) Render(opps []domain.Opportunity, summary domain.Summary) {
	for _, r := range m {
		if r != nil {
			r.Render(opps, summary)
		}
	}
}

// FormatMarketCap renders a market cap as $NK below one million and $N.NM above.
func FormatMarketCap(mc float64) string {
	if mc < 1_000_000 {
		return fmt.Sprintf("$%.0fK", mc/1000)
	}
	return fmt.Sprintf("$%.1fM", mc/1_000_000)
}

// Truncate cuts s to max runes, appending "..." when it was cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// TypeLabel turns NEW_GEM into "New Gem".
func TypeLabel(t domain.PotentialType) string {
	words := strings.Split(strings.ToLower(t.String()), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// SentimentColumn is the mean of hype and FOMO shown in tables.
func SentimentColumn(n domain.NarrativeIndicators) float64 {
	return (n.HypeLevel + n.FomoIntensity) / 2
}
