package presentation

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/domain"
)

var csvHeader = []string{
	"rank", "chain", "token_address", "symbol", "name",
	"overall_score", "potential_type", "confidence",
	"price", "market_cap", "liquidity", "volume_24h", "price_change_24h",
	"hype_level", "fomo_intensity", "community_growth", "utility_mentions", "meme_virality", "risk_awareness",
	"mention_count", "security_score", "security_flags", "reasoning", "created_at",
}

// RenderCSV renders a ranking as CSV with a header row.
func RenderCSV(opps []domain.Opportunity) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i, o := range opps {
		n := o.Narrative
		row := []string{
			strconv.Itoa(i + 1), o.Chain.String(), o.TokenAddress, o.Symbol, o.Name,
			f(o.OverallScore), o.PotentialType.String(), f(o.Confidence),
			f(o.Price), f(o.MarketCap), f(o.Liquidity), f(o.Volume24h), f(o.PriceChange24h),
			f(n.HypeLevel), f(n.FomoIntensity), f(n.CommunityGrowth), f(n.UtilityMentions), f(n.MemeVirality), f(n.RiskAwareness),
			strconv.Itoa(o.MentionCount), f(o.SecurityScore), strings.Join(o.SecurityFlags, "; "), o.Reasoning,
			strconv.FormatInt(o.CreatedAt, 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CSVFile writes each ranking to a file, replacing the previous one.
type CSVFile struct {
	path   string
	logger zerolog.Logger
}

// NewCSVFile creates a CSV renderer writing to path.
func NewCSVFile(path string, logger zerolog.Logger) *CSVFile {
	return &CSVFile{path: path, logger: logger}
}

// Render writes the CSV file. Failures are logged.
func (c *CSVFile) Render(opps []domain.Opportunity, _ domain.Summary) {
	out, err := RenderCSV(opps)
	if err == nil {
		err = os.WriteFile(c.path, []byte(out), 0o644)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("path", c.path).Msg("csv export failed")
		return
	}
	c.logger.Info().Str("path", c.path).Int("rows", len(opps)).Msg("csv exported")
}
