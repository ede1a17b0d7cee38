package presentation

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memecoin-hunter/internal/domain"
)

func sampleOpportunities() []domain.Opportunity {
	return []domain.Opportunity{
		{
			TokenAddress: "So1aNa", Symbol: "PEPE", Name: "Pepe, the frog", Chain: domain.ChainSolana,
			MarketCap: 2_450_000, OverallScore: 71.6, PotentialType: domain.PotentialHypeTrain, Confidence: 90,
			Narrative:     domain.NarrativeIndicators{HypeLevel: 80, FomoIntensity: 70},
			SecurityScore: 80, SecurityFlags: []string{"Liquidity not locked"}, MentionCount: 12,
			Reasoning: "Strong social sentiment | High volume/liquidity ratio | Optimal market cap range",
		},
		{
			TokenAddress: "0xbase", Symbol: "TOSHI", Name: "Toshi", Chain: domain.ChainBase,
			MarketCap: 85_000, OverallScore: 42.4, PotentialType: domain.PotentialNewGem, Confidence: 55,
			SecurityScore: 50, SecurityFlags: []string{"No security data available"},
			Reasoning: "Early stage potential: HIGH RISK",
		},
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		mc   float64
		want string
	}{
		{0, "$0K"},
		{85_000, "$85K"},
		{999_499, "$999K"},
		{1_000_000, "$1.0M"},
		{2_450_000, "$2.5M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMarketCap(tt.mc), "mc=%v", tt.mc)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 40))
	assert.Equal(t, strings.Repeat("a", 40), Truncate(strings.Repeat("a", 40), 40))
	assert.Equal(t, strings.Repeat("a", 40)+"...", Truncate(strings.Repeat("a", 41), 40))
	assert.Equal(t, "héé...", Truncate("héééé", 3))
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Dip Buy", TypeLabel(domain.PotentialDipBuy))
	assert.Equal(t, "Hype Train", TypeLabel(domain.PotentialHypeTrain))
	assert.Equal(t, "New Gem", TypeLabel(domain.PotentialNewGem))
}

func TestConsole_Render(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.now = func() time.Time { return time.Date(2026, 1, 2, 13, 14, 15, 0, time.UTC) }

	c.Render(sampleOpportunities(), domain.Summary{Count: 2, AvgScore: 57, HighConfidenceCount: 1})
	out := buf.String()

	assert.Contains(t, out, "$PEPE")
	assert.Contains(t, out, "SOLANA")
	assert.Contains(t, out, "Hype Train")
	assert.Contains(t, out, "$2.5M")
	assert.Contains(t, out, "$85K")
	assert.Contains(t, out, "Strong social sentiment | High volume/li...")
	assert.Contains(t, out, "HUNT SUMMARY")
	assert.Contains(t, out, "Average score:       57.0")
	assert.Contains(t, out, "High confidence:     1")
	assert.Contains(t, out, "13:14:15")
}

func TestConsole_RenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Render(nil, domain.Summary{})

	out := buf.String()
	assert.Contains(t, out, "No opportunities found")
	assert.Contains(t, out, "Opportunities found: 0")
	assert.NotContains(t, out, "Symbol")
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(sampleOpportunities())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Pepe, the frog", records[1][4])
	assert.Equal(t, "HYPE_TRAIN", records[1][6])
	assert.Equal(t, "TOSHI", records[2][3])
}

func TestRenderMarkdown(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := RenderMarkdown(sampleOpportunities(), domain.Summary{Count: 2, AvgScore: 57, HighConfidenceCount: 1}, at)

	assert.Contains(t, out, "Generated: 2026-01-02T03:04:05Z")
	assert.Contains(t, out, "| Opportunities | 2 |")
	assert.Contains(t, out, "| 1 | $PEPE | solana | 71.6 | Hype Train |")
	assert.Contains(t, out, "- Security flags: No security data available")

	empty := RenderMarkdown(nil, domain.Summary{}, at)
	assert.Contains(t, empty, "No opportunities met the threshold.")
}

type recordingRenderer struct {
	calls int
	last  []domain.Opportunity
}

func (r *recordingRenderer) Render(opps []domain.Opportunity, _ domain.Summary) {
	r.calls++
	r.last = opps
}

func TestMulti_Render(t *testing.T) {
	a, b := &recordingRenderer{}, &recordingRenderer{}
	Multi{a, nil, b}.Render(sampleOpportunities(), domain.Summary{})

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Len(t, b.last, 2)
}
