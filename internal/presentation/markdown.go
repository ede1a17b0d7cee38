package presentation

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memecoin-hunter/internal/domain"
)

// RenderMarkdown renders a ranking as a Markdown report.
func RenderMarkdown(opps []domain.Opportunity, summary domain.Summary, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Memecoin Hunt Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Opportunities | %d |\n", summary.Count))
	sb.WriteString(fmt.Sprintf("| Average Score | %.1f |\n", summary.AvgScore))
	sb.WriteString(fmt.Sprintf("| High Confidence | %d |\n", summary.HighConfidenceCount))
	sb.WriteString("\n")

	sb.WriteString("## Opportunities\n\n")
	if len(opps) == 0 {
		sb.WriteString("No opportunities met the threshold.\n")
		return sb.String()
	}

	sb.WriteString("| # | Symbol | Chain | Score | Type | Confidence | Market Cap | Sentiment | Security | Mentions |\n")
	sb.WriteString("|---|--------|-------|-------|------|------------|------------|-----------|----------|----------|\n")
	for i, o := range opps {
		sb.WriteString(fmt.Sprintf("| %d | $%s | %s | %.1f | %s | %.0f | %s | %.0f | %.0f | %d |\n",
			i+1, o.Symbol, o.Chain, o.OverallScore, TypeLabel(o.PotentialType), o.Confidence,
			FormatMarketCap(o.MarketCap), SentimentColumn(o.Narrative), o.SecurityScore, o.MentionCount))
	}
	sb.WriteString("\n")

	sb.WriteString("## Details\n\n")
	for _, o := range opps {
		sb.WriteString(fmt.Sprintf("### $%s (%s)\n\n", o.Symbol, o.Chain))
		sb.WriteString(fmt.Sprintf("- Address: `%s`\n", o.TokenAddress))
		sb.WriteString(fmt.Sprintf("- Reasoning: %s\n", o.Reasoning))
		if len(o.SecurityFlags) > 0 {
			sb.WriteString(fmt.Sprintf("- Security flags: %s\n", strings.Join(o.SecurityFlags, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// MarkdownFile writes each ranking to a Markdown report file.
type MarkdownFile struct {
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewMarkdownFile creates a Markdown renderer writing to path.
func NewMarkdownFile(path string, logger zerolog.Logger) *MarkdownFile {
	return &MarkdownFile{path: path, logger: logger, now: time.Now}
}

// Render writes the report file. Failures are logged.
func (m *MarkdownFile) Render(opps []domain.Opportunity, summary domain.Summary) {
	out := RenderMarkdown(opps, summary, m.now())
	if err := os.WriteFile(m.path, []byte(out), 0o644); err != nil {
		m.logger.Error().Err(err).Str("path", m.path).Msg("markdown report failed")
		return
	}
	m.logger.Info().Str("path", m.path).Msg("markdown report written")
}
