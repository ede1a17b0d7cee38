package presentation

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"memecoin-hunter/internal/domain"
)

// ReasoningWidth is the number of reasoning characters shown per row.
const ReasoningWidth = 40

// Console prints a ranking table and a summary panel.
type Console struct {
	w   io.Writer
	now func() time.Time
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, now: time.Now}
}

// Render prints the table and summary.
func (c *Console) Render(opps []domain.Opportunity, summary domain.Summary) {
	if len(opps) == 0 {
		fmt.Fprintln(c.w, "No opportunities found meeting the criteria")
	} else {
		fmt.Fprintln(c.w, "POTENTIAL MEMECOIN GEMS")
		tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Symbol\tChain\tScore\tType\tMarket Cap\tSentiment\tSecurity\tReasoning")
		fmt.Fprintln(tw, "------\t-----\t-----\t----\t----------\t---------\t--------\t---------")
		for _, o := range opps {
			fmt.Fprintf(tw, "$%s\t%s\t%.0f\t%s\t%s\t%.0f\t%.0f\t%s\n",
				o.Symbol,
				strings.ToUpper(o.Chain.String()),
				o.OverallScore,
				TypeLabel(o.PotentialType),
				FormatMarketCap(o.MarketCap),
				SentimentColumn(o.Narrative),
				o.SecurityScore,
				Truncate(o.Reasoning, ReasoningWidth),
			)
		}
		tw.Flush()
	}

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, "HUNT SUMMARY")
	fmt.Fprintf(c.w, "  Opportunities found: %d\n", summary.Count)
	fmt.Fprintf(c.w, "  Average score:       %.1f\n", summary.AvgScore)
	fmt.Fprintf(c.w, "  High confidence:     %d\n", summary.HighConfidenceCount)
	fmt.Fprintf(c.w, "  Scan time:           %s\n", c.now().Format("15:04:05"))
}
