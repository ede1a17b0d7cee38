package orchestrator

import (
	"fmt"
	"strings"

	"memecoin-hunter/internal/domain"
)

// RunResult contains the counts and ranking of one pass.
type RunResult struct {
	Chains          int
	ChainFailures   int
	Discovered      int
	Scored          int
	Skipped         int
	Degraded        int
	Qualified       int
	Persisted       int
	PersistFailures int
	Opportunities   []domain.Opportunity
	Summary         domain.Summary
	Errors          []string
}

// ErrorCount is the number of failures that could have hidden opportunities.
func (r *RunResult) ErrorCount() int {
	return r.ChainFailures + r.Skipped
}

// Status describes the pass in one line. An empty ranking caused by
// failures is reported differently from a quiet market.
func (r *RunResult) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d tokens, scored %d, skipped %d (errors), %d degraded, %d qualified",
		r.Discovered, r.Scored, r.Skipped, r.Degraded, r.Qualified)
	if r.PersistFailures > 0 {
		fmt.Fprintf(&b, ", %d not persisted", r.PersistFailures)
	}

	switch {
	case r.Qualified > 0:
	case r.ErrorCount() > 0:
		fmt.Fprintf(&b, ": no opportunities, but %d chain failures and %d skipped tokens may have hidden some",
			r.ChainFailures, r.Skipped)
	default:
		b.WriteString(": quiet market, no token met the threshold")
	}
	return b.String()
}
