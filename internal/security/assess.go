// Package security converts raw on-chain risk data into a 0-100 score.
package security

import (
	"fmt"

	"memecoin-hunter/internal/domain"
)

// Score bounds and deductions.
const (
	MaxScore    = 100.0
	NoDataScore = 50.0

	rugPullPenalty        = 50.0
	blacklistPenalty      = 40.0
	highConcPenalty       = 30.0
	moderateConcPenalty   = 15.0
	unlockedLiqPenalty    = 20.0
	highConcThreshold     = 80.0
	moderateConcThreshold = 60.0
)

// NoDataFlag explains the neutral score given when no security data exists.
const NoDataFlag = "No security data available"

// Assess scores raw. A nil record yields NoDataScore with NoDataFlag.
// Deductions are independent and cumulative; the score never drops below 0.
func Assess(raw *domain.RawSecurity) domain.SecurityAssessment {
	if raw == nil {
		return NoData()
	}

	score := MaxScore
	flags := []string{}

	if raw.RugPull {
		score -= rugPullPenalty
		flags = append(flags, "Rug pull risk detected")
	}
	if raw.IsBlacklisted {
		score -= blacklistPenalty
		flags = append(flags, "Token blacklisted")
	}

	switch top := raw.Top10HolderPercent; {
	case top > highConcThreshold:
		score -= highConcPenalty
		flags = append(flags, fmt.Sprintf("High concentration: %.1f%% in top 10 holders", top))
	case top > moderateConcThreshold:
		score -= moderateConcPenalty
		flags = append(flags, fmt.Sprintf("Moderate concentration: %.1f%% in top 10 holders", top))
	}

	if !raw.IsLiquidityLocked {
		score -= unlockedLiqPenalty
		flags = append(flags, "Liquidity not locked")
	}

	if score < 0 {
		score = 0
	}
	return domain.SecurityAssessment{Score: score, Flags: flags}
}

// NoData returns the neutral assessment used when the provider has no record.
func NoData() domain.SecurityAssessment {
	return domain.SecurityAssessment{Score: NoDataScore, Flags: []string{NoDataFlag}}
}
