package domain

// RawSecurity is the provider's on-chain security audit record.
type RawSecurity struct {
	RugPull            bool    `json:"rugPull"`
	IsBlacklisted      bool    `json:"isBlacklisted"`
	Top10HolderPercent float64 `json:"top10HolderPercent"`
	IsLiquidityLocked  bool    `json:"isLiquidityLocked"`
}

// SecurityAssessment is a 0-100 security score with the flags that lowered it.
type SecurityAssessment struct {
	Score float64  `json:"score"`
	Flags []string `json:"flags"`
}
