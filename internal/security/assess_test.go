package security

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"memecoin-hunter/internal/domain"
)

func TestAssess_Clean(t *testing.T) {
	got := Assess(&domain.RawSecurity{IsLiquidityLocked: true, Top10HolderPercent: 20})
	assert.Equal(t, 100.0, got.Score)
	assert.Empty(t, got.Flags)
}

func TestAssess_NoData(t *testing.T) {
	got := Assess(nil)
	assert.Equal(t, 50.0, got.Score)
	assert.Equal(t, []string{NoDataFlag}, got.Flags)
}

func TestAssess_Deductions(t *testing.T) {
	tests := []struct {
		name  string
		raw   domain.RawSecurity
		score float64
		flags int
	}{
		{"rug pull", domain.RawSecurity{RugPull: true, IsLiquidityLocked: true}, 50, 1},
		{"blacklisted", domain.RawSecurity{IsBlacklisted: true, IsLiquidityLocked: true}, 60, 1},
		{"high concentration", domain.RawSecurity{Top10HolderPercent: 85, IsLiquidityLocked: true}, 70, 1},
		{"concentration exactly 80 is moderate", domain.RawSecurity{Top10HolderPercent: 80, IsLiquidityLocked: true}, 85, 1},
		{"moderate concentration", domain.RawSecurity{Top10HolderPercent: 65, IsLiquidityLocked: true}, 85, 1},
		{"concentration exactly 60 is fine", domain.RawSecurity{Top10HolderPercent: 60, IsLiquidityLocked: true}, 100, 0},
		{"unlocked", domain.RawSecurity{}, 80, 1},
		{"concentration and unlocked", domain.RawSecurity{Top10HolderPercent: 90}, 50, 2},
		{"everything floors at zero", domain.RawSecurity{RugPull: true, IsBlacklisted: true, Top10HolderPercent: 99}, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			got := Assess(&raw)
			assert.Equal(t, tt.score, got.Score)
			assert.Len(t, got.Flags, tt.flags)
		})
	}
}

func TestAssess_FlagOrder(t *testing.T) {
	got := Assess(&domain.RawSecurity{RugPull: true, IsBlacklisted: true, Top10HolderPercent: 70})
	assert.Equal(t, []string{
		"Rug pull risk detected",
		"Token blacklisted",
		"Moderate concentration: 70.0% in top 10 holders",
		"Liquidity not locked",
	}, got.Flags)
}

func TestAssess_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		raw := &domain.RawSecurity{
			RugPull:            rng.Intn(2) == 0,
			IsBlacklisted:      rng.Intn(2) == 0,
			Top10HolderPercent: rng.Float64() * 120,
			IsLiquidityLocked:  rng.Intn(2) == 0,
		}
		if rng.Intn(10) == 0 {
			raw = nil
		}

		got := Assess(raw)
		assert.GreaterOrEqual(t, got.Score, 0.0)
		assert.LessOrEqual(t, got.Score, 100.0)
		if got.Score < 100 {
			assert.NotEmpty(t, got.Flags)
		}
	}
}
