package scoring

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memecoin-hunter/internal/domain"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestScorer() *Scorer {
	return New(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "opp-1" }),
	)
}

func uniform(v, risk float64) domain.NarrativeIndicators {
	return domain.NarrativeIndicators{
		HypeLevel:       v,
		FomoIntensity:   v,
		CommunityGrowth: v,
		UtilityMentions: v,
		MemeVirality:    v,
		RiskAwareness:   risk,
	}
}

func TestScore_HypeTrain(t *testing.T) {
	detail := domain.TokenDetail{
		Address: "A1", Symbol: "PEPE", Name: "Pepe",
		Price: 0.001, MarketCap: 2_000_000, Liquidity: ptr(100_000), Volume24h: ptr(60_000), PriceChange24h: -5,
	}
	sec := domain.SecurityAssessment{Score: 100, Flags: []string{}}

	opp := newTestScorer().Score(detail, uniform(75, 25), sec, domain.ChainSolana)

	assert.Equal(t, "opp-1", opp.ID)
	assert.Equal(t, fixedNow.UnixMilli(), opp.CreatedAt)
	assert.Equal(t, domain.ChainSolana, opp.Chain)
	assert.Equal(t, "PEPE", opp.Symbol)
	assert.Equal(t, 100.0, opp.OverallScore, "29 + 25 + 20 + 30 clamps to 100")
	assert.Equal(t, domain.PotentialHypeTrain, opp.PotentialType)
	assert.Equal(t, 100.0, opp.Confidence)
	assert.Equal(t,
		"Strong social sentiment | High volume/liquidity ratio | Optimal market cap range | Strong security profile | High-momentum play",
		opp.Reasoning)
}

func TestScore_NoSignals(t *testing.T) {
	sec := domain.SecurityAssessment{Score: 50, Flags: []string{"No security data available"}}
	opp := newTestScorer().Score(domain.TokenDetail{Address: "A2", Symbol: "ZERO"}, domain.NarrativeIndicators{}, sec, domain.ChainBase)

	assert.InDelta(t, 25.0, opp.OverallScore, 1e-9)
	assert.Equal(t, domain.PotentialNewGem, opp.PotentialType)
	assert.Equal(t, 55.0, opp.Confidence)
	assert.Equal(t, "Early stage potential: HIGH RISK | High security risks | New gem: early stage discovery", opp.Reasoning)
	assert.Equal(t, []string{"No security data available"}, opp.SecurityFlags)
}

func TestScore_ModerateBuckets(t *testing.T) {
	detail := domain.TokenDetail{Address: "A3", MarketCap: 50_000_000, Liquidity: ptr(100_000), Volume24h: ptr(30_000)}
	sec := domain.SecurityAssessment{Score: 65, Flags: []string{"Moderate concentration"}}

	opp := newTestScorer().Score(detail, uniform(50, 0), sec, domain.ChainSolana)

	// composite 50 -> 20, ratio 0.3 -> 15, mc above range -> 0, security 19.5
	assert.InDelta(t, 54.5, opp.OverallScore, 1e-9)
	assert.Equal(t, "Moderate social interest | Moderate trading activity | Moderate security risks | New gem: early stage discovery", opp.Reasoning)
}

func TestScore_DipBuyTakesPrecedence(t *testing.T) {
	detail := domain.TokenDetail{Address: "A4", MarketCap: 500_000, Liquidity: ptr(100_000), Volume24h: ptr(40_000), PriceChange24h: -25}
	ind := uniform(80, 0)
	require.InDelta(t, 80.0, SentimentComposite(ind), 1e-9)

	opp := newTestScorer().Score(detail, ind, domain.SecurityAssessment{Score: 90}, domain.ChainSolana)

	assert.Equal(t, domain.PotentialDipBuy, opp.PotentialType)
	assert.Contains(t, opp.Reasoning, "Potential dip-buying opportunity")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		change    float64
		composite float64
		ratio     float64
		want      domain.PotentialType
	}{
		{"dip over hype", -25, 80, 0.4, domain.PotentialDipBuy},
		{"dip needs sentiment", -25, 50, 0.4, domain.PotentialNewGem},
		{"dip needs drop beyond 20", -20, 80, 0.1, domain.PotentialNewGem},
		{"hype train", 10, 71, 0.31, domain.PotentialHypeTrain},
		{"hype needs ratio", 10, 90, 0.3, domain.PotentialNewGem},
		{"default", 0, 0, 0, domain.PotentialNewGem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.change, tt.composite, tt.ratio))
		})
	}
}

func TestVolumeLiquidityRatio(t *testing.T) {
	assert.Equal(t, 0.0, VolumeLiquidityRatio(1000, 0))
	assert.Equal(t, 0.5, VolumeLiquidityRatio(50, 100))
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		ind  domain.NarrativeIndicators
		want float64
	}{
		{"strong security, active", 80, uniform(20, 0), 100},
		{"neutral security, two active", 50, domain.NarrativeIndicators{HypeLevel: 11, MemeVirality: 11}, 70},
		{"weak security, none active", 39.9, domain.NarrativeIndicators{}, 25},
		{"utility does not count", 50, domain.NarrativeIndicators{HypeLevel: 50, UtilityMentions: 90}, 55},
		{"exactly 10 is inactive", 60, uniform(10, 0), 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.sec, tt.ind))
		})
	}
}

func TestScore_ClampedForExtremeInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	extreme := func() float64 {
		switch rng.Intn(6) {
		case 0:
			return math.Inf(1)
		case 1:
			return math.Inf(-1)
		case 2:
			return 0
		default:
			return (rng.Float64()*2 - 1) * 1e12
		}
	}

	s := newTestScorer()
	for i := 0; i < 500; i++ {
		detail := domain.TokenDetail{
			Address:        "X",
			MarketCap:      extreme(),
			Liquidity:      ptr(extreme()),
			Volume24h:      ptr(extreme()),
			PriceChange24h: extreme(),
		}
		ind := domain.NarrativeIndicators{
			HypeLevel:       extreme(),
			FomoIntensity:   extreme(),
			CommunityGrowth: extreme(),
			UtilityMentions: extreme(),
			MemeVirality:    extreme(),
			RiskAwareness:   extreme(),
		}
		sec := domain.SecurityAssessment{Score: extreme()}

		opp := s.Score(detail, ind, sec, domain.ChainSolana)
		assert.GreaterOrEqual(t, opp.OverallScore, 0.0)
		assert.LessOrEqual(t, opp.OverallScore, 100.0)
		assert.GreaterOrEqual(t, opp.Confidence, 10.0)
		assert.LessOrEqual(t, opp.Confidence, 100.0)
		assert.True(t, opp.PotentialType.IsValid())
	}
}

func ptr(v float64) *float64 { return &v }
