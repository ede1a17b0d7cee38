// Package scoring combines sentiment, market and security signals into a
// ranked, classified opportunity.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"memecoin-hunter/internal/domain"
)

// Shares of the overall score.
const (
	sentimentShare = 0.4
	securityShare  = 0.3
)

// Market cap bucket bounds in USD.
const (
	MinOptimalMarketCap = 100_000
	MaxOptimalMarketCap = 10_000_000
)

// ReasonSeparator joins reasoning parts.
const ReasonSeparator = " | "

// Scorer builds Opportunities. The zero value is not usable; use New.
type Scorer struct {
	now   func() time.Time
	newID func() string
}

// Option configures Scorer.
type Option func(*Scorer)

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

// WithIDGenerator sets the opportunity ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Scorer) {
		s.newID = newID
	}
}

// New creates a Scorer.
func New(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the overall score, classification, confidence and reasoning
// for one token. Checks run in a fixed order and reasoning follows it:
// sentiment, volume/liquidity, market cap, security, classification.
// The security score counts twice: once weighted into the overall score and
// once as the reported SecurityScore.
func (s *Scorer) Score(detail domain.TokenDetail, ind domain.NarrativeIndicators, sec domain.SecurityAssessment, chain domain.Chain) domain.Opportunity {
	var reasons []string
	total := 0.0

	composite := SentimentComposite(ind)
	total += composite * sentimentShare
	switch {
	case composite > 60:
		reasons = append(reasons, "Strong social sentiment")
	case composite > 40:
		reasons = append(reasons, "Moderate social interest")
	}

	ratio := VolumeLiquidityRatio(detail.Volume24hOrZero(), detail.LiquidityOrZero())
	switch {
	case ratio > 0.5:
		total += 25
		reasons = append(reasons, "High volume/liquidity ratio")
	case ratio > 0.2:
		total += 15
		reasons = append(reasons, "Moderate trading activity")
	}

	switch mc := detail.MarketCap; {
	case mc >= MinOptimalMarketCap && mc <= MaxOptimalMarketCap:
		total += 20
		reasons = append(reasons, "Optimal market cap range")
	case mc < MinOptimalMarketCap:
		total += 10
		reasons = append(reasons, "Early stage potential: HIGH RISK")
	}

	total += sec.Score * securityShare
	switch {
	case sec.Score >= 80:
		reasons = append(reasons, "Strong security profile")
	case sec.Score >= 60:
		reasons = append(reasons, "Moderate security risks")
	default:
		reasons = append(reasons, "High security risks")
	}

	potential := Classify(detail.PriceChange24h, composite, ratio)
	reasons = append(reasons, classificationReason[potential])

	return domain.Opportunity{
		ID:             s.newID(),
		TokenAddress:   detail.Address,
		Symbol:         detail.Symbol,
		Name:           detail.Name,
		Chain:          chain,
		Price:          detail.Price,
		MarketCap:      detail.MarketCap,
		Liquidity:      detail.LiquidityOrZero(),
		Volume24h:      detail.Volume24hOrZero(),
		PriceChange24h: detail.PriceChange24h,
		Narrative:      ind,
		SecurityScore:  sec.Score,
		SecurityFlags:  append([]string(nil), sec.Flags...),
		OverallScore:   clamp(total, 0, 100),
		PotentialType:  potential,
		Confidence:     Confidence(sec.Score, ind),
		Reasoning:      strings.Join(reasons, ReasonSeparator),
		CreatedAt:      s.now().UnixMilli(),
	}
}

var classificationReason = map[domain.PotentialType]string{
	domain.PotentialDipBuy:    "Potential dip-buying opportunity",
	domain.PotentialHypeTrain: "High-momentum play",
	domain.PotentialNewGem:    "New gem: early stage discovery",
}

// SentimentComposite is the weighted sum of aspect scores, with risk
// awareness subtracted.
func SentimentComposite(ind domain.NarrativeIndicators) float64 {
	return ind.Composite()
}

// VolumeLiquidityRatio is volume/liquidity, or 0 when liquidity is 0.
func VolumeLiquidityRatio(volume, liquidity float64) float64 {
	if liquidity == 0 {
		return 0
	}
	return volume / liquidity
}

// Classify picks the potential type. DIP_BUY is checked before HYPE_TRAIN;
// NEW_GEM is the fallback.
func Classify(priceChange24h, composite, ratio float64) domain.PotentialType {
	switch {
	case priceChange24h < -20 && composite > 50:
		return domain.PotentialDipBuy
	case composite > 70 && ratio > 0.3:
		return domain.PotentialHypeTrain
	default:
		return domain.PotentialNewGem
	}
}

// Confidence starts at 70, moves with the security score and the number of
// active (>10) aspects among hype, fomo, community and meme, and is clamped to [10,100].
func Confidence(securityScore float64, ind domain.NarrativeIndicators) float64 {
	c := 70.0
	switch {
	case securityScore >= 80:
		c += 20
	case securityScore < 40:
		c -= 30
	}

	active := 0
	for _, v := range []float64{ind.HypeLevel, ind.FomoIntensity, ind.CommunityGrowth, ind.MemeVirality} {
		if v > 10 {
			active++
		}
	}
	switch {
	case active >= 3:
		c += 10
	case active < 2:
		c -= 15
	}

	return clamp(c, 10, 100)
}

// clamp bounds v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
