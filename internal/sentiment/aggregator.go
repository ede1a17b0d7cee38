// Package sentiment turns social posts into narrative aspect scores.
package sentiment

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"memecoin-hunter/internal/domain"
)

// PolarityScorer returns a compound polarity in roughly [-1,1].
type PolarityScorer interface {
	Polarity(text string) float64
}

// VaderScorer scores polarity with the VADER compound measure.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the VADER lexicon.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity implements PolarityScorer.
func (v *VaderScorer) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// Aggregator maps post batches to NarrativeIndicators. Safe for concurrent use
// when its scorer is.
type Aggregator struct {
	scorer PolarityScorer
}

// NewAggregator creates an Aggregator. A nil scorer uses VADER.
func NewAggregator(scorer PolarityScorer) *Aggregator {
	if scorer == nil {
		scorer = NewVaderScorer()
	}
	return &Aggregator{scorer: scorer}
}

// Aggregate scores posts. Each post contributes polarity/match_count to every
// aspect it matches; per aspect the observations are averaged and normalized
// to ((avg+1)/2)*100 rounded to two decimals. Aspects without observations
// score 0. Risk awareness is stored as an absolute value.
func (a *Aggregator) Aggregate(posts []string) domain.NarrativeIndicators {
	var out domain.NarrativeIndicators
	if len(posts) == 0 {
		return out
	}

	sums := make(map[domain.Aspect]float64, len(domain.AllAspects))
	counts := make(map[domain.Aspect]int, len(domain.AllAspects))

	for _, post := range posts {
		lowered := strings.ToLower(post)
		polarity := 0.0
		scored := false

		for _, aspect := range domain.AllAspects {
			n := matchCount(aspect, lowered)
			if n == 0 {
				continue
			}
			if !scored {
				polarity = a.scorer.Polarity(post)
				scored = true
			}
			sums[aspect] += polarity / float64(n)
			counts[aspect]++
		}
	}

	for _, aspect := range domain.AllAspects {
		if counts[aspect] == 0 {
			continue
		}
		score := normalize(sums[aspect] / float64(counts[aspect]))
		if aspect == domain.AspectRisk {
			score = math.Abs(score)
		}
		out = out.With(aspect, score)
	}
	return out
}

// normalize maps an average polarity onto [0,100] with two decimals.
func normalize(avg float64) float64 {
	v := (avg + 1) / 2 * 100
	v = math.Max(0, math.Min(100, v))
	return math.Round(v*100) / 100
}
