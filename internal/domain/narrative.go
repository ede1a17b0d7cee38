package domain

// Aspect is one narrative dimension of social sentiment.
type Aspect string

const (
	AspectHype      Aspect = "hype"
	AspectFomo      Aspect = "fomo"
	AspectCommunity Aspect = "community"
	AspectUtility   Aspect = "utility"
	AspectMeme      Aspect = "meme"
	AspectRisk      Aspect = "risk"
)

// AllAspects lists every aspect in display order.
var AllAspects = []Aspect{
	AspectHype,
	AspectFomo,
	AspectCommunity,
	AspectUtility,
	AspectMeme,
	AspectRisk,
}

// String returns the string representation of Aspect.
func (a Aspect) String() string {
	return string(a)
}

// IsValid checks if the aspect is one of the six known values.
func (a Aspect) IsValid() bool {
	switch a {
	case AspectHype, AspectFomo, AspectCommunity, AspectUtility, AspectMeme, AspectRisk:
		return true
	}
	return false
}

// NarrativeIndicators holds the six aspect scores, each in [0,100].
// The zero value is the defined default when no posts were found.
type NarrativeIndicators struct {
	HypeLevel       float64 `json:"hype_level"`
	FomoIntensity   float64 `json:"fomo_intensity"`
	CommunityGrowth float64 `json:"community_growth"`
	UtilityMentions float64 `json:"utility_mentions"`
	MemeVirality    float64 `json:"meme_virality"`
	RiskAwareness   float64 `json:"risk_awareness"`
}

// Get returns the score for one aspect.
func (n NarrativeIndicators) Get(a Aspect) float64 {
	switch a {
	case AspectHype:
		return n.HypeLevel
	case AspectFomo:
		return n.FomoIntensity
	case AspectCommunity:
		return n.CommunityGrowth
	case AspectUtility:
		return n.UtilityMentions
	case AspectMeme:
		return n.MemeVirality
	case AspectRisk:
		return n.RiskAwareness
	}
	return 0
}

// Map returns the aspect scores keyed by aspect name.
func (n NarrativeIndicators) Map() map[string]float64 {
	m := make(map[string]float64, len(AllAspects))
	for _, a := range AllAspects {
		m[a.String()] = n.Get(a)
	}
	return m
}

// IsZero reports whether no aspect has a score.
func (n NarrativeIndicators) IsZero() bool {
	return n == NarrativeIndicators{}
}

// With returns a copy of n with aspect a set to v.
func (n NarrativeIndicators) With(a Aspect, v float64) NarrativeIndicators {
	switch a {
	case AspectHype:
		n.HypeLevel = v
	case AspectFomo:
		n.FomoIntensity = v
	case AspectCommunity:
		n.CommunityGrowth = v
	case AspectUtility:
		n.UtilityMentions = v
	case AspectMeme:
		n.MemeVirality = v
	case AspectRisk:
		n.RiskAwareness = v
	}
	return n
}

// Composite is the weighted sentiment composite used for ranking:
// 0.3 hype + 0.2 fomo + 0.2 community + 0.2 meme + 0.1 utility - 0.1 risk.
func (n NarrativeIndicators) Composite() float64 {
	return n.HypeLevel*0.3 +
		n.FomoIntensity*0.2 +
		n.CommunityGrowth*0.2 +
		n.MemeVirality*0.2 +
		n.UtilityMentions*0.1 -
		n.RiskAwareness*0.1
}
