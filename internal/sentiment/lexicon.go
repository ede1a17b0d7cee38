package sentiment

import (
	"strings"

	"memecoin-hunter/internal/domain"
)

// lexicon maps every aspect to its trigger substrings. Triggers are lowercase.
var lexicon = map[domain.Aspect][]string{
	domain.AspectHype:      {"moon", "🚀", "rocket", "bullish", "pump", "gem", "alpha", "lfg"},
	domain.AspectFomo:      {"fomo", "dont miss", "last chance", "going crazy", "exploding", "parabolic"},
	domain.AspectCommunity: {"community", "holders", "diamond hands", "💎", "hodl", "strong hands"},
	domain.AspectUtility:   {"utility", "usecase", "product", "development", "roadmap", "team"},
	domain.AspectMeme:      {"meme", "viral", "funny", "lol", "😂", "hilarious", "based"},
	domain.AspectRisk:      {"rug", "scam", "careful", "dyor", "risky", "beware", "sus", "copytraders", "crash"},
}

// Triggers returns a copy of the trigger list for aspect.
func Triggers(aspect domain.Aspect) []string {
	return append([]string(nil), lexicon[aspect]...)
}

// matchCount counts distinct triggers of aspect present in lowered text.
func matchCount(aspect domain.Aspect, lowered string) int {
	n := 0
	for _, trigger := range lexicon[aspect] {
		if strings.Contains(lowered, trigger) {
			n++
		}
	}
	return n
}
