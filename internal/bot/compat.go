package bot

import "strings"

// Compatibility weights. The blend rewards either strong agreement or strong
// opposition on personality, shared interests, similar level, and a small
// same-district bonus.
const (
	weightPersonality = 0.4
	weightInterests   = 0.3
	weightLevel       = 0.2
	weightDistrict    = 0.1

	districtBonus = 0.2

	// FormalAllianceThreshold is the minimum compatibility score for a formal
	// alliance proposal.
	FormalAllianceThreshold = 0.7
)

// Compatibility scores two bots in [0,1]. Symmetric.
func Compatibility(a, b *Bot) float64 {
	score := weightPersonality*personalityAffinity(a.Personality, b.Personality) +
		weightInterests*interestOverlap(a.Interests, b.Interests) +
		weightLevel*levelSimilarity(a.Level, b.Level)
	if a.District == b.District {
		score += weightDistrict * districtBonus
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// personalityAffinity averages per-slider affinity. Each slider scores
// max(1-d, d) where d = |a-b|/100, so both close agreement and strong
// opposition count as chemistry.
func personalityAffinity(a, b Personality) float64 {
	as, bs := a.Sliders(), b.Sliders()
	var sum float64
	for i := range as {
		d := float64(abs(as[i]-bs[i])) / 100
		sum += max64(1-d, d)
	}
	return sum / float64(len(as))
}

func interestOverlap(a, b []string) float64 {
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	if denom == 0 {
		denom = 1
	}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[strings.ToLower(s)] = true
	}
	shared := 0
	counted := make(map[string]bool, len(b))
	for _, s := range b {
		k := strings.ToLower(s)
		if seen[k] && !counted[k] {
			shared++
			counted[k] = true
		}
	}
	return float64(shared) / float64(denom)
}

func levelSimilarity(a, b int) float64 {
	s := 1 - float64(abs(a-b))/10
	if s < 0 {
		return 0
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
