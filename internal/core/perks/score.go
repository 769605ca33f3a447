package perks

import (
	"math"
	"strings"
)

// Confidence increments. Each signal adds a fixed amount; the sum is capped.
const (
	ScoreBase        = 0.30
	ScoreMerchant    = 0.30
	ScoreValue       = 0.25
	ScoreDescription = 0.15

	minDescriptionRunes = 15
)

var placeholderMerchants = map[string]struct{}{
	"unknown": {}, "merchant": {}, "n/a": {}, "na": {}, "none": {}, "offer": {}, "-": {},
}

// Score rates how many independent signals back a candidate.
func Score(c PerkCandidate) float64 {
	score := ScoreBase
	if hasRealMerchant(c.Merchant) {
		score += ScoreMerchant
	}
	if c.Value != "" {
		score += ScoreValue
	}
	if runeLen(strings.TrimSpace(c.Description)) >= minDescriptionRunes {
		score += ScoreDescription
	}
	return math.Round(math.Min(score, 1.0)*100) / 100
}

func hasRealMerchant(m string) bool {
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "" {
		return false
	}
	_, placeholder := placeholderMerchants[m]
	return !placeholder
}
