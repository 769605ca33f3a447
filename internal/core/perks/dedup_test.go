package perks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalent(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     PerkCandidate
		expected bool
	}{
		{
			name:     "same merchant ignoring case",
			a:        PerkCandidate{Merchant: "Nordstrom", Description: "Spend $80, earn $15", Value: "$15"},
			b:        PerkCandidate{Merchant: "NORDSTROM", Description: "Earn 5% back", Value: "5%"},
			expected: true,
		},
		{
			name:     "shared description prefix and value",
			a:        PerkCandidate{Merchant: "", Description: "Spend $80 or more, earn $15 back", Value: "$15"},
			b:        PerkCandidate{Merchant: "Nordstrom", Description: "Spend $80 or more, earn $15 back on purchases", Value: "$15"},
			expected: true,
		},
		{
			name:     "shared description but different value",
			a:        PerkCandidate{Merchant: "Dyson", Description: "Spend $80 or more, earn $15 back", Value: "$15"},
			b:        PerkCandidate{Merchant: "Arlo", Description: "Spend $80 or more, earn $20 back", Value: "$20"},
			expected: false,
		},
		{
			name:     "short descriptions never overlap",
			a:        PerkCandidate{Merchant: "Dyson", Description: "5% back", Value: "5%"},
			b:        PerkCandidate{Merchant: "Arlo", Description: "5% back", Value: "5%"},
			expected: false,
		},
		{
			name:     "empty merchants do not match each other",
			a:        PerkCandidate{Description: "Earn 5% back", Value: "5%"},
			b:        PerkCandidate{Description: "Get $10 back", Value: "$10"},
			expected: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Equivalent(tc.a, tc.b))
			assert.Equal(t, tc.expected, Equivalent(tc.b, tc.a))
		})
	}
}

func TestDeduplicateKeepsFirst(t *testing.T) {
	in := []PerkCandidate{
		{Merchant: "Nordstrom", Description: "Spend $80 or more, earn $15 back", Value: "$15", Lines: []int{0, 1}},
		{Merchant: "Dyson", Description: "5% cash back", Value: "5%"},
		{Merchant: "nordstrom", Description: "Spend $80 or more, earn $15 back", Value: "$15", Expiration: "12/31/25", Lines: []int{3, 4, 5}},
	}
	out := Deduplicate(in)
	if assert.Len(t, out, 2) {
		assert.Equal(t, "Nordstrom", out[0].Merchant)
		assert.Equal(t, []int{0, 1}, out[0].Lines)
		assert.Equal(t, "12/31/25", out[0].Expiration)
		assert.Equal(t, "Dyson", out[1].Merchant)
	}
	assert.Empty(t, Deduplicate(nil))
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name     string
		c        PerkCandidate
		expected float64
	}{
		{name: "every signal", c: PerkCandidate{Merchant: "Nordstrom", Value: "$15", Description: "Spend $80 or more, earn $15 back"}, expected: 1.0},
		{name: "merchant and value, short description", c: PerkCandidate{Merchant: "Dyson", Value: "5%", Description: "5% cash back"}, expected: 0.85},
		{name: "value and description only", c: PerkCandidate{Value: "5%", Description: "Earn 5% back on dining"}, expected: 0.70},
		{name: "placeholder merchant", c: PerkCandidate{Merchant: "Unknown", Value: "5%", Description: "5% back"}, expected: 0.55},
		{name: "merchant only", c: PerkCandidate{Merchant: "Hertz"}, expected: 0.60},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.c)
			assert.InDelta(t, tc.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
