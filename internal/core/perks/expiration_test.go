package perks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindExpiration(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{name: "keyword and numeric date", input: "Expires 12/31/25", expected: "12/31/25", found: true},
		{name: "abbreviated keyword without year", input: "Exp. 01/15", expected: "01/15", found: true},
		{name: "month name", input: "Valid through Dec 31, 2025", expected: "Dec 31, 2025", found: true},
		{name: "iso date", input: "Offer ends 2025-11-30", expected: "2025-11-30", found: true},
		{name: "relative", input: "Expires in 5 days", expected: "in 5 days", found: true},
		{name: "days left counter", input: "3 days left", expected: "3 days left", found: true},
		{name: "date only line", input: "12/31/2025", expected: "12/31/2025", found: true},
		{name: "trailing offer text", input: "Earn $15 back. Expires 12/31/25", expected: "12/31/25", found: true},
		{name: "money is not a date", input: "Spend $12.31 or more", found: false},
		{name: "bare numeric pair without keyword", input: "Open 24/7", found: false},
		{name: "no date", input: "Nordstrom", found: false},
		{name: "spend is not ends", input: "Spend $80 or more", found: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, ok := FindExpiration(tc.input)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, e.Text)
		})
	}
}

func TestSplitExpiration(t *testing.T) {
	before, exp, ok := SplitExpiration("up to $50 total. Expires 11/30/25")
	assert.True(t, ok)
	assert.Equal(t, "up to $50 total.", before)
	assert.Equal(t, "11/30/25", exp)

	before, exp, ok = SplitExpiration("Get $20 back - Exp 10/01/25")
	assert.True(t, ok)
	assert.Equal(t, "Get $20 back", before)
	assert.Equal(t, "10/01/25", exp)

	before, exp, ok = SplitExpiration("Earn 5% back")
	assert.False(t, ok)
	assert.Equal(t, "Earn 5% back", before)
	assert.Empty(t, exp)
}

func TestFindExpirations(t *testing.T) {
	exps := FindExpirations("Exp 12/31 Exp 1/15")
	if assert.Len(t, exps, 2) {
		assert.Equal(t, "12/31", exps[0].Text)
		assert.Equal(t, "1/15", exps[1].Text)
	}
}
