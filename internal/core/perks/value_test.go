package perks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardValue(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		kind     ValueKind
		found    bool
	}{
		{name: "reward after spend threshold", input: "Spend $80 or more, earn $15 back", expected: "$15", kind: ValueMoney, found: true},
		{name: "percent cash back", input: "5% cash back", expected: "5%", kind: ValuePercent, found: true},
		{name: "cents dropped", input: "Earn $15.00 back", expected: "$15", kind: ValueMoney, found: true},
		{name: "cap after percent", input: "Earn 10% back, up to $50", expected: "10%", kind: ValuePercent, found: true},
		{name: "statement credit", input: "Get a $25 statement credit", expected: "$25", kind: ValueMoney, found: true},
		{name: "points", input: "Earn 5,000 Membership Rewards points", expected: "5,000 Membership Rewards points", kind: ValuePoints, found: true},
		{name: "multiplier", input: "Get 3x points at restaurants", expected: "3x points", kind: ValueMultiplier, found: true},
		{name: "threshold only", input: "Spend $100 or more", found: false},
		{name: "no amount", input: "Shop the new collection", found: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := RewardValue(tc.input)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.expected, v.Text)
				assert.Equal(t, tc.kind, v.Kind)
			}
		})
	}
}

func TestFindValues(t *testing.T) {
	vals := FindValues("Spend $80, earn $15 back or 5% on 2x points")
	texts := make([]string, len(vals))
	for i, v := range vals {
		texts[i] = v.Text
	}
	assert.Equal(t, []string{"$80", "$15", "5%", "2x points"}, texts)
	assert.Equal(t, 6, vals[0].Start)

	assert.Empty(t, FindValues("Dyson Arlo"))
	assert.True(t, HasValue("10,000 miles"))
	assert.False(t, HasValue("Terms apply"))
}

func TestRewardValuesDropsThresholds(t *testing.T) {
	vals := RewardValues("Spend $50, get $10 back Spend $100, get $25 back")
	if assert.Len(t, vals, 2) {
		assert.Equal(t, "$10", vals[0].Text)
		assert.Equal(t, "$25", vals[1].Text)
	}
}
