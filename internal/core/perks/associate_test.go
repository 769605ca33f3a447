package perks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociatePositional(t *testing.T) {
	assert.Equal(t, []pairing{{0, 0}, {1, 1}, {2, 2}}, associatePositional(3))
	assert.Empty(t, associatePositional(0))
}

func TestAssociateEqualCountsIgnoreOffsets(t *testing.T) {
	// Equal counts never consult distance, even when offsets disagree.
	got := associate([]float64{0.5, 0.0}, []float64{0.0, 0.5})
	assert.Equal(t, []pairing{{0, 0}, {1, 1}}, got)
}

func TestAssociateByDistance(t *testing.T) {
	testCases := []struct {
		name      string
		merchants []float64
		offers    []float64
		expected  []pairing
	}{
		{
			name:      "three merchants two offers",
			merchants: []float64{0.0 / 18, 6.0 / 18, 11.0 / 18},
			offers:    []float64{0.0 / 16, 8.0 / 16},
			expected:  []pairing{{Merchant: 0, Offer: 0}, {Merchant: 2, Offer: 1}},
		},
		{
			name:      "two offers three merchants, middle merchant unpaired",
			merchants: []float64{0.0, 0.5, 0.9},
			offers:    []float64{0.05, 0.85},
			expected:  []pairing{{Merchant: 0, Offer: 0}, {Merchant: 2, Offer: 1}},
		},
		{
			name:      "merchant equidistant from two offers is dropped",
			merchants: []float64{0.4},
			offers:    []float64{0.2, 0.6},
			expected:  nil,
		},
		{
			name:      "offer equidistant from two merchants is dropped",
			merchants: []float64{0.2, 0.6},
			offers:    []float64{0.4},
			expected:  nil,
		},
		{
			name:      "too far apart",
			merchants: []float64{0.0, 0.9},
			offers:    []float64{0.5},
			expected:  nil,
		},
		{
			name:      "exactly at the limit",
			merchants: []float64{0.0, 0.75},
			offers:    []float64{0.25},
			expected:  []pairing{{Merchant: 0, Offer: 0}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, associateByDistance(tc.merchants, tc.offers))
		})
	}
}

func TestOfferSegmentOffsets(t *testing.T) {
	segs := offerSegments(newColumnLine("5% cash back 15% cash back", nil))
	require.Len(t, segs, 2)
	assert.Equal(t, "5% cash back", segs[0].Text)
	assert.Equal(t, "15% cash back", segs[1].Text)
	assert.InDelta(t, 0.0, segs[0].Pos, 1e-9)
	assert.InDelta(t, 13.0/26.0, segs[1].Pos, 1e-9)

	segs = offerSegments(newColumnLine("Spend $50, get $10 back Spend $100, get $25 back", nil))
	require.Len(t, segs, 2)
	assert.Equal(t, "Spend $50, get $10 back", segs[0].Text)
	assert.Equal(t, "$10", segs[0].Value)
	assert.Equal(t, "Spend $100, get $25 back", segs[1].Text)
	assert.InDelta(t, 24.0/48.0, segs[1].Pos, 1e-9)

	segs = offerSegments(newColumnLine("Earn 10% back, up to $50", nil))
	assert.Len(t, segs, 1)

	segs = offerSegments(newColumnLine("5% back Exp 12/31 10% back Exp 1/15", nil))
	require.Len(t, segs, 2)
	assert.Equal(t, "5% back", segs[0].Text)
	assert.Equal(t, "12/31", segs[0].Expiration)
	assert.Equal(t, "1/15", segs[1].Expiration)
}

func TestSplitWordsOffsets(t *testing.T) {
	spans := splitWords(newColumnLine("Dyson Arlo", nil), 2)
	require.Len(t, spans, 2)
	assert.Equal(t, "Dyson", spans[0].Name)
	assert.InDelta(t, 0.0, spans[0].Pos, 1e-9)
	assert.Equal(t, "Arlo", spans[1].Name)
	assert.InDelta(t, 6.0/10.0, spans[1].Pos, 1e-9)

	assert.Nil(t, splitWords(newColumnLine("Dyson Arlo", nil), 3))
	assert.Nil(t, splitWords(newColumnLine("Dyson and", nil), 2))
	assert.Nil(t, splitWords(newColumnLine("dyson Arlo", nil), 2))
}

func TestOfferSegmentsUseRawColumns(t *testing.T) {
	// Column gaps collapse in the normalized text but positions follow the raw line.
	segs := offerSegments(newColumnLine("5% back                       10% back", nil))
	require.Len(t, segs, 2)
	assert.Equal(t, "10% back", segs[1].Text)
	assert.InDelta(t, 30.0/38.0, segs[1].Pos, 1e-9)
}

func TestColumnLinePos(t *testing.T) {
	line := newColumnLine("Dyson   Arlo", nil)
	assert.Equal(t, "Dyson Arlo", line.Text)
	assert.InDelta(t, 0.0, line.Pos(0), 1e-9)
	assert.InDelta(t, 8.0/12.0, line.Pos(6), 1e-9)
	assert.InDelta(t, 0.0, newColumnLine("", nil).Pos(0), 1e-9)
}

func TestAssociateLabeled(t *testing.T) {
	testCases := []struct {
		name     string
		labels   []int
		offers   []float64
		expected []pairing
	}{
		{
			name:     "no labels keeps positional pairs",
			labels:   []int{-1, -1},
			offers:   []float64{0.0, 0.5},
			expected: []pairing{{0, 0}, {1, 1}},
		},
		{
			name:     "labels agreeing with order",
			labels:   []int{0, -1},
			offers:   []float64{0.0, 0.5},
			expected: []pairing{{0, 0}, {1, 1}},
		},
		{
			name:     "labels against order pair by name",
			labels:   []int{1, 0},
			offers:   []float64{0.0, 0.5},
			expected: []pairing{{Merchant: 0, Offer: 1}, {Merchant: 1, Offer: 0}},
		},
		{
			name:     "two offers naming one merchant are dropped",
			labels:   []int{1, 1},
			offers:   []float64{0.0, 0.5},
			expected: nil,
		},
		{
			name:     "unlabeled offer dropped when another label conflicts",
			labels:   []int{-1, 0},
			offers:   []float64{0.0, 0.5},
			expected: []pairing{{Merchant: 0, Offer: 1}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, associateLabeled([]float64{0.0, 0.5}, tc.offers, tc.labels))
		})
	}
}

func TestNamedMerchant(t *testing.T) {
	names := []merchantSpan{{Name: "Dyson"}, {Name: "Arlo"}}
	assert.Equal(t, 1, namedMerchant("15% back on Arlo", names))
	assert.Equal(t, 0, namedMerchant("5% back on dyson.com", names))
	assert.Equal(t, -1, namedMerchant("5% back on Arlovo", names))
	assert.Equal(t, -1, namedMerchant("Dyson or Arlo", names))
	assert.Equal(t, -1, namedMerchant("5% back", names))
}

func TestSharedLead(t *testing.T) {
	assert.True(t, sharedLead([]offerSegment{{Text: "Earn 5% back"}, {Text: "earn 3x points"}}))
	assert.False(t, sharedLead([]offerSegment{{Text: "Earn 5% back"}, {Text: "Get 3x points"}}))
	assert.False(t, sharedLead([]offerSegment{{Text: "5% cash back"}, {Text: "15% cash back"}}))
}
