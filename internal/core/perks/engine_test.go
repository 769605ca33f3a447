package perks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/perks-tracker/constants"
)

const amexScreen = `9:41
Amex Offers
Added to Card
Nordstrom
Spend $80 or more, earn $15 back
Expires 12/31/25
Best Buy
Earn 10% back on purchases
up to $50 total. Expires 11/30/25
Hertz
Get $20 back. Expires 10/01/25
View all`

const chaseScreen = `Chase Offers
All offers
Dyson   Arlo   Sephora
5% cash back  10% cash back  $15 back
Expires 12/31
Walgreens
Earn 3% cash back`

const genericScreen = `10:15 AM
Rewards
BEST BUY
Get $25 back on $250+
Exp 06/30/2026
Earn 5% back at Target
Expires 07/15/26`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := DefaultRegistry(nil)
	require.NoError(t, err)
	return NewEngine(reg, nil)
}

type summary struct {
	Merchant, Value, Expiration string
}

func summarize(cs []PerkCandidate) []summary {
	out := make([]summary, len(cs))
	for i, c := range cs {
		out[i] = summary{Merchant: c.Merchant, Value: c.Value, Expiration: c.Expiration}
	}
	return out
}

func TestExtractSingleCleanOffer(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Nordstrom\nSpend $80 or more, earn $15 back\nExpires 12/31/25", "")
	require.Len(t, got, 1)
	assert.Equal(t, "Nordstrom", got[0].Merchant)
	assert.Equal(t, "$15", got[0].Value)
	assert.Equal(t, "12/31/25", got[0].Expiration)
	assert.Equal(t, "Spend $80 or more, earn $15 back", got[0].Description)
	assert.Equal(t, constants.IssuerGeneric, got[0].Issuer)
	assert.Equal(t, []int{0, 1, 2}, got[0].Lines)
	assert.InDelta(t, 1.0, got[0].Confidence, 1e-9)
}

func TestExtractSharedLine(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Dyson Arlo\n5% cash back 15% cash back", "")
	require.Len(t, got, 2)
	assert.Equal(t, "Dyson", got[0].Merchant)
	assert.Equal(t, "5% cash back", got[0].Description)
	assert.Equal(t, "5%", got[0].Value)
	assert.Equal(t, "Arlo", got[1].Merchant)
	assert.Equal(t, "15% cash back", got[1].Description)
	assert.Equal(t, "15%", got[1].Value)
}

func TestExtractNoiseOnly(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("9:41\nHome\nOffers\nSee all\n10:15 AM\nAdd to Card\n>", "")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.NotNil(t, e.Extract("", ""))
	assert.Empty(t, e.Extract("   \n\n", constants.IssuerAmex))
}

func TestExtractCorrectsMerchant(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Nordstr0m\nSpend $80 or more, earn $15 back\nExpires 12/31/25", constants.IssuerAmex)
	require.Len(t, got, 1)
	assert.Equal(t, "Nordstrom", got[0].Merchant)
	assert.Equal(t, constants.IssuerAmex, got[0].Issuer)
}

func TestExtractRepeatedBlockCollapses(t *testing.T) {
	e := newTestEngine(t)
	block := "Nordstrom\nSpend $80 or more, earn $15 back\nExpires 12/31/25"
	got := e.Extract(block+"\n"+block, "")
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 1, 2}, got[0].Lines)
}

func TestExtractAmexBlocks(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract(amexScreen, "")
	assert.Equal(t, []summary{
		{Merchant: "Nordstrom", Value: "$15", Expiration: "12/31/25"},
		{Merchant: "Best Buy", Value: "10%", Expiration: "11/30/25"},
		{Merchant: "Hertz", Value: "$20", Expiration: "10/01/25"},
	}, summarize(got))
	require.Len(t, got, 3)
	assert.Equal(t, "Earn 10% back on purchases up to $50 total.", got[1].Description)
	assert.Equal(t, "Get $20 back.", got[2].Description)
	assert.InDelta(t, 0.85, got[2].Confidence, 1e-9)
	for _, c := range got {
		assert.Equal(t, constants.IssuerAmex, c.Issuer)
	}
}

func TestExtractChaseColumns(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract(chaseScreen, "")
	assert.Equal(t, []summary{
		{Merchant: "Dyson", Value: "5%", Expiration: "12/31"},
		{Merchant: "Arlo", Value: "10%", Expiration: "12/31"},
		{Merchant: "Sephora", Value: "$15", Expiration: "12/31"},
		{Merchant: "Walgreens", Value: "3%"},
	}, summarize(got))
}

func TestExtractChaseDistanceFallback(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Dyson Arlo Sephora\n5% back 10% back", constants.IssuerChase)
	assert.Equal(t, []summary{
		{Merchant: "Dyson", Value: "5%"},
		{Merchant: "Sephora", Value: "10%"},
	}, summarize(got))
}

func TestExtractGenericFallbackAfterIssuer(t *testing.T) {
	e := newTestEngine(t)
	// The second offer has no dictionary merchant; the generic pass still finds it.
	got := e.Extract("Amex Offers\nNordstrom\nEarn $15 back\nEarn 5% back at Target", "")
	assert.Equal(t, []summary{
		{Merchant: "Nordstrom", Value: "$15"},
		{Merchant: "Target", Value: "5%"},
	}, summarize(got))
}

func TestExtractGenericScreen(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract(genericScreen, "")
	assert.Equal(t, []summary{
		{Merchant: "Best Buy", Value: "$25", Expiration: "06/30/2026"},
		{Merchant: "Target", Value: "5%", Expiration: "07/15/26"},
	}, summarize(got))
}

func TestExtractKeepsCapLineInBlock(t *testing.T) {
	e := newTestEngine(t)
	text := "Best Buy\nEarn 10% back on purchases\nup to $50 total\nExpires 11/30/25"
	for _, hint := range []constants.IssuerKey{constants.IssuerAmex, ""} {
		got := e.Extract(text, hint)
		require.Len(t, got, 1, "hint %q", hint)
		assert.Equal(t, summary{Merchant: "Best Buy", Value: "10%", Expiration: "11/30/25"}, summarize(got)[0])
		assert.Equal(t, "Earn 10% back on purchases up to $50 total", got[0].Description)
		assert.Equal(t, []int{0, 1, 2, 3}, got[0].Lines)
	}
}

func TestParseOrphansSkipsCapOfConsumedOffer(t *testing.T) {
	reg, err := DefaultRegistry(nil)
	require.NoError(t, err)
	p := reg.Generic()
	s := newParseState(SplitLines("Best Buy\nEarn 10% back\nup to $50 total\nEarn 5% back at Target", p), p)
	s.consume(0, 1)

	got := parseOrphans(s)
	require.Len(t, got, 1)
	assert.Equal(t, "Target", got[0].Merchant)
	assert.Equal(t, "5%", got[0].Value)
}

func TestExtractWideColumnsUnequalCounts(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Dyson          Arlo          Sephora\n5% back                       10% back", constants.IssuerChase)
	assert.Equal(t, []summary{
		{Merchant: "Dyson", Value: "5%"},
		{Merchant: "Sephora", Value: "10%"},
	}, summarize(got))
}

func TestExtractSharedLineOffersNameMerchant(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Dyson | Arlo\n15% back on Arlo 5% back on Dyson", constants.IssuerChase)
	require.Len(t, got, 2)
	assert.Equal(t, "Dyson", got[0].Merchant)
	assert.Equal(t, "5% back on Dyson", got[0].Description)
	assert.Equal(t, "Arlo", got[1].Merchant)
	assert.Equal(t, "15% back on Arlo", got[1].Description)
}

func TestExtractTwoWordBrandWithTwoRewards(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Best Buy\nEarn 5% back Earn 3x points", "")
	require.Len(t, got, 1)
	assert.Equal(t, "Best Buy", got[0].Merchant)
	assert.Equal(t, "5%", got[0].Value)
}

func TestExtractDictionaryBrandWithDigits(t *testing.T) {
	e := newTestEngine(t)
	got := e.Extract("Forever21\nEarn 10% back", constants.IssuerAmex)
	require.Len(t, got, 1)
	assert.Equal(t, "Forever 21", got[0].Merchant)
}

func TestExtractMerchantWithoutOfferEmitsNothing(t *testing.T) {
	e := newTestEngine(t)
	assert.Empty(t, e.Extract("Nordstrom\nBest Buy\nHertz", ""))
}

var propertyInputs = []struct {
	text string
	hint constants.IssuerKey
}{
	{text: amexScreen},
	{text: chaseScreen},
	{text: genericScreen},
	{text: "Dyson Arlo Sephora\n5% back 10% back", hint: constants.IssuerChase},
	{text: "Nordstr0m\nSpend $ 80 or more, eam $15 back\nExpires 12/31/25\nNordstrom\nSpend $80 or more, earn $15 back", hint: constants.IssuerAmex},
	{text: "Target | Walmart\nGet 5% back Get 10% back\nExp 12/31 Exp 1/15", hint: constants.IssuerCapitalOne},
	{text: "Citi Merchant Offers\nAmazon\nEarn 5,000 ThankYou points\nwhen you spend $100\nExpires 09/30/25"},
	{text: "==\n$\n5%cash back\nearn$20 at Lowe's\n3 days left"},
}

func TestExtractIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	for _, in := range propertyInputs {
		assert.Equal(t, e.Extract(in.text, in.hint), e.Extract(in.text, in.hint))
	}
}

func TestExtractNeverFabricates(t *testing.T) {
	e := newTestEngine(t)
	for _, in := range propertyInputs {
		p := e.reg.Resolve(in.text, in.hint)
		lines := SplitLines(in.text, p)
		texts := make([]string, len(lines))
		for i, l := range lines {
			texts[i] = l.Text
		}
		normalized := strings.ToLower(strings.Join(texts, "\n"))

		for _, c := range e.Extract(in.text, in.hint) {
			assert.True(t, c.Merchant != "" || c.Value != "", "candidate without merchant or value: %+v", c)
			if c.Value != "" {
				assert.Contains(t, normalized, strings.ToLower(c.Value))
			}
			if c.Merchant != "" && !strings.Contains(normalized, strings.ToLower(c.Merchant)) {
				assert.True(t, isDictionaryName(p, c.Merchant), "merchant %q not in input or dictionary", c.Merchant)
			}
		}
	}
}

func isDictionaryName(p *IssuerProfile, name string) bool {
	for _, m := range p.Merchants {
		if m.Name == name {
			return true
		}
	}
	return false
}

func TestExtractOutputHasNoDuplicates(t *testing.T) {
	e := newTestEngine(t)
	for _, in := range propertyInputs {
		got := e.Extract(in.text, in.hint)
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				assert.False(t, Equivalent(got[i], got[j]), "%+v and %+v are duplicates", got[i], got[j])
			}
		}
	}
}

func TestExtractConfidenceBounds(t *testing.T) {
	e := newTestEngine(t)
	for _, in := range propertyInputs {
		for _, c := range e.Extract(in.text, in.hint) {
			assert.GreaterOrEqual(t, c.Confidence, ScoreBase)
			assert.LessOrEqual(t, c.Confidence, 1.0)
		}
	}
}

func TestSupportedIssuers(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, []constants.IssuerKey{
		constants.IssuerAmex,
		constants.IssuerChase,
		constants.IssuerCapitalOne,
		constants.IssuerCiti,
		constants.IssuerBankOfAmerica,
		constants.IssuerWellsFargo,
	}, e.SupportedIssuers())
	assert.Equal(t, "American Express", e.DisplayName(constants.IssuerAmex))
	assert.Equal(t, constants.IssuerChase, e.Classify(chaseScreen))
}

func TestInspect(t *testing.T) {
	e := newTestEngine(t)
	issuer, lines := e.Inspect("Amex Offers\nNordstrom\nEarn $15 back", "")
	assert.Equal(t, constants.IssuerAmex, issuer)
	require.Len(t, lines, 3)
	assert.Equal(t, "noise", lines[0].Kind)
	assert.Equal(t, RoleMerchant, lines[1].Role)
	assert.Equal(t, RoleOffer, lines[2].Role)
}
