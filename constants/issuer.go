package constants

import (
	"strings"
)

// IssuerKey identifies a card issuer whose offer screens we know how to parse.
type IssuerKey string

const (
	IssuerAmex          IssuerKey = "amex"
	IssuerChase         IssuerKey = "chase"
	IssuerCapitalOne    IssuerKey = "capital_one"
	IssuerCiti          IssuerKey = "citi"
	IssuerBankOfAmerica IssuerKey = "bank_of_america"
	IssuerWellsFargo    IssuerKey = "wells_fargo"
	IssuerGeneric       IssuerKey = "generic"
)

var allIssuers = []IssuerKey{
	IssuerAmex,
	IssuerChase,
	IssuerCapitalOne,
	IssuerCiti,
	IssuerBankOfAmerica,
	IssuerWellsFargo,
	IssuerGeneric,
}

func IssuersAsStringSlice() []string {
	result := make([]string, len(allIssuers))
	for i, k := range allIssuers {
		result[i] = string(k)
	}
	return result
}

// CanonicalIssuer maps a caller hint (card name, product name, key) to an issuer key.
func CanonicalIssuer(input string) (IssuerKey, bool) {
	if input == "" {
		return IssuerGeneric, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("-", " ", "_", " ", ".", "").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")

	// synonyms map
	synonyms := map[string]IssuerKey{
		"american express":   IssuerAmex,
		"amex gold":          IssuerAmex,
		"amex platinum":      IssuerAmex,
		"blue cash":          IssuerAmex,
		"sapphire":           IssuerChase,
		"sapphire preferred": IssuerChase,
		"sapphire reserve":   IssuerChase,
		"freedom":            IssuerChase,
		"freedom unlimited":  IssuerChase,
		"capitalone":         IssuerCapitalOne,
		"venture":            IssuerCapitalOne,
		"venture x":          IssuerCapitalOne,
		"quicksilver":        IssuerCapitalOne,
		"citibank":           IssuerCiti,
		"double cash":        IssuerCiti,
		"custom cash":        IssuerCiti,
		"boa":                IssuerBankOfAmerica,
		"bofa":               IssuerBankOfAmerica,
		"bankamericard":      IssuerBankOfAmerica,
		"wells":              IssuerWellsFargo,
		"active cash":        IssuerWellsFargo,
		"autograph":          IssuerWellsFargo,
	}

	if k, ok := synonyms[normalized]; ok {
		return k, true
	}

	// check if it matches any key or its spaced form
	for _, k := range allIssuers {
		key := string(k)
		if normalized == key || normalized == strings.ReplaceAll(key, "_", " ") {
			return k, true
		}
	}

	return IssuerGeneric, false
}
