package perks

import (
	"github.com/joseph-ayodele/perks-tracker/constants"
)

// Classify returns the first registered issuer with a keyword in text, or the
// generic key. Keyword sets are curated to be disjoint, so registration order
// only matters when a screen quotes another issuer.
func (r *Registry) Classify(text string) constants.IssuerKey {
	for _, p := range r.order {
		if p.Key == constants.IssuerGeneric {
			continue
		}
		for _, re := range p.keywordRes {
			if re.MatchString(text) {
				return p.Key
			}
		}
	}
	return constants.IssuerGeneric
}

// Resolve picks the profile for text. A registered hint wins over keyword
// classification; an unknown hint is ignored.
func (r *Registry) Resolve(text string, hint constants.IssuerKey) *IssuerProfile {
	if hint != "" {
		if p, ok := r.byKey[hint]; ok {
			return p
		}
		if key, ok := constants.CanonicalIssuer(string(hint)); ok {
			if p, ok := r.byKey[key]; ok {
				return p
			}
		}
	}
	return r.byKey[r.Classify(text)]
}
