package perks

import (
	"strings"
)

const (
	descPrefixMax = 20
	descPrefixMin = 8
)

// Equivalent reports whether two candidates describe the same perk: the same
// merchant ignoring case, or descriptions sharing a long enough leading
// substring together with an identical value.
func Equivalent(a, b PerkCandidate) bool {
	if a.Merchant != "" && b.Merchant != "" && strings.EqualFold(a.Merchant, b.Merchant) {
		return true
	}
	return a.Value == b.Value && descriptionsOverlap(a.Description, b.Description)
}

func descriptionsOverlap(a, b string) bool {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	shorter := min(len(ra), len(rb))
	if shorter < descPrefixMin {
		return false
	}
	need := min(descPrefixMax, shorter)
	for i := 0; i < need; i++ {
		if ra[i] != rb[i] {
			return false
		}
	}
	return true
}

// Deduplicate keeps the first candidate of every equivalence group, in input
// order. A kept candidate without an expiration borrows one from a dropped
// duplicate.
func Deduplicate(cs []PerkCandidate) []PerkCandidate {
	out := make([]PerkCandidate, 0, len(cs))
	for _, c := range cs {
		dup := -1
		for i := range out {
			if Equivalent(out[i], c) {
				dup = i
				break
			}
		}
		if dup < 0 {
			out = append(out, c)
			continue
		}
		if out[dup].Expiration == "" && c.Expiration != "" {
			out[dup].Expiration = c.Expiration
		}
	}
	return out
}
