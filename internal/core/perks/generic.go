package perks

import (
	"regexp"
)

// reAtBrand finds a brand named inside offer text, as in "5% back at Target".
var reAtBrand = regexp.MustCompile(`\b(?:at|with|from)\s+(\p{Lu}[\p{L}\p{N}'&.+-]*(?:\s+\p{Lu}[\p{L}\p{N}'&.+-]*){0,3})`)

// parseGeneric runs without a merchant dictionary: shared lines split one
// word per merchant, then title-case merchant blocks, then offers left over
// with no merchant line above them.
func parseGeneric(s *parseState) []PerkCandidate {
	out := parseShared(s)
	out = append(out, parseBlocks(s)...)
	return append(out, parseOrphans(s)...)
}

func parseOrphans(s *parseState) []PerkCandidate {
	var out []PerkCandidate
	for i := range s.lines {
		if !s.open(i) {
			continue
		}
		var desc, exp string
		used := []int{i}
		switch s.roles[i] {
		case RoleOffer, RoleAmbiguous:
			desc = s.text(i)
		case RoleExpiration:
			desc, exp, _ = SplitExpiration(s.text(i))
		default:
			continue
		}
		if !HasValue(desc) {
			continue
		}
		if isCapLine(desc) && i > 0 && s.consumed[i-1] {
			// limit of the offer above
			continue
		}
		if exp == "" {
			if k := s.nextOpen(i); k >= 0 && s.roles[k] == RoleExpiration {
				if before, e, _ := SplitExpiration(s.text(k)); before == "" {
					exp = e
					used = append(used, k)
				}
			}
		}
		merchant := ""
		if m := reAtBrand.FindStringSubmatch(desc); m != nil {
			merchant = s.merchantName(m[1])
		}
		c := newCandidate(merchant, desc, exp, used)
		if !c.valid() {
			continue
		}
		s.consume(used...)
		out = append(out, c)
	}
	return out
}

// nextOpen is the index of the first open line after i within the shared
// window, or -1.
func (s *parseState) nextOpen(i int) int {
	for k := i + 1; k < len(s.lines) && k <= i+sharedWindow; k++ {
		if s.open(k) {
			return k
		}
	}
	return -1
}
