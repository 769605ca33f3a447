package perks

import (
	"strings"
)

const (
	// blockWindow is how many lines past the merchant the offer anchor may sit.
	blockWindow         = 5
	maxDescriptionLines = 3
)

// parseBlocks handles the one-merchant-per-block layout: a merchant line, the
// offer text under it and an optional expiration line closing the block.
func parseBlocks(s *parseState) []PerkCandidate {
	var out []PerkCandidate
	for i := range s.lines {
		if !s.open(i) || s.roles[i] != RoleMerchant {
			continue
		}
		if c, ok := s.block(i); ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *parseState) block(mi int) (PerkCandidate, bool) {
	var (
		desc   []string
		exp    string
		used   = []int{mi}
		anchor = -1
	)

	for j := mi + 1; anchor < 0 && j < len(s.lines) && j <= mi+blockWindow; j++ {
		if !s.open(j) {
			continue
		}
		text := s.text(j)
		switch s.roles[j] {
		case RoleMerchant:
			return PerkCandidate{}, false
		case RoleExpiration:
			before, e, _ := SplitExpiration(text)
			if exp == "" {
				exp = e
			}
			used = append(used, j)
			if before != "" && isOfferShape(before) {
				desc = append(desc, before)
				anchor = j
			}
		case RoleOffer, RoleAmbiguous:
			if isOfferShape(text) {
				desc = append(desc, text)
				used = append(used, j)
				anchor = j
			}
		}
	}
	if anchor < 0 {
		return PerkCandidate{}, false
	}

	// An anchor split off an expiration line already closed the block.
	closed := s.roles[anchor] == RoleExpiration
	hasValue := len(RewardValues(desc[0])) > 0
	for j := anchor + 1; !closed && j < len(s.lines) && j <= anchor+blockWindow; j++ {
		if !s.open(j) {
			continue
		}
		text := s.text(j)
		role := s.roles[j]
		if role == RoleMerchant {
			break
		}
		if role == RoleExpiration {
			before, e, _ := SplitExpiration(text)
			if before != "" && len(desc) < maxDescriptionLines {
				desc = append(desc, before)
			}
			if exp == "" {
				exp = e
			}
			used = append(used, j)
			break
		}
		if len(desc) >= maxDescriptionLines {
			break
		}
		lineValue := len(RewardValues(text)) > 0
		if lineValue && hasValue && !isCapLine(text) {
			// a second reward starts another offer
			break
		}
		desc = append(desc, text)
		used = append(used, j)
		hasValue = hasValue || lineValue
	}

	c := newCandidate(s.merchantName(s.text(mi)), strings.Join(desc, " "), exp, used)
	if !c.valid() {
		return PerkCandidate{}, false
	}
	s.consume(used...)
	return c, true
}
