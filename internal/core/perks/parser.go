package perks

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// parseState is the working set of one parse: the lines, their roles under
// the active profile and which lines a parser has already turned into a
// candidate.
type parseState struct {
	profile  *IssuerProfile
	lines    []TextLine
	roles    []LineRole
	consumed []bool
}

func newParseState(lines []TextLine, p *IssuerProfile) *parseState {
	return &parseState{
		profile:  p,
		lines:    lines,
		roles:    ClassifyLines(lines, p),
		consumed: make([]bool, len(lines)),
	}
}

// derive hands the unconsumed lines to another profile. Lines the first
// profile called noise stay noise.
func (s *parseState) derive(p *IssuerProfile) *parseState {
	d := &parseState{
		profile:  p,
		lines:    s.lines,
		roles:    make([]LineRole, len(s.lines)),
		consumed: append([]bool(nil), s.consumed...),
	}
	for i, l := range s.lines {
		if s.roles[i] == RoleNoise {
			d.roles[i] = RoleNoise
			continue
		}
		d.roles[i] = ClassifyLine(l, p)
	}
	return d
}

// open reports whether line i exists, is not noise and is still unconsumed.
func (s *parseState) open(i int) bool {
	return i >= 0 && i < len(s.lines) && !s.consumed[i] && s.roles[i] != RoleNoise
}

func (s *parseState) consume(idx ...int) {
	for _, i := range idx {
		s.consumed[i] = true
	}
}

func (s *parseState) text(i int) string {
	return s.lines[i].Text
}

// merchantName resolves a merchant token to its display form, correcting it
// against the profile's dictionary when possible.
func (s *parseState) merchantName(token string) string {
	if name, ok := s.profile.MatchMerchant(token); ok {
		return name
	}
	return displayName(token)
}

// parse runs the structural parser for the profile's layout.
func parse(s *parseState) []PerkCandidate {
	switch s.profile.Layout {
	case LayoutBlock:
		return parseBlocks(s)
	case LayoutSharedLine:
		out := parseShared(s)
		return append(out, parseBlocks(s)...)
	case LayoutGeneric:
		return parseGeneric(s)
	default:
		return nil
	}
}

// displayName trims decoration from a merchant token and title-cases names
// rendered in all capitals.
func displayName(token string) string {
	name := strings.Trim(strings.TrimSpace(token), " ,;:-|•·>›»")
	if name == "" {
		return ""
	}
	letters, upper := 0, 0
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			letters++
		}
		if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	if letters > 3 && upper == letters {
		return cases.Title(language.English).String(strings.ToLower(name))
	}
	return name
}

// newCandidate builds a candidate from a description, filling the value from
// the description text.
func newCandidate(merchant, description, expiration string, lines []int) PerkCandidate {
	c := PerkCandidate{
		Merchant:    merchant,
		Description: strings.TrimSpace(description),
		Expiration:  expiration,
		Lines:       lines,
	}
	if v, ok := RewardValue(c.Description); ok {
		c.Value = v.Text
	}
	return c
}
