package perks

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var punctFolder = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-", "\u00a0", " ", "＄", "$", "•", " • ",
)

var (
	reDollarSpace   = regexp.MustCompile(`\$\s+(\d)`)
	rePercentSpace  = regexp.MustCompile(`(\d)\s+%`)
	rePercentGlued  = regexp.MustCompile(`(\d%)(\p{L})`)
	reAmountGlued   = regexp.MustCompile(`(\$\d+(?:\.\d{2})?)(\p{L})`)
	reWordAmount    = regexp.MustCompile(`(\p{L})(\$\d)`)
	reAmountLookish = regexp.MustCompile(`\$[\dOoIl]+(?:[.,][\dOoIl]+)*`)
	rePctLookish    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])([\dOoIl]+(?:\.[\dOoIl]+)?)%`)
	reBareEquals    = regexp.MustCompile(`(?:^|\s)=+(?:\s|$)`)
	reLeadBullet    = regexp.MustCompile(`^[•·*>»›|=~-]+\s*`)
	reTrailArtifact = regexp.MustCompile(`\s*(?:[>»›|•·=~]+|\.{3,}|…)$`)
	reTruncCurrency = regexp.MustCompile(`\s+[$€£]$`)
	reWhitespace    = regexp.MustCompile(`\s+`)
	reGluedDigit    = regexp.MustCompile(`\b(\p{Lu}[\p{L}&']{2,})(\d{1,2})\b`)
)

// sharedSubstitutions are recognition errors seen across every issuer.
var sharedSubstitutions = []Substitution{
	{Pattern: regexp.MustCompile(`(?i)\bcash\s?b\s?ack\b`), Replace: "cash back"},
	{Pattern: regexp.MustCompile(`\beam\b`), Replace: "earn"},
	{Pattern: regexp.MustCompile(`\bEam\b`), Replace: "Earn"},
	{Pattern: regexp.MustCompile(`(?i)\bexp[i1l]\s?res\b`), Replace: "Expires"},
	{Pattern: regexp.MustCompile(`(?i)\bpo[i1l]nts\b`), Replace: "points"},
	{Pattern: regexp.MustCompile(`(?i)\bstatement\s+cred[i1l]t\b`), Replace: "statement credit"},
	{Pattern: regexp.MustCompile(`(?i)\bsp[e3]nd\b`), Replace: "Spend"},
}

// offerLeadWords are never treated as a brand glued to a stray digit.
var offerLeadWords = map[string]struct{}{
	"earn": {}, "get": {}, "spend": {}, "save": {}, "up": {}, "over": {}, "buy": {}, "take": {},
}

// NormalizeLine cleans recognition artifacts from one line. The profile's
// substitutions run after the shared ones; p may be nil.
func NormalizeLine(s string, p *IssuerProfile) string {
	if s == "" {
		return s
	}
	s = punctFolder.Replace(s)
	for _, sub := range sharedSubstitutions {
		s = sub.Pattern.ReplaceAllString(s, sub.Replace)
	}
	if p != nil {
		for _, sub := range p.Substitutions {
			s = sub.Pattern.ReplaceAllString(s, sub.Replace)
		}
	}

	s = repairDigitLookalikes(s)
	s = reDollarSpace.ReplaceAllString(s, "$$$1")
	s = rePercentSpace.ReplaceAllString(s, "$1%")

	// run-together tokens
	s = rePercentGlued.ReplaceAllString(s, "$1 $2")
	s = reAmountGlued.ReplaceAllString(s, "$1 $2")
	s = reWordAmount.ReplaceAllString(s, "$1 $2")

	// stray symbols
	s = reBareEquals.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = reLeadBullet.ReplaceAllString(s, "")
	for {
		trimmed := reTruncCurrency.ReplaceAllString(reTrailArtifact.ReplaceAllString(s, ""), "")
		if trimmed == s {
			break
		}
		s = trimmed
	}

	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
	return stripGluedDigits(s, p)
}

// repairDigitLookalikes fixes O/o/I/l read inside amounts and percentages,
// e.g. "$1O" -> "$10", "l5%" -> "15%". Tokens without a real digit, or that
// run straight into a word ("$10Off"), are left alone.
func repairDigitLookalikes(s string) string {
	var b strings.Builder
	last := 0
	fix := func(start, end int) {
		tok := s[start:end]
		if !strings.ContainsAny(tok, "0123456789") {
			return
		}
		if end < len(s) && isLetter(s[end]) {
			return
		}
		b.WriteString(s[last:start])
		b.WriteString(digitReplacer.Replace(tok))
		last = end
	}
	type span struct{ start, end int }
	var spans []span
	for _, m := range reAmountLookish.FindAllStringIndex(s, -1) {
		spans = append(spans, span{m[0], m[1]})
	}
	for _, m := range rePctLookish.FindAllStringSubmatchIndex(s, -1) {
		spans = append(spans, span{m[2], m[3]})
	}
	if len(spans) == 0 {
		return s
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for _, sp := range spans {
		if sp.start < last {
			continue
		}
		fix(sp.start, sp.end)
	}
	b.WriteString(s[last:])
	return b.String()
}

var digitReplacer = strings.NewReplacer("O", "0", "o", "0", "I", "1", "l", "1")

func isLetter(c byte) bool {
	return c < 0x80 && unicode.IsLetter(rune(c))
}

// stripGluedDigits removes a small integer glued to a capitalized word, a
// common artifact of badge counters rendered next to brand names ("Dyson3").
// Spellings in the profile's dictionary ("Forever21") are kept.
func stripGluedDigits(s string, p *IssuerProfile) string {
	matches := reGluedDigit.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		word := s[m[2]:m[3]]
		if _, lead := offerLeadWords[strings.ToLower(word)]; lead {
			continue
		}
		if m[1] < len(s) && strings.ContainsRune("%xX$.,", rune(s[m[1]])) {
			continue
		}
		if p.IsKnownSpelling(s[m[2]:m[1]]) {
			continue
		}
		b.WriteString(s[last:m[3]])
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
