package perks

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Expiration is a date or relative deadline found in a line. Start is where
// the expiration phrase begins, keyword included; End is past the date.
type Expiration struct {
	Text  string
	Start int
	End   int
}

var (
	reExpKeyword  = regexp.MustCompile(`(?i)\b(?:(?:expires?|expiring|ends|offer\s+ends|valid\s+(?:through|thru|until)|use\s+by|redeem\s+by|enroll\s+by|good\s+through)\b|exp\b\.?)(?:\s+on)?\s*:?`)
	reExpOnly     = regexp.MustCompile(`(?i)^(?:expires?|expiring|exp\.?|ends|offer\s+ends|valid\s+(?:through|thru|until))(?:\s+on)?\s*:?$`)
	reDateNumeric = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})(?:[/.-](\d{4}|\d{2}))?\b`)
	reDateISO     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	reDateMonth   = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)
	reDaysLeft    = regexp.MustCompile(`(?i)\b\d{1,3}\s+days?\s+(?:left|remaining)\b`)
	reRelative    = regexp.MustCompile(`(?i)^\s*(?:today|tomorrow|in\s+\d{1,3}\s+days?|soon)\b`)
)

type dateMatch struct {
	start, end int
	hasYear    bool
}

func findDates(text string) []dateMatch {
	var out []dateMatch
	for _, m := range reDateISO.FindAllStringIndex(text, -1) {
		out = append(out, dateMatch{start: m[0], end: m[1], hasYear: true})
	}
	for _, m := range reDateMonth.FindAllStringIndex(text, -1) {
		out = append(out, dateMatch{start: m[0], end: m[1], hasYear: reYearSuffix.MatchString(text[m[0]:m[1]])})
	}
	for _, m := range reDateNumeric.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(out, m[0], m[1]) || !plausibleNumericDate(text, m) {
			continue
		}
		out = append(out, dateMatch{start: m[0], end: m[1], hasYear: m[6] >= 0})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

var reYearSuffix = regexp.MustCompile(`\d{4}$`)

func plausibleNumericDate(text string, m []int) bool {
	if m[0] > 0 && (text[m[0]-1] == '$' || text[m[0]-1] == '.') {
		return false
	}
	if m[1] < len(text) && (text[m[1]] == '%' || text[m[1]] == 'x' || text[m[1]] == 'X') {
		return false
	}
	month, _ := strconv.Atoi(text[m[2]:m[3]])
	day, _ := strconv.Atoi(text[m[4]:m[5]])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func overlapsAny(ds []dateMatch, start, end int) bool {
	for _, d := range ds {
		if start < d.end && d.start < end {
			return true
		}
	}
	return false
}

// FindExpiration locates the expiration in text: a keyword followed by a date
// or relative deadline, an "N days left" counter, a line that is only a date,
// or a date carrying a year.
func FindExpiration(text string) (Expiration, bool) {
	exps := FindExpirations(text)
	if len(exps) == 0 {
		return Expiration{}, false
	}
	return exps[0], true
}

// FindExpirations returns every expiration in text, left to right.
func FindExpirations(text string) []Expiration {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	dates := findDates(text)
	used := make([]bool, len(dates))
	var out []Expiration

	for _, kw := range reExpKeyword.FindAllStringIndex(text, -1) {
		rest := text[kw[1]:]
		if rel := reRelative.FindStringIndex(rest); rel != nil {
			out = append(out, Expiration{
				Text:  strings.TrimSpace(rest[rel[0]:rel[1]]),
				Start: kw[0],
				End:   kw[1] + rel[1],
			})
			continue
		}
		for i, d := range dates {
			if used[i] || d.start < kw[1] || d.start-kw[1] > 4 {
				continue
			}
			used[i] = true
			out = append(out, Expiration{Text: text[d.start:d.end], Start: kw[0], End: d.end})
			break
		}
	}
	for _, m := range reDaysLeft.FindAllStringIndex(text, -1) {
		if !overlapsExp(out, m[0], m[1]) {
			out = append(out, Expiration{Text: text[m[0]:m[1]], Start: m[0], End: m[1]})
		}
	}
	dateOnly := len(dates) > 0 && isDateOnly(text, dates)
	for i, d := range dates {
		if used[i] || overlapsExp(out, d.start, d.end) {
			continue
		}
		if dateOnly || d.hasYear {
			out = append(out, Expiration{Text: text[d.start:d.end], Start: d.start, End: d.end})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func overlapsExp(es []Expiration, start, end int) bool {
	for _, e := range es {
		if start < e.End && e.Start < end {
			return true
		}
	}
	return false
}

// isDateOnly reports whether text holds nothing but dates and separators.
func isDateOnly(text string, dates []dateMatch) bool {
	rest := []byte(text)
	for _, d := range dates {
		for i := d.start; i < d.end; i++ {
			rest[i] = ' '
		}
	}
	return strings.Trim(string(rest), " ,;-|•·") == ""
}

// IsExpirationLine reports whether text carries an expiration.
func IsExpirationLine(text string) bool {
	_, ok := FindExpiration(text)
	return ok
}

// SplitExpiration separates the offer text that precedes the first expiration
// from the expiration itself.
func SplitExpiration(text string) (before, exp string, ok bool) {
	text = strings.TrimSpace(text)
	e, found := FindExpiration(text)
	if !found {
		return text, "", false
	}
	before = strings.TrimRight(strings.TrimSpace(text[:e.Start]), " ,;:-|•·(")
	return before, e.Text, true
}
