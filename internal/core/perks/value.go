package perks

import (
	"regexp"
	"sort"
	"strings"
)

// ValueKind is the unit of a reward value.
type ValueKind int

const (
	ValueMoney ValueKind = iota
	ValuePercent
	ValuePoints
	ValueMultiplier
)

func (k ValueKind) String() string {
	switch k {
	case ValueMoney:
		return "money"
	case ValuePercent:
		return "percent"
	case ValuePoints:
		return "points"
	case ValueMultiplier:
		return "multiplier"
	default:
		return "unknown"
	}
}

// Value is an amount found in a line. Start and End are byte offsets of the
// match in the searched text.
type Value struct {
	Kind  ValueKind
	Text  string
	Start int
	End   int
}

var (
	reMoney      = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d{1,2}))?`)
	rePercent    = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)
	rePoints     = regexp.MustCompile(`(?i)\b(?:\d{1,3}(?:,\d{3})+|\d+)(?:\s?[kK])?\s?(?:bonus\s+|membership\s+rewards\s+|thankyou\s+|ultimate\s+rewards\s+)?(?:points?|pts|miles)\b`)
	reMultiplier = regexp.MustCompile(`(?i)\b\d+(?:\.\d)?\s?x\b(?:\s+(?:points?|pts|miles))?`)

	reRewardLead = regexp.MustCompile(`(?i)(?:\b(?:earn|get|receive|save|enjoy|plus)\b|\bup\s+to\b)(?:\s+(?:an?\s+)?(?:extra|additional|total\s+of|up\s+to))?\s*$`)
	reRewardTail = regexp.MustCompile(`(?i)^\s*(?:cash\s?back|back|off|in\s+(?:statement\s+)?credits?|statement\s+credits?|credits?|bonus|rewards?|points?|pts|miles)\b`)
	reThreshold  = regexp.MustCompile(`(?i)(?:\b(?:spend|spending|purchases?\s+of|minimum(?:\s+purchase)?(?:\s+of)?|min\.?|over|at\s+least|more\s+than|orders?\s+of)\b)\s*$`)
	reOrMore     = regexp.MustCompile(`(?i)^\s*(?:or\s+more\b|\+|and\s+up\b)`)

	reCapLead    = regexp.MustCompile(`(?i)\b(?:up\s+to|max(?:imum)?\.?(?:\s+of)?|limit(?:ed)?\s+(?:of|to)|capped\s+at|cap\s+of)\s*$`)
	reRewardVerb = regexp.MustCompile(`(?i)\b(?:earn|get|receive|save|enjoy)\b`)

	reOfferVocab = regexp.MustCompile(`(?i)\b(?:earn|spend|get|back|cash\s?back|points?|pts|miles|off|save|savings|credits?|bonus|receive|rebate)\b`)
)

// FindValues returns the non-overlapping amounts in text, left to right.
func FindValues(text string) []Value {
	var vals []Value
	add := func(kind ValueKind, locs [][]int) {
		for _, m := range locs {
			vals = append(vals, Value{Kind: kind, Text: valueText(kind, text[m[0]:m[1]]), Start: m[0], End: m[1]})
		}
	}
	add(ValueMoney, reMoney.FindAllStringIndex(text, -1))
	add(ValuePercent, rePercent.FindAllStringIndex(text, -1))
	add(ValuePoints, rePoints.FindAllStringIndex(text, -1))
	add(ValueMultiplier, reMultiplier.FindAllStringIndex(text, -1))
	if len(vals) < 2 {
		return vals
	}
	sort.SliceStable(vals, func(i, j int) bool {
		if vals[i].Start != vals[j].Start {
			return vals[i].Start < vals[j].Start
		}
		return vals[i].End > vals[j].End
	})
	out := vals[:0]
	lastEnd := -1
	for _, v := range vals {
		if v.Start < lastEnd {
			continue
		}
		out = append(out, v)
		lastEnd = v.End
	}
	return out
}

func valueText(kind ValueKind, s string) string {
	s = strings.Join(strings.Fields(s), " ")
	switch kind {
	case ValueMoney:
		s = strings.Replace(s, "$ ", "$", 1)
		s = strings.TrimSuffix(s, ".00")
	case ValuePercent:
		s = strings.Replace(s, " %", "%", 1)
	}
	return s
}

// HasValue reports whether text carries any amount.
func HasValue(text string) bool {
	return reMoney.MatchString(text) || rePercent.MatchString(text) ||
		rePoints.MatchString(text) || reMultiplier.MatchString(text)
}

// isThreshold reports whether v is a spend condition rather than the reward,
// as in "Spend $80 or more".
func isThreshold(text string, v Value) bool {
	if v.Kind != ValueMoney {
		return false
	}
	return reThreshold.MatchString(text[:v.Start]) || reOrMore.MatchString(text[v.End:])
}

// RewardValues returns the amounts in text that are rewards, dropping spend
// thresholds.
func RewardValues(text string) []Value {
	vals := FindValues(text)
	out := vals[:0]
	for _, v := range vals {
		if !isThreshold(text, v) {
			out = append(out, v)
		}
	}
	return out
}

// RewardValue picks the reward amount of an offer description: a value led by
// earn/get/save first, then one followed by back/off/credit or counted in
// points, then the last amount that is not a spend threshold.
func RewardValue(text string) (Value, bool) {
	vals := FindValues(text)
	if len(vals) == 0 {
		return Value{}, false
	}
	for _, v := range vals {
		if reRewardLead.MatchString(text[:v.Start]) && !isThreshold(text, v) {
			return v, true
		}
	}
	for _, v := range vals {
		if isThreshold(text, v) {
			continue
		}
		if v.Kind == ValuePoints || v.Kind == ValueMultiplier || reRewardTail.MatchString(text[v.End:]) {
			return v, true
		}
	}
	for i := len(vals) - 1; i >= 0; i-- {
		if !isThreshold(text, vals[i]) {
			return vals[i], true
		}
	}
	return Value{}, false
}

// isCapLine reports whether every reward amount in text only limits an offer
// stated elsewhere, as in "up to $50 total" under "Earn 10% back".
func isCapLine(text string) bool {
	if reRewardVerb.MatchString(text) {
		return false
	}
	vals := RewardValues(text)
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if !reCapLead.MatchString(text[:v.Start]) {
			return false
		}
	}
	return true
}

// isOfferShape reports whether text reads like an offer description.
func isOfferShape(text string) bool {
	return HasValue(text) || reOfferVocab.MatchString(text)
}
