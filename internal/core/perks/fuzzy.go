package perks

import (
	"strings"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
)

const (
	// FuzzyThreshold is the minimum positional match ratio for a dictionary hit.
	FuzzyThreshold = 0.80

	fuzzyMaxLenDiff = 2
	fuzzyMinRunes   = 4
)

// foldKey lowercases, strips accents and collapses whitespace.
func foldKey(s string) string {
	s = unidecode.Unidecode(strings.TrimSpace(s))
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func withinLengthDiff(a, b string) bool {
	d := runeLen(a) - runeLen(b)
	if d < 0 {
		d = -d
	}
	return d <= fuzzyMaxLenDiff
}

// Similarity is the positional character-match ratio of a and b after folding.
// Characters are compared position by position from the left and from the
// right; the better alignment counts, divided by the longer length. A single
// substituted character in a nine-letter name scores 8/9.
func Similarity(a, b string) float64 {
	return similarityFolded(foldKey(a), foldKey(b))
}

func similarityFolded(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	longest, shortest := max(len(ra), len(rb)), min(len(ra), len(rb))
	var left, right int
	for i := 0; i < shortest; i++ {
		if ra[i] == rb[i] {
			left++
		}
		if ra[len(ra)-1-i] == rb[len(rb)-1-i] {
			right++
		}
	}
	return float64(max(left, right)) / float64(longest)
}
