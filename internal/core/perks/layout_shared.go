package perks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// sharedWindow is how many lines below a merchant line its offer line may sit.
const sharedWindow = 2

var (
	reColumnGap   = regexp.MustCompile(`\s{2,}|\s+[|•·]\s+`)
	reToken       = regexp.MustCompile(`\S+`)
	reSegmentLead = regexp.MustCompile(`(?i)\b(?:earn|get|receive|save|enjoy|spend|buy|take|up\s+to)\b`)
	reCapGap      = regexp.MustCompile(`(?i)^\s*(?:cash\s?back|back|off|statement\s+credits?|credits?|points|miles)?[\s,;]*(?:up\s+to|(?:a\s+)?max(?:imum)?\.?(?:\s+of)?)\s*$`)
)

// offerSegment is one offer cut out of a line carrying several.
type offerSegment struct {
	Text       string
	Value      string
	Expiration string
	Pos        float64
}

// parseShared handles lines carrying several merchants whose offers sit on a
// nearby line in the same left-to-right order.
func parseShared(s *parseState) []PerkCandidate {
	var out []PerkCandidate
	for i := range s.lines {
		if !s.open(i) {
			continue
		}
		if role := s.roles[i]; role != RoleMerchant && role != RoleAmbiguous {
			continue
		}
		if HasValue(s.text(i)) {
			continue
		}
		out = append(out, s.sharedGroup(i)...)
	}
	return out
}

func (s *parseState) sharedGroup(mi int) []PerkCandidate {
	names := s.splitMerchants(mi)
	for j := mi + 1; j < len(s.lines) && j <= mi+sharedWindow; j++ {
		if !s.open(j) {
			continue
		}
		segs := offerSegments(s.columns(j))
		if len(segs) < 2 {
			if s.roles[j] == RoleAmbiguous {
				continue
			}
			return nil
		}
		if len(names) < 2 {
			ml := s.columns(mi)
			if len(reToken.FindAllString(ml.Text, -1)) == 2 && sharedLead(segs) {
				// "Best Buy" over "Earn 5% back Earn 3x points"
				return nil
			}
			names = splitWords(ml, len(segs))
		}
		if len(names) < 2 {
			return nil
		}
		return s.pairShared(mi, j, names, segs)
	}
	return nil
}

func (s *parseState) pairShared(mi, oi int, names []merchantSpan, segs []offerSegment) []PerkCandidate {
	mPos := make([]float64, len(names))
	for i, n := range names {
		mPos[i] = n.Pos
	}
	oPos := make([]float64, len(segs))
	for i, sg := range segs {
		oPos[i] = sg.Pos
	}
	labels := make([]int, len(segs))
	for i, sg := range segs {
		labels[i] = namedMerchant(sg.Text, names)
	}
	pairs := associateLabeled(mPos, oPos, labels)
	if len(pairs) == 0 {
		return nil
	}

	used := []int{mi, oi}
	exps, ei := s.trailingExpirations(oi, len(segs))
	if ei >= 0 {
		used = append(used, ei)
	}

	out := make([]PerkCandidate, 0, len(pairs))
	for _, p := range pairs {
		seg := segs[p.Offer]
		exp := seg.Expiration
		if exp == "" && exps != nil {
			exp = exps[p.Offer]
		}
		c := PerkCandidate{
			Merchant:    names[p.Merchant].Name,
			Description: seg.Text,
			Value:       seg.Value,
			Expiration:  exp,
			Lines:       append([]int(nil), used...),
		}
		if c.valid() {
			out = append(out, c)
		}
	}
	s.consume(used...)
	return out
}

// trailingExpirations reads the expiration line following an offer line. A
// single date applies to every offer; one date per offer pairs by order.
func (s *parseState) trailingExpirations(oi, n int) ([]string, int) {
	for k := oi + 1; k < len(s.lines) && k <= oi+sharedWindow; k++ {
		if !s.open(k) {
			continue
		}
		if s.roles[k] != RoleExpiration {
			return nil, -1
		}
		found := FindExpirations(s.text(k))
		out := make([]string, n)
		switch len(found) {
		case 1:
			for i := range out {
				out[i] = found[0].Text
			}
		case n:
			for i := range out {
				out[i] = found[i].Text
			}
		default:
			return nil, -1
		}
		return out, k
	}
	return nil, -1
}

// splitMerchants cuts a merchant line into names using the profile's layout
// patterns, then column gaps in the raw line, then the dictionary.
func (s *parseState) splitMerchants(mi int) []merchantSpan {
	raw := s.lines[mi].Raw
	for _, re := range s.profile.MultiMerchantPatterns {
		m := re.FindStringSubmatchIndex(raw)
		if m == nil {
			continue
		}
		var spans []merchantSpan
		for g := 2; g+1 < len(m); g += 2 {
			if m[g] < 0 {
				continue
			}
			spans = s.appendName(spans, raw, m[g], m[g+1])
		}
		if len(spans) >= 2 {
			return spans
		}
	}

	if gaps := reColumnGap.FindAllStringIndex(raw, -1); len(gaps) > 0 {
		var spans []merchantSpan
		start := 0
		for _, g := range gaps {
			spans = s.appendName(spans, raw, start, g[0])
			start = g[1]
		}
		spans = s.appendName(spans, raw, start, len(raw))
		if len(spans) >= 2 {
			return spans
		}
	}

	if !s.profile.HasDictionary() {
		return nil
	}
	line := s.columns(mi)
	found := s.profile.FindMerchants(line.Text)
	if len(found) >= 2 {
		for i := range found {
			found[i].Pos = line.Pos(found[i].Start)
		}
		return found
	}
	return nil
}

func (s *parseState) appendName(spans []merchantSpan, raw string, start, end int) []merchantSpan {
	part := NormalizeLine(raw[start:end], s.profile)
	if part == "" || HasValue(part) {
		return spans
	}
	name := s.merchantName(part)
	if name == "" {
		return spans
	}
	return append(spans, merchantSpan{Name: name, Start: start, End: end, Pos: float64(start) / float64(len(raw))})
}

// splitWords treats each capitalized word as its own merchant when the word
// count equals the offer count.
func splitWords(line columnLine, n int) []merchantSpan {
	text := line.Text
	locs := reToken.FindAllStringIndex(text, -1)
	if len(locs) != n || n < 2 {
		return nil
	}
	spans := make([]merchantSpan, 0, n)
	for _, loc := range locs {
		w := text[loc[0]:loc[1]]
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return nil
		}
		if _, conn := merchantConnectors[strings.ToLower(w)]; conn {
			return nil
		}
		spans = append(spans, merchantSpan{
			Name:  displayName(w),
			Start: loc[0],
			End:   loc[1],
			Pos:   line.Pos(loc[0]),
		})
	}
	return spans
}

// sharedLead reports whether every segment opens with the same lead word.
func sharedLead(segs []offerSegment) bool {
	first := ""
	for i, sg := range segs {
		loc := reSegmentLead.FindStringIndex(sg.Text)
		if loc == nil || loc[0] != 0 {
			return false
		}
		lead := strings.ToLower(sg.Text[:loc[1]])
		if i == 0 {
			first = lead
		} else if lead != first {
			return false
		}
	}
	return true
}

// namedMerchant is the index of the only merchant whose name appears in text,
// or -1 when none or several do.
func namedMerchant(text string, names []merchantSpan) int {
	found := -1
	for i, n := range names {
		if !mentions(text, n.Name) {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}

// mentions reports whether name occurs in text as a whole word, ignoring case.
func mentions(text, name string) bool {
	text, name = strings.ToLower(text), strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for from := 0; from < len(text); {
		k := strings.Index(text[from:], name)
		if k < 0 {
			return false
		}
		start, end := from+k, from+k+len(name)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// columnLine is a raw line normalized one column at a time and joined with
// single spaces. Pos maps an offset in Text back to the raw line, so merchant
// and offer positions on different lines are measured the same way.
type columnLine struct {
	Text   string
	rawLen int
	cols   []column
}

type column struct {
	norm, normLen int
	raw, rawLen   int
}

func newColumnLine(raw string, p *IssuerProfile) columnLine {
	line := columnLine{rawLen: len(raw)}
	var b strings.Builder
	start := 0
	gaps := append(reColumnGap.FindAllStringIndex(raw, -1), []int{len(raw), len(raw)})
	for _, g := range gaps {
		part := NormalizeLine(raw[start:g[0]], p)
		if part != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			line.cols = append(line.cols, column{norm: b.Len(), normLen: len(part), raw: start, rawLen: g[0] - start})
			b.WriteString(part)
		}
		start = g[1]
	}
	line.Text = b.String()
	return line
}

func (s *parseState) columns(i int) columnLine {
	return newColumnLine(s.lines[i].Raw, s.profile)
}

// Pos is the raw position of Text offset off as a fraction of the raw width.
// Offsets inside a column scale with the column's raw width.
func (l columnLine) Pos(off int) float64 {
	if l.rawLen == 0 || len(l.cols) == 0 {
		return 0
	}
	c := l.cols[0]
	for _, col := range l.cols[1:] {
		if off >= col.norm {
			c = col
		}
	}
	rel := off - c.norm
	if rel < 0 {
		rel = 0
	}
	raw := c.raw + c.rawLen
	if rel < c.normLen {
		raw = c.raw + rel*c.rawLen/c.normLen
	}
	return float64(raw) / float64(l.rawLen)
}

// offerSegments cuts a line into one segment per reward amount. A segment
// starts at the first lead word ("earn", "spend") after the previous amount,
// or at the amount itself. Caps such as "up to $50" stay with the amount
// before them.
func offerSegments(line columnLine) []offerSegment {
	text := line.Text
	vals := RewardValues(text)
	if len(vals) == 0 {
		return nil
	}
	anchors := []Value{vals[0]}
	for _, v := range vals[1:] {
		prev := &anchors[len(anchors)-1]
		if reCapGap.MatchString(text[prev.End:v.Start]) {
			prev.End = v.End
			continue
		}
		anchors = append(anchors, v)
	}

	bounds := make([]int, len(anchors))
	prevEnd := 0
	for i, v := range anchors {
		bounds[i] = v.Start
		if loc := reSegmentLead.FindStringIndex(text[prevEnd:v.Start]); loc != nil {
			bounds[i] = prevEnd + loc[0]
		}
		prevEnd = v.End
	}

	segs := make([]offerSegment, 0, len(anchors))
	for i, v := range anchors {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		seg := strings.Trim(text[bounds[i]:end], " ,;|•·")
		before, exp, ok := SplitExpiration(seg)
		if ok && before != "" {
			seg = before
		}
		segs = append(segs, offerSegment{
			Text:       seg,
			Value:      v.Text,
			Expiration: exp,
			Pos:        line.Pos(bounds[i]),
		})
	}
	return segs
}
