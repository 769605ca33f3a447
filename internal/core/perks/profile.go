package perks

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/perks-tracker/constants"
)

// Layout selects the structural parser used for an issuer.
type Layout int

const (
	// LayoutGeneric has no merchant dictionary and relies on shape heuristics.
	LayoutGeneric Layout = iota
	// LayoutBlock renders one merchant per block with the offer and expiration below it.
	LayoutBlock
	// LayoutSharedLine renders several merchants on one line and their offers on a nearby line.
	LayoutSharedLine
)

func (l Layout) String() string {
	switch l {
	case LayoutBlock:
		return "block"
	case LayoutSharedLine:
		return "shared_line"
	default:
		return "generic"
	}
}

// Merchant is a dictionary entry: the display name plus spellings seen on screen.
type Merchant struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

// Substitution rewrites a known recognition error.
type Substitution struct {
	Pattern *regexp.Regexp
	Replace string
}

// IssuerProfile is the per-issuer parsing configuration.
// Profiles are compiled by NewRegistry and must not be modified afterwards.
type IssuerProfile struct {
	Key         constants.IssuerKey
	DisplayName string
	Layout      Layout

	Keywords      []string
	Merchants     []Merchant
	Substitutions []Substitution
	Noise         []string

	// MultiMerchantPatterns are matched against the raw line; every non-empty
	// capture group is one merchant name, left to right.
	MultiMerchantPatterns []*regexp.Regexp

	keywordRes []*regexp.Regexp
	noise      map[string]struct{}
	exact      map[string]string
	entries    []dictEntry
}

type dictEntry struct {
	key  string // folded spelling
	name string // canonical display name
	re   *regexp.Regexp
}

// Override extends a built-in profile from configuration.
type Override struct {
	Merchants []Merchant `yaml:"merchants"`
	Noise     []string   `yaml:"noise"`
	Keywords  []string   `yaml:"keywords"`
}

// WithOverride returns a copy of p with the override's entries appended.
func (p IssuerProfile) WithOverride(o Override) IssuerProfile {
	p.Merchants = append(append([]Merchant(nil), p.Merchants...), o.Merchants...)
	p.Noise = append(append([]string(nil), p.Noise...), o.Noise...)
	p.Keywords = append(append([]string(nil), p.Keywords...), o.Keywords...)
	return p
}

func (p *IssuerProfile) compile() error {
	if p.Key == "" {
		return fmt.Errorf("issuer profile without key")
	}
	p.keywordRes = make([]*regexp.Regexp, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		p.keywordRes = append(p.keywordRes, boundedPhrase(k))
	}

	p.noise = make(map[string]struct{}, len(p.Noise))
	for _, n := range p.Noise {
		if key := noiseKey(n); key != "" {
			p.noise[key] = struct{}{}
		}
	}

	p.exact = make(map[string]string)
	p.entries = p.entries[:0]
	for _, m := range p.Merchants {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return fmt.Errorf("issuer %s: merchant without name", p.Key)
		}
		for _, spelling := range append([]string{name}, m.Variants...) {
			key := foldKey(spelling)
			if key == "" {
				continue
			}
			if _, dup := p.exact[key]; dup {
				continue
			}
			p.exact[key] = name
			p.entries = append(p.entries, dictEntry{key: key, name: name, re: boundedPhrase(spelling)})
		}
	}
	return nil
}

// boundedPhrase matches phrase case-insensitively between non-alphanumerics.
// The phrase itself is capture group 1.
func boundedPhrase(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + regexp.QuoteMeta(phrase) + `)(?:$|[^\p{L}\p{N}])`)
}

// HasDictionary reports whether the profile carries known merchants.
func (p *IssuerProfile) HasDictionary() bool {
	return len(p.entries) > 0
}

// IsNoisePhrase reports whether the whole line is issuer navigation vocabulary.
func (p *IssuerProfile) IsNoisePhrase(text string) bool {
	_, ok := p.noise[noiseKey(text)]
	return ok
}

// IsKnownSpelling reports whether s is exactly a dictionary spelling. p may be nil.
func (p *IssuerProfile) IsKnownSpelling(s string) bool {
	if p == nil {
		return false
	}
	_, ok := p.exact[foldKey(s)]
	return ok
}

// MatchMerchant resolves a line or token to a canonical dictionary name,
// exact spellings first, then the bounded fuzzy check.
func (p *IssuerProfile) MatchMerchant(s string) (string, bool) {
	key := foldKey(s)
	if key == "" || len(p.entries) == 0 {
		return "", false
	}
	if name, ok := p.exact[key]; ok {
		return name, true
	}
	if runeLen(key) < fuzzyMinRunes {
		return "", false
	}
	best, bestScore := "", 0.0
	for _, e := range p.entries {
		if !withinLengthDiff(key, e.key) {
			continue
		}
		if score := similarityFolded(key, e.key); score >= FuzzyThreshold && score > bestScore {
			best, bestScore = e.name, score
		}
	}
	return best, best != ""
}

type merchantSpan struct {
	Name  string
	Start int
	End   int
	Pos   float64
}

// FindMerchants scans text for every dictionary spelling and returns
// non-overlapping spans ordered left to right, longest spelling first at a tie.
func (p *IssuerProfile) FindMerchants(text string) []merchantSpan {
	var spans []merchantSpan
	for _, e := range p.entries {
		for _, m := range e.re.FindAllStringSubmatchIndex(text, -1) {
			spans = append(spans, merchantSpan{Name: e.name, Start: m[2], End: m[3]})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End-spans[i].Start > spans[j].End-spans[j].Start
	})
	out := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if s.Start < lastEnd {
			continue
		}
		out = append(out, s)
		lastEnd = s.End
	}
	return out
}

func noiseKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, " .:;,!?>›»<|•·-")
	return strings.Join(strings.Fields(s), " ")
}

// Registry holds the compiled issuer profiles in registration order.
type Registry struct {
	order   []*IssuerProfile
	byKey   map[constants.IssuerKey]*IssuerProfile
	generic *IssuerProfile
}

// NewRegistry compiles profiles into an immutable registry. A generic profile
// is added when none is supplied.
func NewRegistry(profiles ...IssuerProfile) (*Registry, error) {
	r := &Registry{byKey: make(map[constants.IssuerKey]*IssuerProfile, len(profiles)+1)}
	for i := range profiles {
		p := profiles[i]
		p.entries = nil
		if err := p.compile(); err != nil {
			return nil, err
		}
		if _, dup := r.byKey[p.Key]; dup {
			return nil, fmt.Errorf("issuer %s registered twice", p.Key)
		}
		r.order = append(r.order, &p)
		r.byKey[p.Key] = &p
		if p.Key == constants.IssuerGeneric {
			r.generic = &p
		}
	}
	if r.generic == nil {
		g := genericProfile()
		if err := g.compile(); err != nil {
			return nil, err
		}
		r.order = append(r.order, &g)
		r.byKey[g.Key] = &g
		r.generic = &g
	}
	return r, nil
}

// DefaultRegistry builds the registry of built-in issuers with optional overrides.
func DefaultRegistry(overrides map[constants.IssuerKey]Override) (*Registry, error) {
	profiles := DefaultProfiles()
	for i := range profiles {
		if o, ok := overrides[profiles[i].Key]; ok {
			profiles[i] = profiles[i].WithOverride(o)
		}
	}
	return NewRegistry(profiles...)
}

// Lookup returns the profile registered under key.
func (r *Registry) Lookup(key constants.IssuerKey) (*IssuerProfile, bool) {
	p, ok := r.byKey[key]
	return p, ok
}

// Generic returns the fallback profile.
func (r *Registry) Generic() *IssuerProfile {
	return r.generic
}

// Keys lists registered issuers in registration order.
func (r *Registry) Keys() []constants.IssuerKey {
	keys := make([]constants.IssuerKey, 0, len(r.order))
	for _, p := range r.order {
		keys = append(keys, p.Key)
	}
	return keys
}
