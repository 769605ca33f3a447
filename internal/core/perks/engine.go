package perks

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/perks-tracker/constants"
)

// Engine extracts perk candidates from recognized offer-screen text.
// It holds only the immutable registry and is safe for concurrent use.
type Engine struct {
	reg    *Registry
	logger *slog.Logger
}

// NewEngine creates an engine over reg. A nil logger uses slog.Default().
func NewEngine(reg *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{reg: reg, logger: logger}
}

// Extract returns the perk candidates found in text, issuer-specific results
// first. An empty or unusable input yields an empty, non-nil slice. A hint
// that names a registered issuer skips classification.
func (e *Engine) Extract(text string, hint constants.IssuerKey) []PerkCandidate {
	out := []PerkCandidate{}
	if strings.TrimSpace(text) == "" {
		return out
	}
	p := e.reg.Resolve(text, hint)
	lines := SplitLines(text, p)
	if len(lines) == 0 {
		return out
	}

	st := newParseState(lines, p)
	found := parse(st)
	issuerCount := len(found)
	if p.Key != constants.IssuerGeneric {
		found = append(found, parseGeneric(st.derive(e.reg.Generic()))...)
	}

	for _, c := range found {
		if !c.valid() {
			continue
		}
		c.Issuer = p.Key
		c.Confidence = Score(c)
		out = append(out, c)
	}
	out = Deduplicate(out)

	e.logger.Debug("perks extracted",
		"issuer", p.Key,
		"hint", hint,
		"lines", len(lines),
		"issuer_candidates", issuerCount,
		"fallback_candidates", len(found)-issuerCount,
		"candidates", len(out))
	return out
}

// SupportedIssuers lists the issuers with a dedicated profile, in dispatch
// order. The generic fallback is not included.
func (e *Engine) SupportedIssuers() []constants.IssuerKey {
	keys := e.reg.Keys()
	out := make([]constants.IssuerKey, 0, len(keys))
	for _, k := range keys {
		if k != constants.IssuerGeneric {
			out = append(out, k)
		}
	}
	return out
}

// Classify returns the issuer identified by keywords in text.
func (e *Engine) Classify(text string) constants.IssuerKey {
	return e.reg.Classify(text)
}

// DisplayName returns the human-readable issuer name.
func (e *Engine) DisplayName(key constants.IssuerKey) string {
	if p, ok := e.reg.Lookup(key); ok {
		return p.DisplayName
	}
	return string(key)
}

// LineReport is one line of an Inspect result.
type LineReport struct {
	Index int      `json:"index"`
	Raw   string   `json:"raw"`
	Text  string   `json:"text"`
	Role  LineRole `json:"-"`
	Kind  string   `json:"role"`
}

// Inspect shows how text is split and classified, for debugging profiles.
func (e *Engine) Inspect(text string, hint constants.IssuerKey) (constants.IssuerKey, []LineReport) {
	p := e.reg.Resolve(text, hint)
	lines := SplitLines(text, p)
	roles := ClassifyLines(lines, p)
	out := make([]LineReport, len(lines))
	for i, l := range lines {
		out[i] = LineReport{Index: l.Index, Raw: l.Raw, Text: l.Text, Role: roles[i], Kind: roles[i].String()}
	}
	return p.Key, out
}
