package perks

import (
	"github.com/joseph-ayodele/perks-tracker/constants"
)

// TextLine is one non-empty line of recognized text.
type TextLine struct {
	Index int    // position among the non-empty lines
	Raw   string // trimmed source line, column gaps kept
	Text  string // normalized line
}

// LineRole is the shared classifier's verdict for a line.
type LineRole int

const (
	RoleNoise LineRole = iota
	RoleMerchant
	RoleOffer
	RoleExpiration
	RoleAmbiguous
)

func (r LineRole) String() string {
	switch r {
	case RoleNoise:
		return "noise"
	case RoleMerchant:
		return "merchant"
	case RoleOffer:
		return "offer"
	case RoleExpiration:
		return "expiration"
	case RoleAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// PerkCandidate is an extracted perk awaiting user review.
// Candidates are values; reviewers edit copies.
type PerkCandidate struct {
	Merchant    string              `json:"merchant"`
	Description string              `json:"description"`
	Value       string              `json:"value,omitempty"`
	Expiration  string              `json:"expiration,omitempty"`
	Confidence  float64             `json:"confidence"`
	Issuer      constants.IssuerKey `json:"issuer"`
	Lines       []int               `json:"lines,omitempty"` // source line indexes
}

func (c PerkCandidate) valid() bool {
	return c.Merchant != "" || c.Value != ""
}
