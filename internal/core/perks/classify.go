package perks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	merchantMaxWords = 5
	merchantMaxLen   = 40
)

var (
	reClock      = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}(?::\d{2})?\s*(?:[ap]\.?m\.?)?(?:\s+(?:lte|5g|5ge|4g|3g|wi-?fi|\d{1,3}%|[^\p{L}\p{N}\s]+))*$`)
	reStatusBar  = regexp.MustCompile(`(?i)^(?:lte|5g|5ge|4g|3g|wi-?fi)(?:\s+\d{1,3}%)?$`)
	reBareSymbol = regexp.MustCompile(`^[^\p{L}\p{N}]+$`)
	reTinyWord   = regexp.MustCompile(`^\p{L}{1,2}$`)
	reCounter    = regexp.MustCompile(`(?i)^\(?\d+\)?(?:\s+(?:of|/)\s+\d+|\s+(?:offers?|deals|results|items|new))?$`)
	reSentence   = regexp.MustCompile(`[.!?:]$`)
)

// navigationPhrases are button captions and tabs common to every banking app.
var navigationPhrases = map[string]struct{}{
	"home": {}, "offers": {}, "all offers": {}, "my offers": {}, "available offers": {},
	"menu": {}, "search": {}, "back": {}, "close": {}, "cancel": {}, "done": {}, "ok": {},
	"see all": {}, "view all": {}, "view details": {}, "details": {}, "show more": {}, "load more": {},
	"add to card": {}, "added to card": {}, "add offer": {}, "added": {}, "add": {}, "saved": {},
	"terms apply": {}, "terms": {}, "terms and conditions": {}, "learn more": {}, "shop now": {},
	"sign in": {}, "log in": {}, "log out": {}, "account": {}, "accounts": {}, "pay": {},
	"pay bill": {}, "transfer": {}, "more": {}, "rewards": {}, "benefits": {}, "activity": {},
	"profile": {}, "settings": {}, "help": {}, "deals": {}, "new": {}, "featured": {},
	"recommended": {}, "recommended for you": {}, "for you": {}, "expiring soon": {},
	"activate": {}, "enroll": {}, "enrolled": {}, "sort": {}, "filter": {}, "sort by": {},
	"categories": {}, "all": {}, "online": {}, "in-store": {}, "in store": {}, "online only": {},
	"in-store only": {}, "explore": {}, "inbox": {}, "notifications": {},
}

// uiWords disqualify a short line from being a merchant name.
var uiWords = map[string]struct{}{
	"offers": {}, "offer": {}, "deals": {}, "rewards": {}, "card": {}, "account": {},
	"featured": {}, "recommended": {}, "expiring": {}, "online": {}, "in-store": {},
	"only": {}, "new": {}, "terms": {}, "details": {}, "added": {}, "view": {}, "menu": {},
}

// merchantConnectors may appear lower-case inside a brand name.
var merchantConnectors = map[string]struct{}{
	"&": {}, "and": {}, "of": {}, "the": {}, "by": {}, "for": {}, "at": {}, "+": {}, "-": {},
}

// ClassifyLine assigns a role to one line. Noise wins over everything, then
// expiration, then the merchant and offer shape tests. A line with both shapes
// or neither is ambiguous and left to the issuer parser.
func ClassifyLine(line TextLine, p *IssuerProfile) LineRole {
	text := line.Text
	if isNoise(text, p) {
		return RoleNoise
	}
	if IsExpirationLine(text) {
		return RoleExpiration
	}
	if p != nil {
		if _, ok := p.MatchMerchant(text); ok {
			return RoleMerchant
		}
	}
	merchant := isMerchantShape(text)
	offer := isOfferShape(text)
	switch {
	case merchant && !offer:
		return RoleMerchant
	case offer && !merchant:
		return RoleOffer
	default:
		return RoleAmbiguous
	}
}

// ClassifyLines classifies every line with the same profile.
func ClassifyLines(lines []TextLine, p *IssuerProfile) []LineRole {
	roles := make([]LineRole, len(lines))
	for i, l := range lines {
		roles[i] = ClassifyLine(l, p)
	}
	return roles
}

func isNoise(text string, p *IssuerProfile) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	if p != nil && p.IsNoisePhrase(text) {
		return true
	}
	if _, ok := navigationPhrases[noiseKey(text)]; ok {
		return true
	}
	if reClock.MatchString(text) || reStatusBar.MatchString(text) || reBareSymbol.MatchString(text) {
		return true
	}
	if reCounter.MatchString(text) || reExpOnly.MatchString(text) {
		return true
	}
	if reTinyWord.MatchString(text) {
		if p != nil {
			if _, ok := p.exact[foldKey(text)]; ok {
				return false
			}
		}
		return true
	}
	return false
}

// isMerchantShape reports whether text looks like a brand name: a few
// capitalized words with no amounts, offer vocabulary or interface words.
func isMerchantShape(text string) bool {
	if len(text) > merchantMaxLen || HasValue(text) || reOfferVocab.MatchString(text) {
		return false
	}
	if reSentence.MatchString(text) && !strings.HasSuffix(text, ".com") {
		return false
	}
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > merchantMaxWords {
		return false
	}
	for i, w := range words {
		lw := strings.ToLower(w)
		if _, ui := uiWords[lw]; ui {
			return false
		}
		if _, conn := merchantConnectors[lw]; conn && i > 0 {
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
