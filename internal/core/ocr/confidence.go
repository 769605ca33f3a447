package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}\b|\b20\d{2}-\d{2}-\d{2}\b`)
	reCurr = regexp.MustCompile(`[$£€]\s?\d|\d\s?%`)
	reWord = regexp.MustCompile(`\b(?:cash\s?back|back|earn|spend|off|points|miles|credit|offer|expires?)\b`)
)

// heuristicConfidence scores how much the recognized text looks like an offer screen.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reWord.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weighs tesseract's own word confidence over the heuristic when present.
func blendConfidence(tsv, heuristic float32) float32 {
	conf := heuristic
	if tsv > 0 {
		conf = 0.7*tsv + 0.3*heuristic
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
