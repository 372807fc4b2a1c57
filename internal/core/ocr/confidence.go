package ocr

import (
	"regexp"
	"strings"
)

var (
	reEnrollment = regexp.MustCompile(`\b0801[a-z0-9]+`)
	reMark       = regexp.MustCompile(`\b\d{1,3}(\.\d+)?\b`)
	reAbsence    = regexp.MustCompile(`\b(absent|none)\b`)
)

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// boost if we see result-sheet artifacts: enrollment ids, marks, absence words
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if ids := len(reEnrollment.FindAllStringIndex(txtL, -1)); ids > 0 {
		score += 0.25
		if ids >= 5 {
			score += 0.1
		}
	}
	if reMark.MatchString(txtL) {
		score += 0.15
	}
	if reAbsence.MatchString(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
