package ocr

import (
	"regexp"
	"strings"
)

var (
	reConfRUC    = regexp.MustCompile(`\bruc\b|\b\d{11}\b`)
	reConfDate   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	reConfCurr   = regexp.MustCompile(`s/|soles|\bpen\b`)
	reConfAmount = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+[.,]\d{2}\b`)
)

// naive heuristic confidence based on decoded text characteristics:
// voucher artifacts (RUC-ish, date-ish, currency-ish, amount-ish tokens)
// each add a little.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reConfRUC.MatchString(txtL) {
		score += 0.2
	}
	if reConfDate.MatchString(txtL) {
		score += 0.15
	}
	if reConfCurr.MatchString(txtL) {
		score += 0.15
	}
	if reConfAmount.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
