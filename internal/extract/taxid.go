package extract

import "regexp"

var (
	reTaxKeyword = regexp.MustCompile(`R\.?\s*U\.?\s*C|RUG\b|RVC\b`)
	reElevenDig  = regexp.MustCompile(`\b(\d{11})\b`)
)

// SUNAT registrant-category prefixes observed on real vouchers.
var taxIDPrefixes = map[string]struct{}{
	"10": {}, "15": {}, "16": {}, "17": {}, "20": {},
}

// ValidTaxID reports whether a token is a plausible counterparty RUC:
// 11 digits with a known registrant prefix.
func ValidTaxID(id string) bool {
	if len(id) != 11 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, ok := taxIDPrefixes[id[:2]]
	return ok
}

// detectTaxID scans the header window for the counterparty RUC. Lines
// carrying a RUC keyword (including the RUG/RVC misreads) are tried first;
// a second pass accepts any valid identifier in the window. Excluded
// identifiers are skipped in both passes. Returns the id and its line
// index, or ("", -1).
func (d *Detector) detectTaxID(lines []string) (string, int) {
	header := d.headerWindow(lines)

	for i, ln := range header {
		if !reTaxKeyword.MatchString(ln) {
			continue
		}
		for _, m := range reElevenDig.FindAllString(ln, -1) {
			if ValidTaxID(m) && !d.isExcludedTaxID(m) {
				return m, i
			}
		}
		// keyword line often wraps; the number can land on the next line
		if i+1 < len(header) {
			for _, m := range reElevenDig.FindAllString(header[i+1], -1) {
				if ValidTaxID(m) && !d.isExcludedTaxID(m) {
					return m, i + 1
				}
			}
		}
	}

	for i, ln := range header {
		for _, m := range reElevenDig.FindAllString(ln, -1) {
			if ValidTaxID(m) && !d.isExcludedTaxID(m) {
				return m, i
			}
		}
	}
	return "", -1
}
