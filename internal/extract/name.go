package extract

import (
	"regexp"
	"strings"
)

var (
	reLegalSuffix = regexp.MustCompile(
		`(S\.?\s*A\.?\s*C\.?|E\.?\s*I\.?\s*R\.?\s*L\.?|S\.?\s*R\.?\s*L\.?|S\.?\s*A\.?)\s*$`)
	reNoiseLine = regexp.MustCompile(
		`^(AV|AVDA|JR|CAL|CALLE|PSJE|PJE|MZ|LT|URB|KM|TELF?|TLF|CEL|RPM|WWW|HTTP|EMAIL|E-MAIL)\b`)
	reClientMarker = regexp.MustCompile(`\bCLIE|CLIENTE\b|RAZ\.?\s*SOCIAL`)
	reFieldLine    = regexp.MustCompile(`\bRUC\b|\bTOTAL\b|\bFECHA\b|\bIMPORTE\b|\bIGV\b|\bSUBTOTAL\b`)
)

// nameWindowLines bounds how deep into the document the supplier name is
// searched; below that the text is items, clients and legal boilerplate.
const nameWindowLines = 12

// detectSupplierName recovers the issuing business name. A configured
// NameLookup short-circuits everything when the tax ID is known. Otherwise
// the header is scanned for a line, or a joined 2-3 line window, ending in
// a legal-entity suffix. The scan stops at client markers so the buyer's
// razón social is never picked up. Two fallbacks follow: the longest
// multi-word header line, then the line right above the tax identifier.
// Returns "" when nothing plausible is found.
func (d *Detector) detectSupplierName(lines []string, taxID string, taxLine int) string {
	if d.lookup != nil && taxID != "" {
		if name, ok := d.lookup.LookupName(taxID); ok && name != "" {
			return Normalize(name)
		}
	}

	region := supplierRegion(lines)

	for start := 0; start < len(region); start++ {
		for size := 1; size <= 3 && start+size <= len(region); size++ {
			joined := strings.TrimSpace(strings.Join(region[start:start+size], " "))
			if len(joined) <= 6 || !reLegalSuffix.MatchString(joined) {
				continue
			}
			if d.isExcludedName(joined) {
				continue
			}
			return joined
		}
	}

	// fallback: the longest multi-word line in the header region
	best := ""
	for _, ln := range region {
		if len(ln) > 10 && strings.Count(ln, " ") >= 1 && len(ln) > len(best) &&
			!reFieldLine.MatchString(ln) && !mostlyDigits(ln) &&
			!d.isExcludedName(ln) {
			best = ln
		}
	}
	if best != "" {
		return best
	}

	// fallback: vouchers usually print the name right above the RUC
	if taxLine > 0 && taxLine-1 < len(lines) {
		prev := strings.TrimSpace(lines[taxLine-1])
		if len(prev) > 4 && !d.isExcludedName(prev) && !reNoiseLine.MatchString(prev) {
			return prev
		}
	}
	return ""
}

func mostlyDigits(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return len(s) > 0 && digits*10 >= len(s)*4
}

// supplierRegion returns the header lines that may carry the issuer name:
// capped at nameWindowLines, cut at the first client marker, with address
// and contact noise removed.
func supplierRegion(lines []string) []string {
	limit := nameWindowLines
	if len(lines) < limit {
		limit = len(lines)
	}
	region := make([]string, 0, limit)
	for _, ln := range lines[:limit] {
		if reClientMarker.MatchString(ln) {
			break
		}
		if reNoiseLine.MatchString(ln) {
			continue
		}
		region = append(region, ln)
	}
	return region
}
