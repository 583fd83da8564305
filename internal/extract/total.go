package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vcorp-pe/boleta-engine/constants"
)

var (
	reTotalLabel = regexp.MustCompile(
		`\bTOTAL\b|IMP\.?\s*TOTAL|IMPORTE\s+TOTAL|MONTO\s+TOTAL|\bNETO\b|A\s+PAGAR`)
	reMoneyToken = regexp.MustCompile(`\d+(?:[.,]\d{3})*[.,]\d{2}\b`)
	reCurrency   = regexp.MustCompile(`S/\.?\s*(\d+(?:[.,]\d{3})*(?:[.,]\d{1,2})?)`)
	reNonDigit   = regexp.MustCompile(`\D`)
	reBareToken  = regexp.MustCompile(`^\d+$`)
)

// detectTotal resolves the document total with three tiers: amounts on
// labeled total lines, then amounts behind an S/ currency mark, then any
// well-formed two-decimal token. Tokens colliding with the tax identifier
// or document number, bare 8/11-digit identifiers and zero values are
// never candidates. The largest surviving amount wins. Always returns a
// two-decimal string, "0.00" when nothing qualifies.
func (d *Detector) detectTotal(text, taxID, docNumber string) string {
	docDigits := reNonDigit.ReplaceAllString(docNumber, "")

	pick := func(tokens []string) (decimal.Decimal, bool) {
		best := decimal.Zero
		found := false
		for _, tok := range tokens {
			digits := reNonDigit.ReplaceAllString(tok, "")
			if digits == "" || (taxID != "" && digits == taxID) {
				continue
			}
			if docDigits != "" && digits == docDigits {
				continue
			}
			// separator-free tokens shaped like a DNI or RUC; a token
			// with a decimal part is never an identifier
			if reBareToken.MatchString(tok) && (len(tok) == 8 || len(tok) == 11) {
				continue
			}
			v, err := ParseAmount(tok)
			if err != nil || v.IsZero() || v.IsNegative() {
				continue
			}
			if !found || v.GreaterThan(best) {
				best = v
				found = true
			}
		}
		return best, found
	}

	lines := strings.Split(text, "\n")

	// tier 1: labeled total lines (amount may wrap to the next line)
	var labeled []string
	for i, ln := range lines {
		if !reTotalLabel.MatchString(ln) {
			continue
		}
		labeled = append(labeled, reMoneyToken.FindAllString(ln, -1)...)
		if len(reMoneyToken.FindAllString(ln, -1)) == 0 && i+1 < len(lines) {
			labeled = append(labeled, reMoneyToken.FindAllString(lines[i+1], -1)...)
		}
	}
	if v, ok := pick(labeled); ok {
		return FormatAmount(v)
	}

	// tier 2: currency-marked amounts
	var marked []string
	for _, m := range reCurrency.FindAllStringSubmatch(text, -1) {
		marked = append(marked, m[1])
	}
	if v, ok := pick(marked); ok {
		return FormatAmount(v)
	}

	// tier 3: any two-decimal token
	if v, ok := pick(reMoneyToken.FindAllString(text, -1)); ok {
		return FormatAmount(v)
	}
	return constants.DefaultTotal
}
