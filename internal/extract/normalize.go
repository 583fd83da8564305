package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF        = regexp.MustCompile(`\r\n?`)
	reDisallowed  = regexp.MustCompile(`[^A-Z0-9.,\-/&\s]`)
	reDashSpacing = regexp.MustCompile(`\s*-\s*`)
	reSlashSpace  = regexp.MustCompile(`\s*/\s*`)
	reLineNumeral = regexp.MustCompile(`^\d+\s+`)
	reMultiSpace  = regexp.MustCompile(`\s{2,}`)
)

// ocrSubstitutions fixes recurrent garbling of corporate suffixes.
// Applied in order, after uppercasing, before the character filter.
var ocrSubstitutions = []struct{ from, to string }{
	{"$.A.C", "S.A.C"},
	{"S . A . C", "S.A.C"},
	{"S , A", "S.A"},
	{"S . A", "S.A"},
	{"5A", "S.A"},
}

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes raw OCR or native-PDF text for the detectors:
// accents stripped, uppercased, the fixed OCR substitution table applied,
// characters outside the receipt alphabet removed, separator spacing
// tightened, leading line numerals dropped, whitespace collapsed.
// Line structure is preserved; empty lines are dropped.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}
	s = strings.ToUpper(s)
	for _, sub := range ocrSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	s = reDisallowed.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = reDashSpacing.ReplaceAllString(ln, "-")
		ln = reSlashSpace.ReplaceAllString(ln, "/")
		ln = strings.TrimSpace(ln)
		ln = reLineNumeral.ReplaceAllString(ln, "")
		ln = reMultiSpace.ReplaceAllString(ln, " ")
		if ln == "" {
			continue
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
