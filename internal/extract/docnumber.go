package extract

import (
	"regexp"
	"strings"
)

var reDocNumber = regexp.MustCompile(`\b([A-Z][A-Z0-9]{2,3})([-. ]?)(\d{1,14})\b`)

// voucherPrefixes are series letters used by SUNAT voucher numbering
// (facturas, boletas, electronic emission, honorarios, tickets).
var voucherPrefixes = map[byte]struct{}{
	'F': {}, 'B': {}, 'E': {}, 'R': {}, 'T': {},
}

// seriesBlocklist catches regex hits that are really other identifiers.
var seriesBlocklist = map[string]struct{}{
	"DNI": {}, "RUC": {}, "CEL": {}, "TEL": {}, "TLF": {}, "TELF": {},
}

// docNumberMisreads undoes digit garbling inside candidate tokens.
var docNumberMisreads = strings.NewReplacer("O", "0", "I", "1")

type docNumberCandidate struct {
	value string
	line  int
	score int
	width int
}

// detectDocumentNumber finds the voucher series-correlative pair.
// Candidates are scored, not taken first-match: known series prefixes,
// compact tokens, long correlatives and adjacency to the tax-identifier
// line all add weight. Candidates that collide with the tax ID or look
// like a personal 8-digit ID are discarded. Returns the canonical
// SERIES-CORRELATIVE form and its line index, or ("", -1).
func (d *Detector) detectDocumentNumber(lines []string, taxID string, taxLine int) (string, int) {
	var best *docNumberCandidate

	for i, original := range lines {
		ln := docNumberMisreads.Replace(original)
		for _, m := range reDocNumber.FindAllStringSubmatch(ln, -1) {
			series, sep, corr := m[1], m[2], m[3]
			if _, blocked := seriesBlocklist[series]; blocked {
				continue
			}
			if corr == taxID || series+corr == taxID {
				continue
			}
			_, voucher := voucherPrefixes[series[0]]
			if !voucher && len(corr) < 6 {
				// stray word + short number ("MAR 2024") is never a voucher
				continue
			}
			if len(corr) == 8 && !voucher {
				// bare 8-digit numbers next to a stray token are DNIs,
				// phone fragments or barcodes, not correlatives
				continue
			}

			score := 0
			if voucher {
				score += d.cfg.PrefixBonus
			}
			if sep == "" {
				score += d.cfg.CompactBonus
			}
			if len(corr) >= 6 {
				score += d.cfg.LengthBonus
			}
			if taxLine >= 0 && abs(i-taxLine) <= 1 {
				score += d.cfg.AdjacencyBonus
			}

			cand := docNumberCandidate{
				value: series + "-" + corr,
				line:  i,
				score: score,
				width: len(series) + len(corr),
			}
			if best == nil ||
				cand.score > best.score ||
				(cand.score == best.score && cand.width > best.width) {
				c := cand
				best = &c
			}
		}
	}

	if best == nil {
		return "", -1
	}
	return best.value, best.line
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
