package qr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vcorp-pe/boleta-engine/constants"
	"github.com/vcorp-pe/boleta-engine/internal/extract"
)

// Payload holds the fields recovered from a national e-invoicing QR code.
// The wire format is pipe-delimited:
//
//	RUC | typeCode | series | correlative | igv | total | date | ...
//
// Real emitters disagree on segment count and order past the fourth
// segment, so amounts and the date are recognized by shape, not position.
type Payload struct {
	TaxID          string
	TypeCode       string
	Series         string
	Correlative    string
	DocumentNumber string
	Total          string
	IssueDate      string
	DocumentType   constants.DocumentType
}

// Empty reports whether nothing usable was decoded.
func (p Payload) Empty() bool {
	return p.TaxID == "" && p.DocumentNumber == "" && p.Total == "" && p.IssueDate == ""
}

const correlativeWidth = 8

var (
	reQRTaxID  = regexp.MustCompile(`^\d{11}$`)
	reQRDate   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$|^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reDigits   = regexp.MustCompile(`^\d+$`)
	reMoneySeg = regexp.MustCompile(`^\d+([.,]\d+)*$`)
)

// ParsePayload decodes a raw QR string. Payloads with fewer than four
// segments are not trusted at all and yield a zero Payload.
func ParsePayload(raw string) Payload {
	parts := strings.Split(strings.TrimSpace(raw), "|")
	if len(parts) < 4 {
		return Payload{}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var p Payload
	if reQRTaxID.MatchString(parts[0]) && extract.ValidTaxID(parts[0]) {
		p.TaxID = parts[0]
	}
	p.TypeCode = parts[1]
	if t, ok := constants.QRTypeCodes[p.TypeCode]; ok {
		p.DocumentType = t
	}

	series := strings.ToUpper(parts[2])
	correlative := strings.TrimLeft(parts[3], "0")
	if correlative == "" && reDigits.MatchString(parts[3]) {
		correlative = "0"
	}
	if series != "" && reDigits.MatchString(parts[3]) {
		p.Series = series
		p.Correlative = correlative
		padded := correlative
		if len(padded) < correlativeWidth {
			padded = strings.Repeat("0", correlativeWidth-len(padded)) + padded
		}
		p.DocumentNumber = series + "-" + padded
	}

	p.Total = pickTotal(parts[4:], p.TaxID, correlative)
	p.IssueDate = pickDate(parts[4:])
	return p
}

// pickTotal scans the trailing segments for the document total: the
// largest monetary value that is not the RUC, the correlative, a bare
// 8/11-digit identifier, or zero.
func pickTotal(segments []string, taxID, correlative string) string {
	best := decimal.Zero
	found := false
	for _, seg := range segments {
		if seg == "" || reQRDate.MatchString(seg) || !reMoneySeg.MatchString(seg) {
			continue
		}
		digits := strings.Map(keepDigit, seg)
		if digits == "" || digits == taxID {
			continue
		}
		if correlative != "" && strings.TrimLeft(digits, "0") == correlative {
			continue
		}
		if reDigits.MatchString(seg) && (len(seg) == 8 || len(seg) == 11) {
			continue
		}
		v, err := extract.ParseAmount(seg)
		if err != nil || v.IsZero() || v.IsNegative() {
			continue
		}
		if !found || v.GreaterThan(best) {
			best = v
			found = true
		}
	}
	if !found {
		return ""
	}
	return extract.FormatAmount(best)
}

// pickDate returns the first date-shaped segment that names a real
// calendar day; garbled segments like 99/99/2024 are skipped.
func pickDate(segments []string) string {
	for _, seg := range segments {
		m := reQRDate.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		var dayS, monS, yearS string
		if m[1] != "" {
			dayS, monS, yearS = m[1], m[2], m[3]
		} else {
			yearS, monS, dayS = m[4], m[5], m[6]
		}
		day, _ := strconv.Atoi(dayS)
		mon, _ := strconv.Atoi(monS)
		year, _ := strconv.Atoi(yearS)
		dt := time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC)
		if dt.Year() != year || dt.Month() != time.Month(mon) || dt.Day() != day {
			continue
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, mon, day)
	}
	return ""
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
