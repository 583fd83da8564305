package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reDateDMY    = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	reDateYMD    = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
	reDateDMonY  = regexp.MustCompile(`\b(\d{1,2})[\s.-]+([A-Z]{3,10})[\s.,-]+(\d{2,4})\b`)
	reIssueLabel = regexp.MustCompile(`F\.?\s*EMISION|FECHA\s+(DE\s+)?EMISION|FECHA\s*:`)
	reDueLabel   = regexp.MustCompile(`VENC|VCTO|VTO`)
)

// dateMisreads undoes digit garbling that OCR produces around slashes.
var dateMisreads = strings.NewReplacer(
	"E/", "11/",
	"O/", "0/",
	"I/", "1/",
	"S/", "5/",
)

// Spanish month abbreviations, including the Peruvian SET for September.
var spanishMonths = map[string]time.Month{
	"ENE": time.January, "FEB": time.February, "MAR": time.March,
	"ABR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AGO": time.August, "SEP": time.September,
	"SET": time.September, "OCT": time.October, "NOV": time.November,
	"DIC": time.December,
}

type dateCandidate struct {
	when time.Time
	line int
}

// detectIssueDate finds the emission date. Lines labeled as due dates are
// skipped entirely. Every remaining candidate is validated as a real
// calendar date inside the recency window; ties are broken by proximity to
// the issue-date label line, then to the document-number line, then by
// reading order.
func (d *Detector) detectIssueDate(lines []string, docNumberLine int) string {
	now := d.now()
	minDate := now.AddDate(-d.cfg.DateWindowYears, 0, 0)
	maxDate := now.Add(24 * time.Hour)

	var candidates []dateCandidate
	issueAnchor := -1

	for i, original := range lines {
		if reDueLabel.MatchString(original) {
			continue
		}
		if issueAnchor < 0 && reIssueLabel.MatchString(original) {
			issueAnchor = i
		}
		ln := dateMisreads.Replace(original)

		for _, m := range reDateYMD.FindAllStringSubmatch(ln, -1) {
			if t, ok := buildDate(m[3], m[2], m[1], minDate, maxDate); ok {
				candidates = append(candidates, dateCandidate{t, i})
			}
		}
		for _, m := range reDateDMY.FindAllStringSubmatch(ln, -1) {
			if t, ok := buildDate(m[1], m[2], m[3], minDate, maxDate); ok {
				candidates = append(candidates, dateCandidate{t, i})
			}
		}
		for _, m := range reDateDMonY.FindAllStringSubmatch(ln, -1) {
			mon, ok := spanishMonths[monthKey(m[2])]
			if !ok {
				continue
			}
			if t, ok := buildDate(m[1], strconv.Itoa(int(mon)), m[3], minDate, maxDate); ok {
				candidates = append(candidates, dateCandidate{t, i})
			}
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	anchor := issueAnchor
	if anchor < 0 {
		anchor = docNumberLine
	}
	best := candidates[0]
	if anchor >= 0 {
		for _, c := range candidates[1:] {
			if abs(c.line-anchor) < abs(best.line-anchor) {
				best = c
			}
		}
	}
	return best.when.Format("2006-01-02")
}

func monthKey(s string) string {
	if len(s) > 3 {
		s = s[:3]
	}
	return s
}

// buildDate validates day/month/year strings as a real calendar date
// inside [minDate, maxDate]. Two-digit years are taken as 20xx.
func buildDate(dayS, monS, yearS string, minDate, maxDate time.Time) (time.Time, bool) {
	day, err1 := strconv.Atoi(dayS)
	mon, err2 := strconv.Atoi(monS)
	year, err3 := strconv.Atoi(yearS)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	if mon < 1 || mon > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(mon) || t.Year() != year {
		return time.Time{}, false
	}
	if t.Before(minDate) || t.After(maxDate) {
		return time.Time{}, false
	}
	return t, true
}
