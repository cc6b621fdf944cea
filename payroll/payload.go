/*
payload.go - Tip payload parsing

PURPOSE:
  The daily-total strategy's amounts usually arrive as text pasted straight
  from a point-of-sale report. Each block carries a human-readable weekday
  date and, within the next couple of lines, a dollar amount:

      02-10-2026
      12:15 AM
      Tips
      Tuesday, February 3, 2026 8:00 AM - Tuesday, February 3, 2026 9:00 PM
      $88.20

  The parser scans for the date pattern, looks ahead up to two further lines
  for the amount, and records the pair when the date falls inside the
  caller's inclusive range.

WARNINGS:
  - a date outside the range is skipped with a warning naming the date and
    amount
  - an unrecognized month name or an impossible calendar date is skipped
    with a warning
  - a date with no amount in the lookahead window is silently dropped
*/
package payroll

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// "Tuesday, February 3, 2026"
	payloadDateRe = regexp.MustCompile(`(?i)([A-Za-z]+day),\s+([A-Za-z]+)\s+(\d{1,2}),\s+(\d{4})`)

	// "$88.20" (cents optional)
	payloadAmountRe = regexp.MustCompile(`\$\s*(\d+(?:\.\d{2})?)`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ParseTipPayload extracts per-day tip totals from pasted report text.
// start and end bound the accepted dates, inclusive on both ends. The
// returned map is keyed by YYYY-MM-DD.
func ParseTipPayload(text string, start, end time.Time) (map[string]decimal.Decimal, []string) {
	daily := make(map[string]decimal.Decimal)
	var warnings []string

	startDay, endDay := day(start), day(end)
	lines := strings.Split(strings.TrimSpace(text), "\n")

	for i, line := range lines {
		m := payloadDateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		monthName := strings.ToLower(m[2])
		dayNum, _ := strconv.Atoi(m[3])
		year, _ := strconv.Atoi(m[4])

		month, ok := monthsByName[monthName]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unrecognized month %q in entry %q, skipped", m[2], strings.TrimSpace(line)))
			continue
		}
		if !validDate(year, month, dayNum) {
			warnings = append(warnings, fmt.Sprintf("invalid date %q, skipped", strings.TrimSpace(m[0])))
			continue
		}
		date := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)

		amount, found := lookaheadAmount(lines, i)
		if !found {
			continue
		}

		key := DateKey(date)
		if date.Before(startDay) || date.After(endDay) {
			warnings = append(warnings, fmt.Sprintf(
				"Date %s ($%s) is outside selected range and will be skipped", key, amount.StringFixed(2)))
			continue
		}
		daily[key] = amount
	}

	return daily, warnings
}

// lookaheadAmount scans the date line and up to 2 following lines for a
// dollar amount.
func lookaheadAmount(lines []string, i int) (decimal.Decimal, bool) {
	for j := i; j < len(lines) && j < i+3; j++ {
		if m := payloadAmountRe.FindStringSubmatch(lines[j]); m != nil {
			amount, err := decimal.NewFromString(m[1])
			if err == nil {
				return amount, true
			}
		}
	}
	return decimal.Zero, false
}

func validDate(year int, month time.Month, dayNum int) bool {
	if dayNum < 1 {
		return false
	}
	t := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == month && t.Day() == dayNum
}
