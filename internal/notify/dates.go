package notify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// InvalidDate is rendered for input that does not parse as a date. Bad
// dates never fail a request.
const InvalidDate = "Invalid Date"

// displayLayout is the en-US short date form, e.g. 3/1/2024.
const displayLayout = "1/2/2006"

// Numeric calendar dates. A day past the end of its month rolls into the
// next one (2024-02-30 is 3/1/2024), but day and month stay in range.
var (
	yearFirst  = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	monthFirst = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// Timestamps and written-out month names.
var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// FormatDate renders a submitted calendar date for display. Timestamps keep
// the calendar date of their own offset.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)

	if m := yearFirst.FindStringSubmatch(s); m != nil {
		if t, ok := calendarDate(m[1], m[2], m[3]); ok {
			return t.Format(displayLayout)
		}
		return InvalidDate
	}
	if m := monthFirst.FindStringSubmatch(s); m != nil {
		if t, ok := calendarDate(m[3], m[1], m[2]); ok {
			return t.Format(displayLayout)
		}
		return InvalidDate
	}

	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(displayLayout)
		}
	}
	return InvalidDate
}

// calendarDate builds a date from numeric parts, letting time.Date normalize
// an overflowing day.
func calendarDate(year, month, day string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// formatOptionalDate is FormatDate, except absent input becomes "N/A".
func formatOptionalDate(s string) string {
	if s == "" {
		return NotApplicable
	}
	return FormatDate(s)
}
