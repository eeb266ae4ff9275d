package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts tried in order before falling back to heuristic parsing. Ukrainian
// sites overwhelmingly use dotted day-first dates.
var deadlineLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"2 January 2006",
	"January 2, 2006",
}

// Genitive and nominative Ukrainian month names.
var ukrainianMonths = map[string]time.Month{
	"січня": time.January, "січень": time.January,
	"лютого": time.February, "лютий": time.February,
	"березня": time.March, "березень": time.March,
	"квітня": time.April, "квітень": time.April,
	"травня": time.May, "травень": time.May,
	"червня": time.June, "червень": time.June,
	"липня": time.July, "липень": time.July,
	"серпня": time.August, "серпень": time.August,
	"вересня": time.September, "вересень": time.September,
	"жовтня": time.October, "жовтень": time.October,
	"листопада": time.November, "листопад": time.November,
	"грудня": time.December, "грудень": time.December,
}

var ukrainianDatePattern = regexp.MustCompile(`(\d{1,2})\s+([а-яіїєґА-ЯІЇЄҐ']+)\s+(\d{4})(?:\s*(?:р\.|року))?(?:\s*,?\s*(\d{1,2}):(\d{2}))?`)

// ParseDeadline normalizes free-form deadline text to a UTC timestamp.
// Absent or unparsable text yields nil, never an error.
func ParseDeadline(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if t := parseUkrainianDate(s); t != nil {
		return t
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}

func parseUkrainianDate(s string) *time.Time {
	m := ukrainianDatePattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return nil
	}
	month, ok := ukrainianMonths[m[2]]
	if !ok {
		return nil
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil
	}
	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			hour, minute = 0, 0
		}
	}
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}
