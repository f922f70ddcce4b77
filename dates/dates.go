// Package dates interprets the textual timestamps stored on complaint
// records. The portal has accumulated several formats over time, so parsing
// is by delimiter sniffing rather than a single layout.
package dates

import (
	"strconv"
	"strings"
	"time"
)

// Layouts accepted by the generic fallback, tried in order. Day-first, to
// stay consistent with the portal's own formats.
var fallbackLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006",
	"2006/01/02",
}

// Parse interprets a complaint timestamp. Supported formats, in priority
// order:
//
//	"dd.MM.yyyy HH:mm" or "dd.MM.yyyy"
//	"yyyy-MM-dd" (first dash segment 4 chars)
//	"dd-MM-yyyy" (otherwise)
//	a small list of generic fallback layouts
//
// Returns ok=false for empty, malformed, or calendar-invalid input. Never
// panics; callers must treat a failed parse as "no date", not as zero time.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, ".") {
		return parseDotted(s)
	}
	if strings.Contains(s, "-") {
		return parseDashed(s)
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDotted handles "dd.MM.yyyy" with an optional " HH:mm" suffix.
func parseDotted(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	parts := strings.Split(fields[0], ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, month, year, ok := atoi3(parts[0], parts[1], parts[2])
	if !ok {
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if len(fields) > 1 {
		hm := strings.Split(fields[1], ":")
		if len(hm) < 2 {
			return time.Time{}, false
		}
		var err1, err2 error
		hour, err1 = strconv.Atoi(hm[0])
		minute, err2 = strconv.Atoi(hm[1])
		if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return time.Time{}, false
		}
	}
	return makeDate(year, month, day, hour, minute)
}

// parseDashed handles both "yyyy-MM-dd" and "dd-MM-yyyy", disambiguated by
// the length of the first segment. This is a heuristic, not a grammar.
func parseDashed(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	a, b, c, ok := atoi3(parts[0], parts[1], parts[2])
	if !ok {
		return time.Time{}, false
	}
	if len(parts[0]) == 4 {
		return makeDate(a, b, c, 0, 0) // yyyy-MM-dd
	}
	return makeDate(c, b, a, 0, 0) // dd-MM-yyyy
}

func atoi3(x, y, z string) (int, int, int, bool) {
	a, err1 := strconv.Atoi(strings.TrimSpace(x))
	b, err2 := strconv.Atoi(strings.TrimSpace(y))
	c, err3 := strconv.Atoi(strings.TrimSpace(z))
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return a, b, c, true
}

// makeDate builds the instant and rejects components that are not a real
// calendar date (time.Date would silently normalize month 13 or day 32).
func makeDate(year, month, day, hour, minute int) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// SameDay reports whether two instants fall on the same calendar day,
// ignoring time of day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
