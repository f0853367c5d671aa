package calc

import (
	"strconv"
	"strings"
	"time"
)

// SessionRange is a named time-of-day trading window in minutes from
// midnight. Start is inclusive, End exclusive. A range with Start > End
// wraps past midnight.
type SessionRange struct {
	Name  string
	Start int
	End   int
}

// sessions in reporting order. Sydney wraps midnight.
var sessions = []SessionRange{
	{Name: "Sydney", Start: 22 * 60, End: 7 * 60},
	{Name: "Tokyo", Start: 0, End: 9 * 60},
	{Name: "London", Start: 7 * 60, End: 16 * 60},
	{Name: "New York", Start: 12 * 60, End: 21 * 60},
}

// Sessions returns the fixed session windows in reporting order.
func Sessions() []SessionRange {
	out := make([]SessionRange, len(sessions))
	copy(out, sessions)
	return out
}

// Contains reports whether the minute-of-day falls inside the window.
func (s SessionRange) Contains(minute int) bool {
	if s.Start > s.End { // wraps midnight
		return minute >= s.Start || minute < s.End
	}
	return minute >= s.Start && minute < s.End
}

// SessionForTime returns the comma-joined names of every session active at
// the given local "HH:MM". Overlaps are common: 08:00 is both Tokyo and
// London. Returns "Closed" when no session is active and "Unknown" when the
// input does not parse.
func SessionForTime(hhmm string) string {
	minute, ok := parseClock(hhmm)
	if !ok {
		return "Unknown"
	}

	var active []string
	for _, s := range sessions {
		if s.Contains(minute) {
			active = append(active, s.Name)
		}
	}
	if len(active) == 0 {
		return "Closed"
	}
	return strings.Join(active, ", ")
}

func parseClock(hhmm string) (int, bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ISOWeek returns the ISO-8601 week number of the date. Dates at year
// boundaries can belong to week 1 of the following year or week 52/53 of
// the prior one.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// ISOYearWeek returns both the ISO year and week, for bucketing across
// year boundaries.
func ISOYearWeek(t time.Time) (int, int) {
	return t.ISOWeek()
}
