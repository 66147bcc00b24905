// internal/domain/notification/schedule.go
package notification

import (
	"fmt"
	"time"
)

// LeadDays is how far ahead of the target month's first day a batch fires.
const LeadDays = 5

var ErrInvalidDigit = fmt.Errorf("digit must be between 0 and 9")

// ScheduleEntry maps a plate digit to the month its batch announces.
type ScheduleEntry struct {
	Digit Digit
	Month time.Month
}

// Occurrence is a fire date for one digit. It is derived, never stored.
type Occurrence struct {
	Digit    Digit
	FireDate time.Time
}

// entries is in fixed iteration order. When two digits fire on the same day
// the earlier entry wins.
var entries = [...]ScheduleEntry{
	{Digit: 1, Month: time.January},
	{Digit: 2, Month: time.February},
	{Digit: 3, Month: time.March},
	{Digit: 4, Month: time.April},
	{Digit: 5, Month: time.May},
	{Digit: 6, Month: time.June},
	{Digit: 7, Month: time.July},
	{Digit: 8, Month: time.August},
	{Digit: 9, Month: time.September},
	{Digit: 0, Month: time.October},
}

// Entries returns a copy of the digit→month table in iteration order.
func Entries() []ScheduleEntry {
	out := make([]ScheduleEntry, len(entries))
	copy(out, entries[:])
	return out
}

// MonthFor returns the target month of a digit.
func MonthFor(d Digit) (time.Month, bool) {
	for _, e := range entries {
		if e.Digit == d {
			return e.Month, true
		}
	}
	return 0, false
}

// FireDate returns the day LeadDays before the first of month in year.
func FireDate(month time.Month, year int, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -LeadDays)
}

// ValidateDigit checks a manually supplied digit.
func ValidateDigit(d int) (Digit, error) {
	if d < 0 || d > 9 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDigit, d)
	}
	return Digit(d), nil
}

// ScheduledDigitForToday reports which digit fires on today, if any.
// Both today's year and the next one are checked so that a January batch,
// whose fire date falls in late December, is found.
func ScheduledDigitForToday(today time.Time) (Digit, bool) {
	for _, e := range entries {
		for _, year := range candidateYears(today) {
			if sameDay(today, FireDate(e.Month, year, today.Location())) {
				return e.Digit, true
			}
		}
	}
	return 0, false
}

// NextScheduledOccurrence returns the earliest fire date strictly after today.
func NextScheduledOccurrence(today time.Time) Occurrence {
	day := truncateToDay(today)
	var next Occurrence
	found := false
	for _, e := range entries {
		for _, year := range candidateYears(today) {
			fd := FireDate(e.Month, year, today.Location())
			if !fd.After(day) {
				continue
			}
			if !found || fd.Before(next.FireDate) {
				next = Occurrence{Digit: e.Digit, FireDate: fd}
				found = true
			}
		}
	}
	return next
}

// OccurrencesWithin returns the fire dates in [today-window, today], oldest
// first. A window of zero (or less) only looks at today.
func OccurrencesWithin(today time.Time, window int) []Occurrence {
	if window < 0 {
		window = 0
	}
	day := truncateToDay(today)
	var out []Occurrence
	for offset := window; offset >= 0; offset-- {
		d := day.AddDate(0, 0, -offset)
		if digit, ok := ScheduledDigitForToday(d); ok {
			out = append(out, Occurrence{Digit: digit, FireDate: d})
		}
	}
	return out
}

func candidateYears(today time.Time) [2]int {
	return [2]int{today.Year(), today.Year() + 1}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
