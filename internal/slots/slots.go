package slots

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Window is the working day slots are cut from.
type Window struct {
	StartHour       int
	EndHour         int
	IntervalMinutes int
}

var DefaultWindow = Window{StartHour: 9, EndHour: 18, IntervalMinutes: 30}

// Generate returns the "HH:MM" start times on the window's grid at which an
// appointment of duration minutes still ends no later than the end of day.
// The result is never nil.
func Generate(w Window, duration int) []string {
	out := []string{}
	if duration <= 0 || w.IntervalMinutes <= 0 {
		return out
	}
	dayStart := w.StartHour * 60
	dayEnd := w.EndHour * 60
	for m := dayStart; m+duration <= dayEnd; m += w.IntervalMinutes {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// MockSubset thins a grid by dropping every third slot starting at index 1.
// Used when no calendar provider can be consulted.
func MockSubset(grid []string) []string {
	out := make([]string, 0, len(grid))
	for i, s := range grid {
		if i%3 != 1 {
			out = append(out, s)
		}
	}
	return out
}

// Bounds returns the window's opening and closing instants on day in loc.
func (w Window) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, w.StartHour, 0, 0, 0, loc)
	end := time.Date(y, m, d, w.EndHour, 0, 0, 0, loc)
	return start, end
}

// At resolves an "HH:MM" slot on day in loc.
func At(day time.Time, slot string, loc *time.Location) (time.Time, error) {
	tod, err := ParseHHMM(slot)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

// ParseDate parses a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseHHMM parses a zero-padded 24h "HH:MM" clock time.
func ParseHHMM(s string) (time.Time, error) {
	if len(s) != 5 || s[2] != ':' {
		return time.Time{}, fmt.Errorf("invalid time string: %s", s)
	}
	tt, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return tt, nil
}
