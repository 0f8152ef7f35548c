// Package types contains small value types shared across the domain packages.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Minutes in a day; a set crossing midnight ends past this mark.
const (
	MinutesPerDay  = 24 * 60
	minutesPerHour = 60
)

// Clock is a local wall-clock time expressed as minutes after midnight.
type Clock int

// ParseClock parses a 24h "HH:MM" string. Single-digit hours ("9:30") are
// accepted; "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || hh == "" || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if h < 0 || m < 0 || m >= minutesPerHour || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*minutesPerHour + m), nil
}

func digits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the clock as "HH:MM", wrapping past midnight.
func (c Clock) String() string {
	v := int(c) % MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", v/minutesPerHour, v%minutesPerHour)
}

// Interval is a half-open [Start, End) range of minutes within one day label.
// End may exceed MinutesPerDay for sets that run past midnight.
type Interval struct {
	Start Clock
	End   Clock
}

// NewInterval builds an interval from a start and end clock. An end before the
// start is read as the following morning; equal clocks are rejected.
func NewInterval(start, end Clock) (Interval, error) {
	if end == start {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrEmptyInterval, start, end)
	}
	if end < start {
		end += MinutesPerDay
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval parses a pair of "HH:MM" strings into an Interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// Minutes returns the length of the interval.
func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

// Overlap returns the number of minutes both intervals share, or 0.
func (i Interval) Overlap(o Interval) int {
	lo := max(i.Start, o.Start)
	hi := min(i.End, o.End)
	if hi <= lo {
		return 0
	}
	return int(hi - lo)
}

// Gap returns the minutes between the end of the earlier interval and the
// start of the later one. Overlapping intervals have a negative gap.
func (i Interval) Gap(o Interval) int {
	if i.Start <= o.Start {
		return int(o.Start - i.End)
	}
	return int(i.Start - o.End)
}
