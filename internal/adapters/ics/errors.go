package ics

import "errors"

// ErrNoFestival is returned when an itinerary is exported without its
// festival, which carries the calendar dates.
var ErrNoFestival = errors.New("festival required for calendar export")
