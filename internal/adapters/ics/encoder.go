// Package ics renders itineraries as iCalendar (RFC 5545) documents.
package ics

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata" // festival timezones resolve without system zoneinfo

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/okian/gigmatch/internal/domain/model"
)

const (
	productID   = "-//gigmatch//itinerary//EN"
	dateLayout  = "2006-01-02"
	localLayout = "20060102T150405"
)

// eventNamespace scopes event UIDs so re-exports update calendar entries in
// place instead of duplicating them.
var eventNamespace = uuid.MustParse("e2b7c51d-0f84-4a6b-b3d9-7c15a08e6f23") //nolint:gochecknoglobals // constant namespace

// Option applies a configuration option to the Encoder.
type Option func(*Encoder)

// WithNow sets the clock used for DTSTAMP.
func WithNow(now func() time.Time) Option {
	return func(e *Encoder) {
		if now != nil {
			e.now = now
		}
	}
}

// WithCalendarName sets X-WR-CALNAME. Defaults to the festival name.
func WithCalendarName(name string) Option {
	return func(e *Encoder) {
		e.name = name
	}
}

// Encoder writes itineraries as calendars.
type Encoder struct {
	now  func() time.Time
	name string
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result reports what was exported.
type Result struct {
	Events  int
	Skipped int // slots whose day has no calendar date
}

// Encode writes one VEVENT per itinerary slot. Times are wall-clock times in
// the festival's timezone (TZID) or floating when the festival has none.
// Slots on days without a date cannot be placed and are skipped.
func (e *Encoder) Encode(w io.Writer, it *model.Itinerary, festival *model.Festival) (Result, error) {
	if festival == nil {
		return Result{}, ErrNoFestival
	}
	tzid := strings.TrimSpace(festival.Timezone)
	if tzid != "" {
		if _, err := time.LoadLocation(tzid); err != nil {
			tzid = ""
		}
	}
	name := e.name
	if name == "" {
		name = festival.Name
	}

	cal := ical.NewCalendarFor("gigmatch")
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	if tzid != "" {
		cal.SetXWRTimezone(tzid)
	}

	var res Result
	stamp := e.now()
	for _, day := range it.Days {
		for i := range day.Slots {
			sp := &day.Slots[i]
			start, end, ok := slotTimes(festival, &sp.Performance)
			if !ok {
				res.Skipped++
				continue
			}
			ev := cal.AddEvent(uuid.NewSHA1(eventNamespace, []byte(festival.ID+"/"+sp.ID)).String() + "@gigmatch")
			ev.SetDtStampTime(stamp)
			setLocal(ev, ical.ComponentPropertyDtStart, tzid, start)
			setLocal(ev, ical.ComponentPropertyDtEnd, tzid, end)
			ev.SetSummary(strings.Join(sp.Artists(), " & "))
			if stage := strings.TrimSpace(sp.Stage); stage != "" {
				ev.SetLocation(stage)
			}
			if len(sp.Match.Reasons) > 0 {
				ev.SetDescription(strings.Join(sp.Match.Reasons, "\n"))
			}
			if sp.Match.MatchType.MustSee() {
				ev.SetPriority(1)
			}
			res.Events++
		}
	}

	bw := bufio.NewWriter(w)
	if err := cal.SerializeTo(bw, ical.WithNewLineWindows); err != nil {
		return res, fmt.Errorf("write calendar: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("write calendar: %w", err)
	}
	return res, nil
}

// slotTimes resolves a slot to wall-clock start and end on its festival date.
func slotTimes(f *model.Festival, p *model.Performance) (time.Time, time.Time, bool) {
	date, ok := f.DateOf(p.Day)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	iv, ok := p.Interval()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	start := d.Add(time.Duration(iv.Start) * time.Minute)
	end := d.Add(time.Duration(iv.End) * time.Minute)
	return start, end, true
}

// setLocal writes a wall-clock time, anchored to tzid when there is one and
// floating otherwise. SetStartAt/SetEndAt always convert to UTC.
func setLocal(ev *ical.VEvent, prop ical.ComponentProperty, tzid string, t time.Time) {
	if tzid == "" {
		ev.SetProperty(prop, t.Format(localLayout))
		return
	}
	ev.SetProperty(prop, t.Format(localLayout), ical.WithTZID(tzid))
}
