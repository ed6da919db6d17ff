package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/blocksched/daycode"
	"github.com/cyp0633/blocksched/timing"
)

const productID = "-//cyp0633//blocksched//EN"

var rruleWeekdays = map[daycode.DayCode]rrule.Weekday{
	daycode.Sunday:    rrule.SU,
	daycode.Monday:    rrule.MO,
	daycode.Tuesday:   rrule.TU,
	daycode.Wednesday: rrule.WE,
	daycode.Thursday:  rrule.TH,
	daycode.Friday:    rrule.FR,
	daycode.Saturday:  rrule.SA,
}

// recurrence is the iCalendar view of a schedule over a timing
type recurrence struct {
	loc    *time.Location
	start  time.Time
	rule   *rrule.RRule // nil for an empty week
	rdates []time.Time
	exdate []time.Time
}

func (e *Engine) recurrenceOf(s Schedule, t timing.Timing) (*recurrence, error) {
	m, err := Compile(s)
	if err != nil {
		return nil, err
	}
	loc, err := e.timings.Normalizer().Location(t.Timezone)
	if err != nil {
		return nil, err
	}
	blocks, err := e.timings.Blocks(t)
	if err != nil {
		return nil, err
	}

	// DTSTART is always an instance, so it must be the first block that
	// passes. With no passing block it falls back to index 0, excluded below.
	first, err := e.Expand(s, t, []IndexRange{{From: 0, To: blocks - 1}}, ExpandOptions{MaxResults: mo.Some(1)})
	if err != nil {
		return nil, err
	}
	rec := &recurrence{loc: loc, start: t.StartsAt.In(loc)}
	if len(first) > 0 {
		rec.start = first[0].StartsAt.In(loc)
	}

	if !m.Week().Empty() {
		last, err := e.timings.IndexToInstant(t, blocks-1)
		if err != nil {
			return nil, err
		}
		days := make([]rrule.Weekday, 0, 7)
		for _, code := range m.Week().Codes() {
			days = append(days, rruleWeekdays[code])
		}
		rec.rule, err = rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   rec.start,
			Until:     last.In(loc),
			Byweekday: days,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build weekly rule: %w", err)
		}
	}

	// RDATEs only for blocks the rule misses, EXDATEs only for blocks the
	// rule produces from DTSTART on; exclusions beat inclusions as in the
	// matcher.
	explicit := func(indices []int, fromRule bool) ([]time.Time, error) {
		var out []time.Time
		for _, i := range sortedUnique(indices) {
			if i < 0 || i >= blocks {
				continue
			}
			if !fromRule && slices.Contains(s.Ex, i) {
				continue
			}
			at, err := e.timings.IndexToInstant(t, i)
			if err != nil {
				return nil, err
			}
			if fromRule && at.Before(rec.start) {
				continue
			}
			code, err := daycode.Of(e.timings.Normalizer(), at, t.Timezone)
			if err != nil {
				return nil, err
			}
			if m.Week().Has(code) == fromRule {
				out = append(out, at.In(loc))
			}
		}
		return out, nil
	}

	if rec.rdates, err = explicit(s.D, false); err != nil {
		return nil, err
	}
	if rec.exdate, err = explicit(s.Ex, true); err != nil {
		return nil, err
	}
	if len(first) == 0 && !slices.ContainsFunc(rec.exdate, rec.start.Equal) {
		rec.exdate = append(rec.exdate, rec.start)
	}
	return rec, nil
}

// ToRRuleSet expresses s over t as an RFC 5545 recurrence set: a weekly
// BYDAY rule bounded by the last block, RDATEs for explicit inclusions and
// EXDATEs for exclusions.
func (e *Engine) ToRRuleSet(s Schedule, t timing.Timing) (*rrule.Set, error) {
	rec, err := e.recurrenceOf(s, t)
	if err != nil {
		return nil, err
	}

	set := &rrule.Set{}
	if rec.rule != nil {
		set.RRule(rec.rule)
	}
	for _, at := range rec.rdates {
		set.RDate(at)
	}
	for _, at := range rec.exdate {
		set.ExDate(at)
	}
	return set, nil
}

// ToEvent renders s over t as a single recurring VEVENT. DTSTART is the first
// occurring block, not necessarily index 0. The UID is derived from the
// schedule and timing, so the same input always yields the same UID.
func (e *Engine) ToEvent(s Schedule, t timing.Timing, summary string, stamp time.Time) (*ical.Event, error) {
	rec, err := e.recurrenceOf(s, t)
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, scheduleUID(s, t))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, rec.start)
	if summary != "" {
		event.Props.SetText(ical.PropSummary, summary)
	}

	duration := ical.NewProp(ical.PropDuration)
	duration.Value = fmt.Sprintf("PT%dM", t.Duration)
	event.Props.Set(duration)

	if rec.rule != nil {
		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = rec.rule.OrigOptions.RRuleString()
		event.Props.Set(rule)
	}
	for _, at := range rec.rdates {
		if at.Equal(rec.start) {
			continue
		}
		prop := ical.NewProp(ical.PropRecurrenceDates)
		prop.SetDateTime(at)
		event.Props.Add(prop)
	}
	for _, at := range rec.exdate {
		prop := ical.NewProp(ical.PropExceptionDates)
		prop.SetDateTime(at)
		event.Props.Add(prop)
	}

	return event, nil
}

// OccurrencesCalendar renders expanded occurrences as individual VEVENTs in tz
func (e *Engine) OccurrencesCalendar(occ []Occurrence, tz, summary string, stamp time.Time) (*ical.Calendar, error) {
	loc, err := e.timings.Normalizer().Location(tz)
	if err != nil {
		return nil, err
	}

	cal := newCalendar()
	for _, o := range occ {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, occurrenceUID(summary, o))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, o.StartsAt.In(loc))
		event.Props.SetDateTime(ical.PropDateTimeEnd, o.EndsAt().In(loc))
		if summary != "" {
			event.Props.SetText(ical.PropSummary, summary)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	return cal, nil
}

// ScheduleCalendar wraps the recurring VEVENT of s over t in a calendar
func (e *Engine) ScheduleCalendar(s Schedule, t timing.Timing, summary string, stamp time.Time) (*ical.Calendar, error) {
	event, err := e.ToEvent(s, t, summary, stamp)
	if err != nil {
		return nil, err
	}
	cal := newCalendar()
	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

func scheduleUID(s Schedule, t timing.Timing) string {
	d, ex := sortedUnique(s.D), sortedUnique(s.Ex)
	name := fmt.Sprintf("schedule|%s|%v|%v|%s|%d|%s|%s",
		s.W, d, ex,
		t.StartsAt.UTC().Format(time.RFC3339), t.Duration, t.Timezone,
		t.End.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func occurrenceUID(summary string, o Occurrence) string {
	name := fmt.Sprintf("occurrence|%s|%d|%s|%d",
		summary, o.Index, o.StartsAt.UTC().Format(time.RFC3339), o.Duration)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// OccurrenceStarts lists the start instants of occ, mostly for comparing
// against recurrence sets
func OccurrenceStarts(occ []Occurrence) []time.Time {
	starts := make([]time.Time, 0, len(occ))
	for _, o := range occ {
		starts = append(starts, o.StartsAt)
	}
	return starts
}
