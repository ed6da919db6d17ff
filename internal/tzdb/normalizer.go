// Package tzdb converts between instants and local wall-clock fields.
//
// Every other package treats the Normalizer as the only source of DST
// information. Calendar arithmetic is done on "wall" values: UTC times whose
// fields equal the local wall-clock fields, which never shift across DST
// transitions.
package tzdb

import (
	"time"

	"github.com/cyp0633/blocksched/errs"
)

// transitionWindow bounds the search for UTC offsets around a wall time.
// Zones never move their offset twice within this window.
const transitionWindow = 36 * time.Hour

// LocalFields are the wall-clock fields of an instant in a zone
type LocalFields struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
	Second int        `json:"second"`
}

func fieldsOf(t time.Time) LocalFields {
	return LocalFields{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Wall returns the fields as a UTC time
func (f LocalFields) Wall() time.Time {
	return time.Date(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second, 0, time.UTC)
}

// Normalizer bridges instants and wall-clock fields in named zones
type Normalizer struct {
	db Database
}

// NewNormalizer creates a normalizer over db. A nil db selects a SystemDatabase.
func NewNormalizer(db Database) *Normalizer {
	if db == nil {
		db = NewSystemDatabase()
	}
	return &Normalizer{db: db}
}

// Location resolves a zone name, reporting failures as invalid timings
func (n *Normalizer) Location(tz string) (*time.Location, error) {
	loc, err := n.db.Location(tz)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidTiming, "unknown timezone", err)
	}
	return loc, nil
}

// LocalFields returns the wall-clock fields of instant in tz
func (n *Normalizer) LocalFields(instant time.Time, tz string) (LocalFields, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return LocalFields{}, err
	}
	return fieldsOf(instant.In(loc)), nil
}

// ToWall returns the wall representation of instant in tz. Sub-second
// precision is kept.
func (n *Normalizer) ToWall(instant time.Time, tz string) (time.Time, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	return wallIn(instant, loc), nil
}

// FromWall converts a wall representation back to an instant in tz.
//
// Ambiguous wall times (DST fall-back) resolve to the earlier instant.
// Nonexistent wall times (DST spring-forward gap) are read with the offset in
// force before the transition, so the result lands after the gap by the same
// amount the wall time lies inside it.
func (n *Normalizer) FromWall(wall time.Time, tz string) (time.Time, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	return fromWall(wall, loc), nil
}

// InstantFromLocalFields is FromWall over explicit fields
func (n *Normalizer) InstantFromLocalFields(f LocalFields, tz string) (time.Time, error) {
	return n.FromWall(f.Wall(), tz)
}

// StartOfLocalDay returns local midnight of the day containing instant
func (n *Normalizer) StartOfLocalDay(instant time.Time, tz string) (time.Time, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	return fromWall(truncateDay(wallIn(instant, loc)), loc), nil
}

// Weekday returns the local day of week of instant in tz
func (n *Normalizer) Weekday(instant time.Time, tz string) (time.Weekday, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return time.Sunday, err
	}
	return instant.In(loc).Weekday(), nil
}

// DaysBetween counts whole local calendar days from a to b
func (n *Normalizer) DaysBetween(a, b time.Time, tz string) (int, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return 0, err
	}
	return WallDays(truncateDay(wallIn(a, loc)), truncateDay(wallIn(b, loc))), nil
}

// SkippedDay returns the first local calendar day between from and to that
// does not exist in tz, as a wall midnight. Such days come from offset jumps
// of a day or more, like Pacific/Apia moving across the date line at the end
// of 2011-12-29.
func (n *Normalizer) SkippedDay(from, to time.Time, tz string) (time.Time, bool, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return time.Time{}, false, err
	}

	for at := from; at.Before(to); {
		_, next := at.In(loc).ZoneBounds()
		if next.IsZero() || next.After(to) || !next.After(at) {
			break
		}
		before := truncateDay(wallIn(next.Add(-time.Nanosecond), loc))
		after := truncateDay(wallIn(next, loc))
		if WallDays(before, after) > 1 {
			return before.AddDate(0, 0, 1), true, nil
		}
		at = next
	}
	return time.Time{}, false, nil
}

// SameDay reports whether two wall values fall on the same calendar day
func SameDay(a, b time.Time) bool {
	return truncateDay(a).Equal(truncateDay(b))
}

// WallDays counts calendar days between two wall midnights
func WallDays(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// TimeOfDay returns the offset of a wall time from its wall midnight
func TimeOfDay(wall time.Time) time.Duration {
	return wall.Sub(truncateDay(wall))
}

func truncateDay(wall time.Time) time.Time {
	return time.Date(wall.Year(), wall.Month(), wall.Day(), 0, 0, 0, 0, time.UTC)
}

func wallIn(instant time.Time, loc *time.Location) time.Time {
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}

func offsetAt(t time.Time, loc *time.Location) time.Duration {
	_, offset := t.In(loc).Zone()
	return time.Duration(offset) * time.Second
}

func fromWall(wall time.Time, loc *time.Location) time.Time {
	if loc == time.UTC {
		return wall
	}

	before := offsetAt(wall.Add(-transitionWindow), loc)
	after := offsetAt(wall.Add(transitionWindow), loc)

	var (
		found time.Time
		ok    bool
	)
	for _, offset := range []time.Duration{before, offsetAt(wall, loc), after} {
		candidate := wall.Add(-offset)
		if !wallIn(candidate, loc).Equal(wall) {
			continue
		}
		if !ok || candidate.Before(found) {
			found, ok = candidate, true
		}
	}
	if ok {
		return found.In(loc)
	}

	// Inside a gap: no offset reproduces the wall time. When the whole day
	// is skipped this lands on a later day; see SkippedDay.
	return wall.Add(-before).In(loc)
}
