// Package daycode encodes sets of weekdays as compact digit strings.
//
// A week is persisted as a string of DayCode digits ("23" is Monday and
// Tuesday, "8" every weekday, "9" the weekend). Inside the engine the set is
// always a Week bitmask; Decode and Encode are the only functions that touch
// the string form.
package daycode

import (
	"time"

	"github.com/cyp0633/blocksched/internal/tzdb"
)

// DayCode identifies a weekday or a group of weekdays
type DayCode int

const (
	None DayCode = iota
	Sunday
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Weekday
	Weekend
)

var names = map[DayCode]string{
	None:      "none",
	Sunday:    "sunday",
	Monday:    "monday",
	Tuesday:   "tuesday",
	Wednesday: "wednesday",
	Thursday:  "thursday",
	Friday:    "friday",
	Saturday:  "saturday",
	Weekday:   "weekday",
	Weekend:   "weekend",
}

func (c DayCode) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "invalid"
}

// Single reports whether c names exactly one day
func (c DayCode) Single() bool {
	return c >= Sunday && c <= Saturday
}

// FromWeekday maps a Go weekday to its single-day code
func FromWeekday(w time.Weekday) DayCode {
	return DayCode(int(w) + 1)
}

// Of returns the local single-day code of instant in tz
func Of(n *tzdb.Normalizer, instant time.Time, tz string) (DayCode, error) {
	w, err := n.Weekday(instant, tz)
	if err != nil {
		return None, err
	}
	return FromWeekday(w), nil
}

// Input is the set of accepted day-code shapes: a single DayCode, a List, a
// Set or an Encoded string. It is normalized to a Week at the boundary.
type Input interface {
	week() (Week, error)
}

// List is an unordered, possibly repeating, sequence of codes
type List []DayCode

// Set is a set of codes
type Set map[DayCode]struct{}

// Encoded is the persisted digit-string form
type Encoded string

func (c DayCode) week() (Week, error) { return WeekOf(c), nil }

func (l List) week() (Week, error) { return WeekOf(l...), nil }

func (s Set) week() (Week, error) {
	var w Week
	for c := range s {
		w |= WeekOf(c)
	}
	return w, nil
}

func (e Encoded) week() (Week, error) { return Decode(string(e)) }

// Normalize converts any Input to a Week
func Normalize(in Input) (Week, error) {
	if in == nil {
		return 0, nil
	}
	return in.week()
}

// Expand returns the ordered, duplicate-free single-day codes of in.
// Weekday and Weekend expand to their members; None expands to nothing.
func Expand(in Input) ([]DayCode, error) {
	w, err := Normalize(in)
	if err != nil {
		return nil, err
	}
	return w.Codes(), nil
}

// Encode returns the canonical encoded form of codes
func Encode(codes ...DayCode) string {
	return WeekOf(codes...).Encode()
}

// Equivalent reports whether a and b denote the same set of days
func Equivalent(a, b Input) (bool, error) {
	wa, err := Normalize(a)
	if err != nil {
		return false, err
	}
	wb, err := Normalize(b)
	if err != nil {
		return false, err
	}
	return wa == wb, nil
}
