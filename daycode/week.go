package daycode

import (
	"strings"

	"github.com/cyp0633/blocksched/errs"
)

// Week is a bitmask of single days; bit 0 is Sunday, bit 6 Saturday.
type Week uint8

const (
	WeekdayMask Week = 0b0111110
	WeekendMask Week = 0b1000001
	AllDays     Week = WeekdayMask | WeekendMask
)

// WeekOf builds a Week from codes, expanding group tokens. Codes outside the
// enumeration are ignored.
func WeekOf(codes ...DayCode) Week {
	var w Week
	for _, c := range codes {
		switch {
		case c.Single():
			w |= 1 << (c - Sunday)
		case c == Weekday:
			w |= WeekdayMask
		case c == Weekend:
			w |= WeekendMask
		}
	}
	return w
}

// Decode parses an encoded week. Every character must be a decimal digit;
// order and repetition do not matter. The empty string is the empty week.
func Decode(s string) (Week, error) {
	var w Week
	for i, r := range s {
		if r < '0' || r > '9' {
			return 0, errs.Decode("invalid day code %q at position %d in %q", r, i, s)
		}
		w |= WeekOf(DayCode(r - '0'))
	}
	return w, nil
}

// Has reports whether the single day c is in w
func (w Week) Has(c DayCode) bool {
	if !c.Single() {
		return false
	}
	return w&(1<<(c-Sunday)) != 0
}

// Contains reports whether every day of other is in w
func (w Week) Contains(other Week) bool {
	return w&other == other
}

// Empty reports whether no day is set
func (w Week) Empty() bool {
	return w&AllDays == 0
}

// Len counts the days in w
func (w Week) Len() int {
	n := 0
	for c := Sunday; c <= Saturday; c++ {
		if w.Has(c) {
			n++
		}
	}
	return n
}

// Codes lists the single days of w from Sunday to Saturday
func (w Week) Codes() []DayCode {
	codes := make([]DayCode, 0, 7)
	for c := Sunday; c <= Saturday; c++ {
		if w.Has(c) {
			codes = append(codes, c)
		}
	}
	return codes
}

// Encode returns the canonical string: a complete Monday-Friday half becomes
// "8", a complete weekend becomes "9", remaining days keep their own digit,
// and all digits are sorted ascending. The full week is "89".
func (w Week) Encode() string {
	var digits [9]bool

	if w.Contains(WeekdayMask) {
		digits[Weekday-1] = true
	} else {
		for c := Monday; c <= Friday; c++ {
			digits[c-1] = w.Has(c)
		}
	}

	if w.Contains(WeekendMask) {
		digits[Weekend-1] = true
	} else {
		digits[Sunday-1] = w.Has(Sunday)
		digits[Saturday-1] = w.Has(Saturday)
	}

	var sb strings.Builder
	for i, set := range digits {
		if set {
			sb.WriteByte(byte('1' + i))
		}
	}
	return sb.String()
}

func (w Week) String() string {
	return w.Encode()
}

func (w Week) week() (Week, error) { return w, nil }
