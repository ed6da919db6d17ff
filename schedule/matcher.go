package schedule

import (
	"github.com/cyp0633/blocksched/daycode"
)

// Matcher is a decoded schedule ready for repeated membership tests
type Matcher struct {
	week    daycode.Week
	include map[int]struct{}
	exclude map[int]struct{}
}

// Compile decodes the week of s once and indexes its explicit lists
func Compile(s Schedule) (*Matcher, error) {
	week, err := daycode.Decode(s.W)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		week:    week,
		include: indexSet(s.D),
		exclude: indexSet(s.Ex),
	}, nil
}

func indexSet(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return set
}

// Week returns the decoded week
func (m *Matcher) Week() daycode.Week {
	return m.week
}

// explicit applies the index lists. decided is false when the answer
// depends on the day of week.
func (m *Matcher) explicit(index int) (included, decided bool) {
	if _, ok := m.exclude[index]; ok {
		return false, true
	}
	if _, ok := m.include[index]; ok {
		return true, true
	}
	if m.week.Empty() {
		return false, true
	}
	return false, false
}

// Match decides index given the local day code of its block
func (m *Matcher) Match(index int, code daycode.DayCode) bool {
	if included, decided := m.explicit(index); decided {
		return included
	}
	return m.week.Has(code)
}
