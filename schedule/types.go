package schedule

import (
	"slices"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/blocksched/daycode"
)

// Schedule selects which blocks of a timing occur
type Schedule struct {
	W  string `json:"w" yaml:"w"`                       // encoded week
	D  []int  `json:"d,omitempty" yaml:"d,omitempty"`   // indices forced in
	Ex []int  `json:"ex,omitempty" yaml:"ex,omitempty"` // indices forced out, wins over W and D
}

// Canonical returns s with its week in canonical encoding and its index
// lists sorted and deduplicated
func (s Schedule) Canonical() (Schedule, error) {
	w, err := daycode.Decode(s.W)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{
		W:  w.Encode(),
		D:  sortedUnique(s.D),
		Ex: sortedUnique(s.Ex),
	}, nil
}

func sortedUnique(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// Range is a schedule carrying its own anchor, self-sufficient for expansion.
// Duration is optional; when zero it is derived so that the final block ends
// exactly at End.
type Range struct {
	Schedule
	StartsAt time.Time `json:"startsAt" yaml:"startsAt"`
	End      time.Time `json:"end" yaml:"end"`
	Timezone string    `json:"timezone" yaml:"timezone"`
	Duration int       `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Occurrence is one concrete block produced by expansion
type Occurrence struct {
	StartsAt time.Time `json:"startsAt"`
	Duration int       `json:"duration"` // minutes
	Index    int       `json:"index"`
}

// EndsAt returns the end instant of the occurrence
func (o Occurrence) EndsAt() time.Time {
	return o.StartsAt.Add(time.Duration(o.Duration) * time.Minute)
}

// IndexRange is an inclusive span of block indices
type IndexRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Len returns the number of indices in r
func (r IndexRange) Len() int {
	return r.To - r.From + 1
}

// ExpandOptions controls how expansion behaves
type ExpandOptions struct {
	// Now together with OnlyBlocksNotYetStarted drops blocks starting
	// strictly before Now.
	Now                     mo.Option[time.Time]
	OnlyBlocksNotYetStarted bool

	// MaxResults stops expansion once that many occurrences were produced.
	// When absent the engine default applies.
	MaxResults mo.Option[int]
}
