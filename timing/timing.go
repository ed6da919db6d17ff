// Package timing maps block indices to instants for daily recurrences.
//
// Index 0 is the first block of a Timing. Index i is the block whose local
// calendar day is i days after the day of index 0, starting at the same local
// wall-clock time. Across DST transitions the UTC offset of that wall time
// changes, the wall time itself does not.
package timing

import (
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/blocksched/errs"
	"github.com/cyp0633/blocksched/internal/tzdb"
)

// Timing anchors a run of fixed-duration blocks in a timezone
type Timing struct {
	StartsAt time.Time `json:"startsAt"`
	Duration int       `json:"duration"` // minutes
	Timezone string    `json:"timezone"`
	End      time.Time `json:"end"`
}

// DurationTime returns the block duration as a time.Duration
func (t Timing) DurationTime() time.Duration {
	return time.Duration(t.Duration) * time.Minute
}

// Calculator answers index and instant questions for timings. It is safe for
// concurrent use when its timezone database is.
type Calculator struct {
	tz *tzdb.Normalizer
}

// NewCalculator creates a calculator over the given normalizer. A nil
// normalizer uses the system timezone database.
func NewCalculator(n *tzdb.Normalizer) *Calculator {
	if n == nil {
		n = tzdb.NewNormalizer(nil)
	}
	return &Calculator{tz: n}
}

// Normalizer exposes the underlying normalizer
func (c *Calculator) Normalizer() *tzdb.Normalizer {
	return c.tz
}

// New builds a timing of totalBlocks blocks of duration minutes whose index 0
// starts at startsAt's local wall-clock time in tz.
func (c *Calculator) New(startsAt time.Time, duration, totalBlocks int, tz string) (Timing, error) {
	if duration <= 0 {
		return Timing{}, errs.InvalidTiming("duration must be positive, got %d", duration)
	}
	if totalBlocks <= 0 {
		return Timing{}, errs.InvalidTiming("block count must be positive, got %d", totalBlocks)
	}

	wall, err := c.tz.ToWall(startsAt, tz)
	if err != nil {
		return Timing{}, err
	}
	start, err := c.tz.FromWall(wall, tz)
	if err != nil {
		return Timing{}, err
	}

	last, err := c.tz.FromWall(wall.AddDate(0, 0, totalBlocks-1), tz)
	if err != nil {
		return Timing{}, err
	}
	if day, skipped, err := c.tz.SkippedDay(start, last, tz); err != nil {
		return Timing{}, err
	} else if skipped {
		return Timing{}, errs.InvalidTiming("local day %s does not exist in %s", day.Format(time.DateOnly), tz)
	}

	return Timing{
		StartsAt: start,
		Duration: duration,
		Timezone: tz,
		End:      last.Add(time.Duration(duration) * time.Minute),
	}, nil
}

// IndexToInstant returns the start of block index. Any integer is accepted;
// indices beyond the timing follow the same rule. An index whose local day
// the zone skips entirely has no start and fails as an invalid timing.
func (c *Calculator) IndexToInstant(t Timing, index int) (time.Time, error) {
	wall, err := c.tz.ToWall(t.StartsAt, t.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	target := wall.AddDate(0, 0, index)

	instant, err := c.tz.FromWall(target, t.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	got, err := c.tz.ToWall(instant, t.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	if !tzdb.SameDay(got, target) {
		return time.Time{}, errs.InvalidTiming("local day %s does not exist in %s",
			target.Format(time.DateOnly), t.Timezone)
	}
	return instant, nil
}

// DayOffset returns the number of local calendar days from index 0's day to
// instant's day, without checking that instant lies inside the timing.
func (c *Calculator) DayOffset(t Timing, instant time.Time) (int, error) {
	return c.tz.DaysBetween(t.StartsAt, instant, t.Timezone)
}

// InstantToIndex returns the index of the block whose local day contains
// instant. Instants before local midnight of index 0's day, or after End,
// fail with a not-in-timing error.
func (c *Calculator) InstantToIndex(t Timing, instant time.Time) (int, error) {
	first, err := c.tz.StartOfLocalDay(t.StartsAt, t.Timezone)
	if err != nil {
		return 0, err
	}
	if instant.Before(first) || instant.After(t.End) {
		return 0, errs.NotInTiming("%s is outside [%s, %s]",
			instant.Format(time.RFC3339), first.Format(time.RFC3339), t.End.Format(time.RFC3339))
	}
	return c.DayOffset(t, instant)
}

// Blocks returns the number of blocks implied by StartsAt, End and Duration
func (c *Calculator) Blocks(t Timing) (int, error) {
	if t.Duration <= 0 {
		return 0, errs.InvalidTiming("duration must be positive, got %d", t.Duration)
	}
	lastStart := t.End.Add(-t.DurationTime())
	if lastStart.Before(t.StartsAt) {
		return 0, errs.InvalidTiming("end %s leaves no room for a block", t.End.Format(time.RFC3339))
	}
	days, err := c.DayOffset(t, lastStart)
	if err != nil {
		return 0, err
	}
	return days + 1, nil
}

// Retime rebuilds t with a new per-block start time and/or duration while
// keeping the number of blocks. A new start contributes only its local
// wall-clock time; the timing stays anchored on its original first day.
func (c *Calculator) Retime(t Timing, newStartsAt mo.Option[time.Time], newDuration mo.Option[int]) (Timing, error) {
	blocks, err := c.Blocks(t)
	if err != nil {
		return Timing{}, err
	}

	start := t.StartsAt
	if at, ok := newStartsAt.Get(); ok {
		start, err = c.onSameDay(t, at)
		if err != nil {
			return Timing{}, err
		}
	}

	return c.New(start, newDuration.OrElse(t.Duration), blocks, t.Timezone)
}

// onSameDay moves the wall-clock time of at onto index 0's local day
func (c *Calculator) onSameDay(t Timing, at time.Time) (time.Time, error) {
	anchor, err := c.tz.ToWall(t.StartsAt, t.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := c.tz.ToWall(at, t.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	day := anchor.Add(-tzdb.TimeOfDay(anchor))
	return c.tz.FromWall(day.Add(tzdb.TimeOfDay(clock)), t.Timezone)
}
