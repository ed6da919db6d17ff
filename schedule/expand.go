package schedule

import (
	"github.com/samber/mo"

	"github.com/cyp0633/blocksched/errs"
	"github.com/cyp0633/blocksched/timing"
)

// Expand produces the occurrences of s over the candidate ranges of t.
//
// Ranges are walked in the given order and each range ascending. An index
// seen in an earlier range is not emitted again. With opts.Now and
// opts.OnlyBlocksNotYetStarted, blocks starting strictly before now are
// dropped. Expansion stops as soon as the result cap is reached.
//
// Block indices start at 0. A range starting below 0 or ending before it
// starts is an invalid range. Indices past the last block follow the same
// daily rule.
func (e *Engine) Expand(s Schedule, t timing.Timing, candidates []IndexRange, opts ExpandOptions) ([]Occurrence, error) {
	for _, r := range candidates {
		if r.From < 0 {
			return nil, errs.InvalidRange("index range [%d, %d] starts before block 0", r.From, r.To)
		}
		if r.To < r.From {
			return nil, errs.InvalidRange("index range [%d, %d] ends before it starts", r.From, r.To)
		}
	}

	key := expansionKey{
		schedule:   s,
		timing:     t,
		candidates: candidates,
		options:    opts,
		defaultMax: e.config.DefaultMaxResults,
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.logger.Debug("expansion served from cache", "w", s.W, "count", len(cached))
			return cached, nil
		}
	}

	m, err := Compile(s)
	if err != nil {
		return nil, err
	}

	limit, limited := opts.MaxResults.Get()
	if !limited && e.config.DefaultMaxResults > 0 {
		limit, limited = e.config.DefaultMaxResults, true
	}
	if limit < 0 {
		limit = 0
	}
	now, hasNow := opts.Now.Get()
	futureOnly := hasNow && opts.OnlyBlocksNotYetStarted

	out := make([]Occurrence, 0)
	seen := make(map[int]struct{})
	capped := false

walk:
	for _, r := range candidates {
		for i := r.From; i <= r.To; i++ {
			if limited && len(out) >= limit {
				capped = true
				break walk
			}
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}

			start, ok, err := e.evaluate(m, t, i)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if futureOnly && start.Before(now) {
				continue
			}

			out = append(out, Occurrence{
				StartsAt: start,
				Duration: t.Duration,
				Index:    i,
			})
		}
	}

	if capped {
		e.logger.Debug("expansion stopped at result cap", "w", s.W, "cap", limit)
	}
	e.logger.Debug("schedule expanded",
		"w", s.W,
		"timezone", t.Timezone,
		"ranges", len(candidates),
		"count", len(out))

	if e.cache != nil {
		e.cache.Set(key, out)
	}
	return out, nil
}

// ExpandRange derives the timing of r and expands its schedule over every
// block of it
func (e *Engine) ExpandRange(r Range, opts ExpandOptions) ([]Occurrence, error) {
	t, err := e.TimingOf(r)
	if err != nil {
		return nil, err
	}
	blocks, err := e.timings.Blocks(t)
	if err != nil {
		return nil, err
	}
	return e.Expand(r.Schedule, t, []IndexRange{{From: 0, To: blocks - 1}}, opts)
}

// IncludedRanges returns the compacted index ranges of t that s includes
func (e *Engine) IncludedRanges(s Schedule, t timing.Timing) ([]IndexRange, error) {
	blocks, err := e.timings.Blocks(t)
	if err != nil {
		return nil, err
	}
	occ, err := e.Expand(s, t, []IndexRange{{From: 0, To: blocks - 1}}, ExpandOptions{MaxResults: mo.Some(blocks)})
	if err != nil {
		return nil, err
	}
	return ToRanges(occ), nil
}
