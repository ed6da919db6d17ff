package schedule

import (
	"io"
	"log/slog"
	"time"

	"github.com/cyp0633/blocksched/daycode"
	"github.com/cyp0633/blocksched/errs"
	"github.com/cyp0633/blocksched/internal/tzdb"
	"github.com/cyp0633/blocksched/timing"
)

// TimezoneDatabase resolves IANA zone names for the engine
type TimezoneDatabase = tzdb.Database

// Engine filters and expands schedules over timings
type Engine struct {
	timings *timing.Calculator
	cache   *ExpansionCache
	config  EngineConfig
	logger  *slog.Logger
}

// Option represents a configuration option for the Engine
type Option func(*Engine)

// WithLogger sets the logger for the engine
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDatabase makes the engine resolve zones through db
func WithDatabase(db TimezoneDatabase) Option {
	return func(e *Engine) {
		if db != nil {
			e.timings = timing.NewCalculator(tzdb.NewNormalizer(db))
		}
	}
}

// WithCalculator shares an existing calculator with the engine
func WithCalculator(c *timing.Calculator) Option {
	return func(e *Engine) {
		if c != nil {
			e.timings = c
		}
	}
}

// NewEngine creates a new engine without a result cache
func NewEngine(opts ...Option) *Engine {
	return newEngine(DisabledCacheConfig, opts...)
}

func newEngine(config EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.timings == nil {
		e.timings = timing.NewCalculator(nil)
	}

	return e
}

// Close releases the result cache, if any
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Timings exposes the calculator used by the engine
func (e *Engine) Timings() *timing.Calculator {
	return e.timings
}

// CacheStats reports the state of the result cache. ok is false when
// caching is disabled.
func (e *Engine) CacheStats() (stats CacheStats, ok bool) {
	if e.cache == nil {
		return CacheStats{}, false
	}
	return e.cache.Stats(), true
}

// Includes reports whether block index of t belongs to s. Exclusions win over
// everything, explicit inclusions win over the week.
func (e *Engine) Includes(s Schedule, t timing.Timing, index int) (bool, error) {
	m, err := Compile(s)
	if err != nil {
		return false, err
	}
	_, ok, err := e.evaluate(m, t, index)
	return ok, err
}

// IncludesInstant reports whether the block on instant's local day belongs to
// r. The index is computed from r's own anchor, so index lists and the week
// combine exactly as in Includes. Instants outside r are never included.
func (e *Engine) IncludesInstant(r Range, instant time.Time) (bool, error) {
	if r.End.Before(r.StartsAt) {
		return false, errs.InvalidRange("end %s is before start %s",
			r.End.Format(time.RFC3339), r.StartsAt.Format(time.RFC3339))
	}
	if instant.After(r.End) {
		return false, nil
	}

	m, err := Compile(r.Schedule)
	if err != nil {
		return false, err
	}

	anchor := timing.Timing{StartsAt: r.StartsAt, Timezone: r.Timezone}
	index, err := e.timings.DayOffset(anchor, instant)
	if err != nil {
		return false, err
	}
	if index < 0 {
		return false, nil
	}

	_, ok, err := e.evaluate(m, anchor, index)
	return ok, err
}

// evaluate decides one index and returns its start when it passes
func (e *Engine) evaluate(m *Matcher, t timing.Timing, index int) (time.Time, bool, error) {
	included, decided := m.explicit(index)
	if decided && !included {
		return time.Time{}, false, nil
	}

	start, err := e.timings.IndexToInstant(t, index)
	if err != nil {
		return time.Time{}, false, err
	}
	if decided {
		return start, true, nil
	}

	code, err := daycode.Of(e.timings.Normalizer(), start, t.Timezone)
	if err != nil {
		return time.Time{}, false, err
	}
	return start, m.Match(index, code), nil
}

// TimingOf derives the timing of a range: one block per local day from
// StartsAt's day to End's day inclusive, with r.Duration or, when zero, the
// duration that makes the final block end exactly at End.
func (e *Engine) TimingOf(r Range) (timing.Timing, error) {
	if r.End.Before(r.StartsAt) {
		return timing.Timing{}, errs.InvalidRange("end %s is before start %s",
			r.End.Format(time.RFC3339), r.StartsAt.Format(time.RFC3339))
	}

	days, err := e.timings.Normalizer().DaysBetween(r.StartsAt, r.End, r.Timezone)
	if err != nil {
		return timing.Timing{}, err
	}
	blocks := days + 1

	duration := r.Duration
	if duration == 0 {
		anchor := timing.Timing{StartsAt: r.StartsAt, Timezone: r.Timezone}
		lastStart, err := e.timings.IndexToInstant(anchor, blocks-1)
		if err != nil {
			return timing.Timing{}, err
		}
		duration = int(r.End.Sub(lastStart) / time.Minute)
		if duration <= 0 {
			return timing.Timing{}, errs.InvalidTiming(
				"range end %s does not follow the final block start %s; set a duration",
				r.End.Format(time.RFC3339), lastStart.Format(time.RFC3339))
		}
	}

	return e.timings.New(r.StartsAt, duration, blocks, r.Timezone)
}
