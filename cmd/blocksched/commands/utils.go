package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cyp0633/blocksched/schedule"
)

// addRangeFlags registers the flags describing a schedule range
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("week", "w", "", "encoded week, e.g. 23 or 89")
	cmd.Flags().IntSliceP("include", "d", nil, "block indices always included")
	cmd.Flags().IntSlice("exclude", nil, "block indices always excluded")
	cmd.Flags().String("start", "", "start of the first block (RFC3339)")
	cmd.Flags().String("end", "", "end of the range (RFC3339)")
	cmd.Flags().Int("duration", 0, "block length in minutes (0 derives it from --end)")

	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
}

// addExpandFlags registers the flags controlling expansion
func addExpandFlags(cmd *cobra.Command) {
	cmd.Flags().String("now", "", "reference instant for --future (RFC3339, default current time)")
	cmd.Flags().Bool("future", false, "only blocks not yet started at --now")
	cmd.Flags().Int("max", -1, "stop after this many occurrences (-1 uses the engine default)")
}

func parseInstant(name, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return t, nil
}

func rangeFromFlags(cmd *cobra.Command) (schedule.Range, error) {
	week, _ := cmd.Flags().GetString("week")
	include, _ := cmd.Flags().GetIntSlice("include")
	exclude, _ := cmd.Flags().GetIntSlice("exclude")
	startValue, _ := cmd.Flags().GetString("start")
	endValue, _ := cmd.Flags().GetString("end")
	duration, _ := cmd.Flags().GetInt("duration")

	start, err := parseInstant("start", startValue)
	if err != nil {
		return schedule.Range{}, err
	}
	end, err := parseInstant("end", endValue)
	if err != nil {
		return schedule.Range{}, err
	}
	if duration < 0 {
		return schedule.Range{}, fmt.Errorf("invalid --duration %d", duration)
	}

	return schedule.Range{
		Schedule: schedule.Schedule{W: week, D: include, Ex: exclude},
		StartsAt: start,
		End:      end,
		Timezone: viper.GetString("tz"),
		Duration: duration,
	}, nil
}

func optionsFromFlags(cmd *cobra.Command) (schedule.ExpandOptions, error) {
	var opts schedule.ExpandOptions

	future, _ := cmd.Flags().GetBool("future")
	if future {
		now := time.Now()
		if value, _ := cmd.Flags().GetString("now"); value != "" {
			parsed, err := parseInstant("now", value)
			if err != nil {
				return opts, err
			}
			now = parsed
		}
		opts.Now = mo.Some(now)
		opts.OnlyBlocksNotYetStarted = true
	}

	if limit, _ := cmd.Flags().GetInt("max"); limit >= 0 {
		opts.MaxResults = mo.Some(limit)
	}

	return opts, nil
}

func newLogger() (*slog.Logger, error) {
	name := viper.GetString("log-level")
	if name == "" {
		name = "warn"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// newEngine builds the engine from the engine config file, if any
func newEngine() (*schedule.Engine, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	config := schedule.DisabledCacheConfig
	if path := viper.GetString("engine-config"); path != "" {
		config, err = schedule.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded engine config", "path", path, "cache", config.CacheEnabled)
	}

	return schedule.NewEngineWithConfig(config, schedule.WithLogger(logger)), nil
}
