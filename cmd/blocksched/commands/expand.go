package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ExpandCmd = &cobra.Command{
	Use:     "expand",
	Aliases: []string{"e"},
	Short:   "List the occurrences of a schedule range",
	Example: `  blocksched expand --tz America/Chicago -w 89 --exclude 0,1 \
    --start 2023-08-15T05:00:00Z --end 2023-12-21T22:30:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		r, err := rangeFromFlags(cmd)
		if err != nil {
			return err
		}
		opts, err := optionsFromFlags(cmd)
		if err != nil {
			return err
		}

		occ, err := engine.ExpandRange(r, opts)
		if err != nil {
			return err
		}
		loc, err := engine.Timings().Normalizer().Location(viper.GetString("tz"))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "INDEX\tDAY\tSTART\tEND\tMINUTES")
		for _, o := range occ {
			start := o.StartsAt.In(loc)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
				o.Index,
				start.Weekday().String()[:3],
				start.Format(time.RFC3339),
				o.EndsAt().In(loc).Format(time.RFC3339),
				o.Duration)
		}
		return w.Flush()
	},
}

func init() {
	addRangeFlags(ExpandCmd)
	addExpandFlags(ExpandCmd)
}
