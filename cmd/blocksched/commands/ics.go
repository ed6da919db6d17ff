package commands

import (
	"time"

	"github.com/emersion/go-ical"
	"github.com/spf13/cobra"
)

var IcsCmd = &cobra.Command{
	Use:   "ics",
	Short: "Export a schedule range as iCalendar",
	Long: `Export a schedule range as iCalendar on stdout.

By default the range becomes one recurring VEVENT (weekly RRULE with RDATE
and EXDATE for explicit indices). With --expanded every occurrence is written
as its own VEVENT.`,
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
		summary, _ := cmd.Flags().GetString("summary")
		expanded, _ := cmd.Flags().GetBool("expanded")
		stamp := time.Now()

		var cal *ical.Calendar
		if expanded {
			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			occ, err := engine.ExpandRange(r, opts)
			if err != nil {
				return err
			}
			cal, err = engine.OccurrencesCalendar(occ, r.Timezone, summary, stamp)
			if err != nil {
				return err
			}
		} else {
			t, err := engine.TimingOf(r)
			if err != nil {
				return err
			}
			cal, err = engine.ScheduleCalendar(r.Schedule, t, summary, stamp)
			if err != nil {
				return err
			}
		}

		return ical.NewEncoder(cmd.OutOrStdout()).Encode(cal)
	},
}

func init() {
	addRangeFlags(IcsCmd)
	addExpandFlags(IcsCmd)
	IcsCmd.Flags().String("summary", "", "event summary")
	IcsCmd.Flags().Bool("expanded", false, "write one VEVENT per occurrence")
}
