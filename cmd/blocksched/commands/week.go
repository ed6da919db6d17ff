package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cyp0633/blocksched/daycode"
)

var WeekCmd = &cobra.Command{
	Use:   "week <code>...",
	Short: "Decode week codes and print their canonical form",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "INPUT\tCANONICAL\tDAYS")
		for _, arg := range args {
			week, err := daycode.Decode(arg)
			if err != nil {
				return err
			}
			days := make([]string, 0, week.Len())
			for _, code := range week.Codes() {
				days = append(days, code.String())
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", arg, week.Encode(), strings.Join(days, ","))
		}
		return w.Flush()
	},
}
