package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cyp0633/blocksched/schedule"
)

var RangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Show the included block indices as compact ranges",
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

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FROM\tTO\tBLOCKS")
		for _, ir := range schedule.ToRanges(occ) {
			fmt.Fprintf(w, "%d\t%d\t%d\n", ir.From, ir.To, ir.Len())
		}
		return w.Flush()
	},
}

func init() {
	addRangeFlags(RangesCmd)
	addExpandFlags(RangesCmd)
}
