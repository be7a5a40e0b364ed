package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the city/state pairs available for search filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		opts, err := cat.FilterOptions(ctx)
		if err != nil {
			return eris.Wrap(err, "filters")
		}

		sort.Slice(opts, func(i, j int) bool {
			if opts[i].State != opts[j].State {
				return opts[i].State < opts[j].State
			}
			return opts[i].City < opts[j].City
		})

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATE\tCITY")
		for _, o := range opts {
			fmt.Fprintf(tw, "%s\t%s\n", o.State, o.City)
		}
		tw.Flush() //nolint:errcheck

		fmt.Fprintf(os.Stdout, "\n%d locations\n", len(opts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}
