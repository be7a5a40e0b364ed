package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/SonAcx/Customer360/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history <account-uuid>",
	Short: "Show the change history for one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		account, err := cat.GetAccount(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history")
		}
		if account == nil {
			return eris.Errorf("account not found: %s", args[0])
		}

		events, err := cat.AccountHistory(ctx, account.AccountUUID)
		if err != nil {
			return eris.Wrap(err, "history")
		}

		fmt.Fprintf(os.Stdout, "History for %s (%s)\n\n", account.Name, account.AccountUUID)
		formatHistoryTable(os.Stdout, events)
		return nil
	},
}

func formatHistoryTable(w io.Writer, events []model.HistoryEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "  (no recorded changes)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tEVENT\tFIELD\tOLD\tNEW\tCHANGED BY")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.EventDate.Format("2006-01-02"), e.EventType, e.FieldName,
			e.OldValue, e.NewValue, e.ChangedBy)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
