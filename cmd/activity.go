package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/SonAcx/Customer360/internal/catalog"
	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/resolve"
)

var activityCmd = &cobra.Command{
	Use:   "activity <account-uuid>",
	Short: "Show cross-system activity for one account",
	Long:  "Prints the account card, its CRM pipeline activity, and its AMP purchasing activity. Purchase rows include activity recorded under sibling AMP ids linked through a shared Firefly id.",
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
			return eris.Wrap(err, "activity")
		}
		if account == nil {
			return eris.Errorf("account not found: %s", args[0])
		}

		formatAccountCard(os.Stdout, account)

		fmt.Fprintln(os.Stdout, "\nPipeline activity")
		var pipeline []model.PipelineActivity
		for _, sfID := range resolve.SplitIDs(account.SFAccountID) {
			rows, err := cat.PipelineActivityDetail(ctx, sfID)
			if err != nil {
				return eris.Wrap(err, "activity: pipeline detail")
			}
			pipeline = append(pipeline, rows...)
		}
		formatPipelineTable(os.Stdout, pipeline)

		fmt.Fprintln(os.Stdout, "\nPurchase activity")
		purchases, err := fetchPurchases(ctx, cat, account)
		if err != nil {
			return eris.Wrap(err, "activity: purchase detail")
		}
		formatPurchaseTable(os.Stdout, purchases)

		return nil
	},
}

// fetchPurchases expands the account's AMP id to its linked siblings before
// querying the purchasing feed.
func fetchPurchases(ctx context.Context, cat catalog.Catalog, account *model.Account) ([]model.PurchaseRow, error) {
	if !account.HasAMPCustomerID() {
		return nil, nil
	}
	linker := resolve.NewLinker(cat)
	expanded, err := linker.Expand(ctx, *account.AMPCustomerID)
	if err != nil {
		return nil, err
	}
	return cat.PurchaseActivityDetail(ctx, expanded)
}

func formatAccountCard(w io.Writer, a *model.Account) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", a.Name)
	fmt.Fprintf(tw, "SF Account ID:\t%s\n", a.SFAccountID)
	fmt.Fprintf(tw, "AMP Customer ID:\t%s\n", ampDisplay(*a))
	fmt.Fprintf(tw, "Firefly ID:\t%s\n", a.FireflyID)
	fmt.Fprintf(tw, "Address:\t%s\n", a.Address)
	fmt.Fprintf(tw, "City / State / Zip:\t%s / %s / %s\n", a.City, a.State, a.Zip)
	fmt.Fprintf(tw, "Type:\t%s\n", a.AccountType)
	fmt.Fprintf(tw, "Primary Employee:\t%s\n", a.PrimaryEmployee)
	fmt.Fprintf(tw, "Primary Distributor:\t%s\n", a.PrimaryDistributor)
	fmt.Fprintf(tw, "LLO:\t%s\n", a.LLO)
	fmt.Fprintf(tw, "Market / Zone:\t%s / %s\n", a.Market, a.Zone)
	tw.Flush() //nolint:errcheck
}

func formatPipelineTable(w io.Writer, rows []model.PipelineActivity) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tSTATUS\tPRODUCT\tSKU\tCLIENT\tCATEGORY\tSTAGE\tQTY\tNEXT STEPS")
	for _, p := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.0f\t%s\n",
			formatDate(p.StartDate), formatDate(p.EndDate), p.ActivityStatus,
			p.ProductName, p.ProductSKU, p.ClientName, p.ProductCategory,
			p.PipelineStage, p.Quantity, p.NextSteps)
	}
	tw.Flush() //nolint:errcheck
}

func formatPurchaseTable(w io.Writer, rows []model.PurchaseRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AMP ID\tCUSTOMER\tCLIENT\tDISTRIBUTOR\tITEM\tSKU\tPRODUCT\tPERIOD\tUOM\tCUR\tYTD\tLYM\tLYTD")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\n",
			r.AMPCustomerID, r.CustomerName, r.ManufacturerName, r.Distributor,
			r.ItemID, r.SKU, r.ProductName, r.Period, r.UOM,
			r.QtyCurrent, r.QtyYTD, r.QtyLYM, r.QtyLYTD)
	}
	tw.Flush() //nolint:errcheck
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func init() {
	rootCmd.AddCommand(activityCmd)
}
