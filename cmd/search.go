package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/SonAcx/Customer360/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the customer master",
	Long:  "Searches accounts by name substring, city, or state. Results are ranked by identifier coverage and annotated with activity-presence markers.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		name, _ := cmd.Flags().GetString("name")
		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		page, _ := cmd.Flags().GetInt("page")

		cat, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		svc := search.New(cat, cfg.Search.PageSize, cfg.Search.MinNameChars)
		result, err := svc.Search(ctx, search.Params{Name: name, City: city, State: state, Page: page})
		if err != nil {
			return eris.Wrap(err, "search")
		}

		if result.Total == 0 {
			fmt.Fprintln(os.Stderr, "No matches found.")
			return nil
		}

		formatSearchResult(os.Stdout, result)
		return nil
	},
}

// formatSearchResult prints one page of ranked accounts. The ● marker next
// to an id means that feed has at least one record for it.
func formatSearchResult(w io.Writer, result *search.Result) {
	start := result.Page*result.PageSize + 1
	end := result.Page*result.PageSize + len(result.Accounts)
	fmt.Fprintf(w, "Showing results %d-%d of %d (page %d of %d)\n\n",
		start, end, result.Total, result.Page+1, result.TotalPages)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SF ACCOUNT ID\tAMP CUSTOMER ID\tFIREFLY ID\tNAME\tCITY\tSTATE\tTYPE\tPRIMARY EMPLOYEE")
	for _, a := range result.Accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			markID(a.SFAccountID, result.Presence, presencePipeline),
			markID(ampDisplay(a), result.Presence, presencePurchase),
			a.FireflyID, a.Name, a.City, a.State, a.AccountType, a.PrimaryEmployee)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	searchCmd.Flags().String("name", "", "account name substring (min 2 characters)")
	searchCmd.Flags().String("city", "", "exact city filter")
	searchCmd.Flags().String("state", "", "exact state filter")
	searchCmd.Flags().Int("page", 0, "zero-based result page")
	rootCmd.AddCommand(searchCmd)
}
