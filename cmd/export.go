package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/search"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export search results to an Excel workbook",
	Long:  "Runs the same lookup as the search command and writes every matching account, with its activity markers, to an .xlsx file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		name, _ := cmd.Flags().GetString("name")
		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		out, _ := cmd.Flags().GetString("out")

		cat, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		svc := search.New(cat, cfg.Search.PageSize, cfg.Search.MinNameChars)

		params := search.Params{Name: name, City: city, State: state}
		if err := svc.Validate(params); err != nil {
			return err
		}

		var accounts []model.Account
		presence := model.PresenceMap{}
		for page := 0; ; page++ {
			params.Page = page
			result, err := svc.Search(ctx, params)
			if err != nil {
				return eris.Wrap(err, "export")
			}
			accounts = append(accounts, result.Accounts...)
			for k, v := range result.Presence {
				presence[k] = v
			}
			if page+1 >= result.TotalPages {
				break
			}
		}

		if len(accounts) == 0 {
			fmt.Fprintln(os.Stderr, "No matches found, nothing exported.")
			return nil
		}

		if err := writeWorkbook(out, accounts, presence); err != nil {
			return eris.Wrap(err, "export")
		}

		zap.L().Info("export complete", zap.String("path", out), zap.Int("accounts", len(accounts)))
		fmt.Fprintf(os.Stdout, "Wrote %d accounts to %s\n", len(accounts), out)
		return nil
	},
}

var exportHeader = []string{
	"SF Account ID", "AMP Customer ID", "Firefly ID", "Name", "Address",
	"City", "State", "Zip", "Type", "Primary Employee", "Primary Distributor",
	"LLO", "Market", "Zone", "Has Pipeline", "Has Purchases",
}

func writeWorkbook(path string, accounts []model.Account, presence model.PresenceMap) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Accounts")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, a := range accounts {
		row := sheet.AddRow()
		row.AddCell().SetString(a.SFAccountID)
		row.AddCell().SetString(ampDisplay(a))
		row.AddCell().SetString(a.FireflyID)
		row.AddCell().SetString(a.Name)
		row.AddCell().SetString(a.Address)
		row.AddCell().SetString(a.City)
		row.AddCell().SetString(a.State)
		row.AddCell().SetString(a.Zip)
		row.AddCell().SetString(a.AccountType)
		row.AddCell().SetString(a.PrimaryEmployee)
		row.AddCell().SetString(a.PrimaryDistributor)
		row.AddCell().SetString(a.LLO)
		row.AddCell().SetString(a.Market)
		row.AddCell().SetString(a.Zone)
		row.AddCell().SetBool(presenceFlagged(a.SFAccountID, presence, presencePipeline))
		row.AddCell().SetBool(presenceFlagged(ampDisplay(a), presence, presencePurchase))
	}

	return f.Save(path)
}

func init() {
	exportCmd.Flags().String("name", "", "filter by account name (min 2 chars)")
	exportCmd.Flags().String("city", "", "filter by city")
	exportCmd.Flags().String("state", "", "filter by state")
	exportCmd.Flags().String("out", "accounts.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
