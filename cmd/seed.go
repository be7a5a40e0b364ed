package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SonAcx/Customer360/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a warehouse snapshot from a YAML fixture",
	Long:  "Imports accounts, pipeline activity, purchase rows, and change history from a YAML snapshot into the configured backend. Intended for local sqlite snapshots and disposable postgres environments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		snap, err := catalog.LoadSnapshot(file)
		if err != nil {
			return eris.Wrap(err, "seed")
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		switch cfg.Warehouse.Driver {
		case "sqlite":
			c, err := catalog.NewSQLite(cfg.Warehouse.SnapshotPath)
			if err != nil {
				return eris.Wrap(err, "seed")
			}
			defer c.Close() //nolint:errcheck
			if err := c.Migrate(ctx); err != nil {
				return eris.Wrap(err, "seed: migrate")
			}
			if err := c.Import(ctx, snap); err != nil {
				return eris.Wrap(err, "seed: import")
			}
		case "postgres":
			c, err := catalog.NewPostgres(ctx, cfg.Warehouse.DatabaseURL, nil)
			if err != nil {
				return eris.Wrap(err, "seed")
			}
			defer c.Close() //nolint:errcheck
			if err := catalog.ImportPostgres(ctx, c.Pool(), snap); err != nil {
				return eris.Wrap(err, "seed: import")
			}
		default:
			return eris.Errorf("unknown warehouse driver: %s", cfg.Warehouse.Driver)
		}

		zap.L().Info("seed complete",
			zap.String("file", file),
			zap.Int("accounts", len(snap.Accounts)),
			zap.Int("pipeline", len(snap.Pipeline)),
			zap.Int("purchases", len(snap.Purchases)),
			zap.Int("history", len(snap.History)))
		fmt.Fprintf(os.Stdout, "Imported %d accounts, %d pipeline rows, %d purchase rows, %d history events\n",
			len(snap.Accounts), len(snap.Pipeline), len(snap.Purchases), len(snap.History))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "snapshot.yaml", "path to the YAML snapshot")
	rootCmd.AddCommand(seedCmd)
}
