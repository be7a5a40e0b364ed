package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/SonAcx/Customer360/internal/catalog"
	"github.com/SonAcx/Customer360/internal/resilience"
)

// initCatalog opens the configured warehouse backend. Callers own Close.
// Opening the postgres pool retries on transient connection errors so a
// deploy racing a warehouse failover does not die on the first dial.
func initCatalog(ctx context.Context) (catalog.Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Warehouse.Driver {
	case "postgres":
		poolCfg := &catalog.PoolConfig{
			MaxConns: cfg.Warehouse.Pool.MaxConns,
			MinConns: cfg.Warehouse.Pool.MinConns,
		}
		retryCfg := resilience.DefaultRetryConfig()
		retryCfg.OnRetry = resilience.RetryLogger("warehouse", "connect")
		pg, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*catalog.PostgresCatalog, error) {
			return catalog.NewPostgres(ctx, cfg.Warehouse.DatabaseURL, poolCfg)
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite":
		c, err := catalog.NewSQLite(cfg.Warehouse.SnapshotPath)
		if err != nil {
			return nil, err
		}
		if err := c.Migrate(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
		return c, nil
	default:
		return nil, eris.Errorf("unknown warehouse driver: %s", cfg.Warehouse.Driver)
	}
}
