package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/SonAcx/Customer360/internal/db"
	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/resolve"
)

// PostgresCatalog implements Catalog against the production warehouse using
// pgxpool. All access is read-only.
type PostgresCatalog struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresCatalog with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresCatalog, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresCatalog{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for the snapshot seeder.
func (c *PostgresCatalog) Pool() db.Pool {
	return c.pool
}

func (c *PostgresCatalog) Ping(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (c *PostgresCatalog) Close() error {
	if c.closeFn != nil {
		c.closeFn()
	}
	return nil
}

// accountColumns is the SELECT list shared by every account query. Text
// columns coalesce to "" so absence has one representation; the AMP id stays
// nullable and is canonicalized after scan.
const accountColumns = `account_uuid,
	COALESCE(sf_account_id, ''),
	amp_customer_id,
	COALESCE(ff_id, ''),
	COALESCE(name, ''),
	COALESCE(address, ''),
	COALESCE(city, ''),
	COALESCE(state, ''),
	COALESCE(zip, ''),
	COALESCE(account_type, ''),
	COALESCE(primary_employee, ''),
	COALESCE(primary_distributor, ''),
	COALESCE(llo, ''),
	COALESCE(market, ''),
	COALESCE(zone, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (model.Account, error) {
	var a model.Account
	var amp *int64
	err := s.Scan(&a.AccountUUID, &a.SFAccountID, &amp, &a.FireflyID,
		&a.Name, &a.Address, &a.City, &a.State, &a.Zip,
		&a.AccountType, &a.PrimaryEmployee, &a.PrimaryDistributor,
		&a.LLO, &a.Market, &a.Zone)
	if err != nil {
		return model.Account{}, err
	}
	a.AMPCustomerID = resolve.CanonicalAMPID(amp)
	return a, nil
}

func (c *PostgresCatalog) FindAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM dwh.dim_account WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Name != "" {
		query += fmt.Sprintf(` AND LOWER(name) LIKE $%d`, argIdx)
		args = append(args, "%"+toLowerTrim(filter.Name)+"%")
		argIdx++
	}
	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(` AND state = $%d`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	query += ` ORDER BY name`

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan account")
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "postgres: find accounts iterate")
}

func (c *PostgresCatalog) GetAccount(ctx context.Context, accountUUID string) (*model.Account, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM dwh.dim_account WHERE account_uuid = $1`,
		accountUUID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get account %s", accountUUID)
	}
	return &a, nil
}

func (c *PostgresCatalog) FilterOptions(ctx context.Context) ([]model.FilterOption, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT DISTINCT city, state
		 FROM dwh.dim_account
		 WHERE (ff_id IS NOT NULL OR sf_account_id IS NOT NULL OR amp_customer_id IS NOT NULL)
		   AND city IS NOT NULL AND state IS NOT NULL
		 ORDER BY state, city`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: filter options")
	}
	defer rows.Close()

	var opts []model.FilterOption
	for rows.Next() {
		var o model.FilterOption
		if err := rows.Scan(&o.City, &o.State); err != nil {
			return nil, eris.Wrap(err, "postgres: scan filter option")
		}
		opts = append(opts, o)
	}
	return opts, eris.Wrap(rows.Err(), "postgres: filter options iterate")
}

func (c *PostgresCatalog) PipelineActivityExists(ctx context.Context, sfIDs []string) (map[string]bool, error) {
	if len(sfIDs) == 0 {
		return map[string]bool{}, nil
	}

	rows, err := c.pool.Query(ctx,
		`SELECT DISTINCT a.sf_account_id
		 FROM dwh.dim_account a
		 JOIN dwh.dim_product_activity p ON p.account_operator_uuid = a.account_uuid
		 WHERE a.sf_account_id = ANY($1)`,
		sfIDs,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: pipeline activity exists")
	}
	defer rows.Close()

	has := make(map[string]bool, len(sfIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pipeline existence")
		}
		has[id] = true
	}
	return has, eris.Wrap(rows.Err(), "postgres: pipeline existence iterate")
}

func (c *PostgresCatalog) PurchaseActivityExists(ctx context.Context, ampIDs []int64) (map[int64]int64, error) {
	if len(ampIDs) == 0 {
		return map[int64]int64{}, nil
	}

	rows, err := c.pool.Query(ctx,
		`SELECT amp_customer_id, COUNT(*)
		 FROM dwh.fact_amp_purchase_data
		 WHERE amp_customer_id = ANY($1)
		 GROUP BY amp_customer_id`,
		ampIDs,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: purchase activity exists")
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(ampIDs))
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan purchase count")
		}
		counts[id] = n
	}
	return counts, eris.Wrap(rows.Err(), "postgres: purchase existence iterate")
}

// linkageJoin expands AMP ids through the shared ff_id. The LEFT JOIN keeps
// accounts without a Firefly id (they expand to themselves via COALESCE);
// ids with no master row produce no rows at all.
const linkageJoin = `FROM dwh.dim_account a
	 LEFT JOIN dwh.dim_account b
	   ON b.ff_id = a.ff_id
	  AND a.ff_id IS NOT NULL
	  AND b.amp_customer_id IS NOT NULL
	  AND b.amp_customer_id <> 0`

func (c *PostgresCatalog) LinkedPurchaseIDs(ctx context.Context, ampID int64) ([]int64, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT DISTINCT COALESCE(b.amp_customer_id, a.amp_customer_id)
		 `+linkageJoin+`
		 WHERE a.amp_customer_id = $1`,
		ampID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: linked purchase ids %d", ampID)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan linked id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: linked ids iterate")
}

func (c *PostgresCatalog) LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error) {
	if len(ampIDs) == 0 {
		return map[int64][]int64{}, nil
	}

	rows, err := c.pool.Query(ctx,
		`SELECT DISTINCT a.amp_customer_id, COALESCE(b.amp_customer_id, a.amp_customer_id)
		 `+linkageJoin+`
		 WHERE a.amp_customer_id = ANY($1)`,
		ampIDs,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: linked purchase ids bulk")
	}
	defer rows.Close()

	expanded := make(map[int64][]int64, len(ampIDs))
	for rows.Next() {
		var orig, sibling int64
		if err := rows.Scan(&orig, &sibling); err != nil {
			return nil, eris.Wrap(err, "postgres: scan linked pair")
		}
		expanded[orig] = append(expanded[orig], sibling)
	}
	return expanded, eris.Wrap(rows.Err(), "postgres: linked ids bulk iterate")
}

func (c *PostgresCatalog) PipelineActivityDetail(ctx context.Context, sfID string) ([]model.PipelineActivity, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT p.start_date, p.end_date,
		        COALESCE(p.activity_status, ''),
		        COALESCE(p.product_name, ''),
		        COALESCE(p.product_sku, ''),
		        COALESCE(p.product_pack, ''),
		        COALESCE(p.client_name, ''),
		        COALESCE(p.product_category, ''),
		        COALESCE(p.pipeline_stage, ''),
		        COALESCE(p.product_status, ''),
		        COALESCE(p.quantity, 0),
		        COALESCE(p.next_steps, '')
		 FROM dwh.dim_account a
		 JOIN dwh.dim_product_activity p ON p.account_operator_uuid = a.account_uuid
		 WHERE a.sf_account_id = $1
		 ORDER BY p.start_date DESC`,
		sfID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: pipeline activity detail %s", sfID)
	}
	defer rows.Close()

	var acts []model.PipelineActivity
	for rows.Next() {
		var p model.PipelineActivity
		if err := rows.Scan(&p.StartDate, &p.EndDate, &p.ActivityStatus,
			&p.ProductName, &p.ProductSKU, &p.ProductPack, &p.ClientName,
			&p.ProductCategory, &p.PipelineStage, &p.ProductStatus,
			&p.Quantity, &p.NextSteps); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pipeline activity")
		}
		acts = append(acts, p)
	}
	return acts, eris.Wrap(rows.Err(), "postgres: pipeline detail iterate")
}

func (c *PostgresCatalog) PurchaseActivityDetail(ctx context.Context, ampIDs []int64) ([]model.PurchaseRow, error) {
	if len(ampIDs) == 0 {
		return nil, nil
	}

	rows, err := c.pool.Query(ctx,
		`SELECT f.amp_customer_id,
		        COALESCE(cust.name, ''),
		        COALESCE(mfr.name, ''),
		        COALESCE(f.distributor, ''),
		        COALESCE(f.dist_code, ''),
		        COALESCE(f.item_id, ''),
		        COALESCE(f.sku, ''),
		        COALESCE(f.product_name, ''),
		        COALESCE(f.category, ''),
		        COALESCE(f.sub_category, ''),
		        COALESCE(f.period, ''),
		        COALESCE(f.uom, ''),
		        COALESCE(f.qty_current, 0),
		        COALESCE(f.mago_2, 0), COALESCE(f.mago_3, 0),
		        COALESCE(f.mago_4, 0), COALESCE(f.mago_5, 0),
		        COALESCE(f.mago_6, 0),
		        COALESCE(f.ytd, 0), COALESCE(f.lym, 0), COALESCE(f.lytd, 0)
		 FROM dwh.fact_amp_purchase_data f
		 LEFT JOIN dwh.dim_account cust ON cust.amp_customer_id = f.amp_customer_id
		 LEFT JOIN dwh.dim_account mfr ON mfr.account_uuid = f.manufacturer_uuid
		 WHERE f.amp_customer_id = ANY($1)
		 ORDER BY f.period DESC`,
		ampIDs,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: purchase activity detail")
	}
	defer rows.Close()

	var purchases []model.PurchaseRow
	for rows.Next() {
		var r model.PurchaseRow
		if err := rows.Scan(&r.AMPCustomerID, &r.CustomerName, &r.ManufacturerName,
			&r.Distributor, &r.DistCode, &r.ItemID, &r.SKU, &r.ProductName,
			&r.Category, &r.SubCategory, &r.Period, &r.UOM,
			&r.QtyCurrent, &r.QtyMago2, &r.QtyMago3, &r.QtyMago4, &r.QtyMago5,
			&r.QtyMago6, &r.QtyYTD, &r.QtyLYM, &r.QtyLYTD); err != nil {
			return nil, eris.Wrap(err, "postgres: scan purchase row")
		}
		purchases = append(purchases, r)
	}
	return purchases, eris.Wrap(rows.Err(), "postgres: purchase detail iterate")
}

func (c *PostgresCatalog) AccountHistory(ctx context.Context, accountUUID string) ([]model.HistoryEvent, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT event_date,
		        COALESCE(event_type, ''),
		        COALESCE(field_name, ''),
		        COALESCE(old_value, ''),
		        COALESCE(new_value, ''),
		        COALESCE(changed_by, '')
		 FROM dwh.account_history
		 WHERE account_uuid = $1
		 ORDER BY event_date DESC
		 LIMIT 100`,
		accountUUID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: account history %s", accountUUID)
	}
	defer rows.Close()

	var events []model.HistoryEvent
	for rows.Next() {
		var e model.HistoryEvent
		if err := rows.Scan(&e.EventDate, &e.EventType, &e.FieldName,
			&e.OldValue, &e.NewValue, &e.ChangedBy); err != nil {
			return nil, eris.Wrap(err, "postgres: scan history event")
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "postgres: account history iterate")
}
