package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/SonAcx/Customer360/internal/model"
)

// SQLiteCatalog implements Catalog over a local warehouse snapshot using
// modernc.org/sqlite. Intended for development and demos where the shared
// warehouse is out of reach; the snapshot is loaded by the seed command.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLite opens a SQLite snapshot at the given path.
func NewSQLite(dsn string) (*SQLiteCatalog, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteCatalog{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS dim_account (
	account_uuid        TEXT PRIMARY KEY,
	sf_account_id       TEXT,
	amp_customer_id     INTEGER,
	ff_id               TEXT,
	name                TEXT,
	address             TEXT,
	city                TEXT,
	state               TEXT,
	zip                 TEXT,
	account_type        TEXT,
	primary_employee    TEXT,
	primary_distributor TEXT,
	llo                 TEXT,
	market              TEXT,
	zone                TEXT
);

CREATE TABLE IF NOT EXISTS dim_product_activity (
	account_operator_uuid TEXT NOT NULL,
	start_date            DATETIME,
	end_date              DATETIME,
	activity_status       TEXT,
	product_name          TEXT,
	product_sku           TEXT,
	product_pack          TEXT,
	client_name           TEXT,
	product_category      TEXT,
	pipeline_stage        TEXT,
	product_status        TEXT,
	quantity              REAL,
	next_steps            TEXT
);

CREATE TABLE IF NOT EXISTS fact_amp_purchase_data (
	amp_customer_id   INTEGER NOT NULL,
	manufacturer_uuid TEXT,
	distributor       TEXT,
	dist_code         TEXT,
	item_id           TEXT,
	sku               TEXT,
	product_name      TEXT,
	category          TEXT,
	sub_category      TEXT,
	period            TEXT,
	uom               TEXT,
	qty_current       REAL,
	mago_2            REAL,
	mago_3            REAL,
	mago_4            REAL,
	mago_5            REAL,
	mago_6            REAL,
	ytd               REAL,
	lym               REAL,
	lytd              REAL
);

CREATE TABLE IF NOT EXISTS account_history (
	account_uuid TEXT NOT NULL,
	event_date   DATETIME NOT NULL,
	event_type   TEXT,
	field_name   TEXT,
	old_value    TEXT,
	new_value    TEXT,
	changed_by   TEXT
);

CREATE INDEX IF NOT EXISTS idx_dim_account_name ON dim_account(name);
CREATE INDEX IF NOT EXISTS idx_dim_account_sf ON dim_account(sf_account_id);
CREATE INDEX IF NOT EXISTS idx_dim_account_amp ON dim_account(amp_customer_id);
CREATE INDEX IF NOT EXISTS idx_dim_account_ff ON dim_account(ff_id);
CREATE INDEX IF NOT EXISTS idx_product_activity_operator ON dim_product_activity(account_operator_uuid);
CREATE INDEX IF NOT EXISTS idx_purchase_amp ON fact_amp_purchase_data(amp_customer_id);
CREATE INDEX IF NOT EXISTS idx_history_account ON account_history(account_uuid);
`

// Migrate creates the snapshot schema.
func (c *SQLiteCatalog) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (c *SQLiteCatalog) Ping(ctx context.Context) error {
	return eris.Wrap(c.db.PingContext(ctx), "sqlite: ping")
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// placeholders renders "?, ?, ?" for an IN clause of n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

const sqliteAccountColumns = `account_uuid,
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

func (c *SQLiteCatalog) FindAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error) {
	query := `SELECT ` + sqliteAccountColumns + ` FROM dim_account WHERE 1=1`
	args := []any{}

	if filter.Name != "" {
		query += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+toLowerTrim(filter.Name)+"%")
	}
	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY name`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan account")
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "sqlite: find accounts iterate")
}

func (c *SQLiteCatalog) GetAccount(ctx context.Context, accountUUID string) (*model.Account, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+sqliteAccountColumns+` FROM dim_account WHERE account_uuid = ?`,
		accountUUID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get account %s", accountUUID)
	}
	return &a, nil
}

func (c *SQLiteCatalog) FilterOptions(ctx context.Context) ([]model.FilterOption, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT DISTINCT city, state
		 FROM dim_account
		 WHERE (ff_id IS NOT NULL OR sf_account_id IS NOT NULL OR amp_customer_id IS NOT NULL)
		   AND city IS NOT NULL AND state IS NOT NULL
		 ORDER BY state, city`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: filter options")
	}
	defer rows.Close()

	var opts []model.FilterOption
	for rows.Next() {
		var o model.FilterOption
		if err := rows.Scan(&o.City, &o.State); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan filter option")
		}
		opts = append(opts, o)
	}
	return opts, eris.Wrap(rows.Err(), "sqlite: filter options iterate")
}

func (c *SQLiteCatalog) PipelineActivityExists(ctx context.Context, sfIDs []string) (map[string]bool, error) {
	if len(sfIDs) == 0 {
		return map[string]bool{}, nil
	}

	args := make([]any, len(sfIDs))
	for i, id := range sfIDs {
		args[i] = id
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT DISTINCT a.sf_account_id
		 FROM dim_account a
		 JOIN dim_product_activity p ON p.account_operator_uuid = a.account_uuid
		 WHERE a.sf_account_id IN (`+placeholders(len(sfIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: pipeline activity exists")
	}
	defer rows.Close()

	has := make(map[string]bool, len(sfIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pipeline existence")
		}
		has[id] = true
	}
	return has, eris.Wrap(rows.Err(), "sqlite: pipeline existence iterate")
}

func (c *SQLiteCatalog) PurchaseActivityExists(ctx context.Context, ampIDs []int64) (map[int64]int64, error) {
	if len(ampIDs) == 0 {
		return map[int64]int64{}, nil
	}

	args := make([]any, len(ampIDs))
	for i, id := range ampIDs {
		args[i] = id
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT amp_customer_id, COUNT(*)
		 FROM fact_amp_purchase_data
		 WHERE amp_customer_id IN (`+placeholders(len(ampIDs))+`)
		 GROUP BY amp_customer_id`,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: purchase activity exists")
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(ampIDs))
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan purchase count")
		}
		counts[id] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: purchase existence iterate")
}

const sqliteLinkageJoin = `FROM dim_account a
	 LEFT JOIN dim_account b
	   ON b.ff_id = a.ff_id
	  AND a.ff_id IS NOT NULL
	  AND b.amp_customer_id IS NOT NULL
	  AND b.amp_customer_id <> 0`

func (c *SQLiteCatalog) LinkedPurchaseIDs(ctx context.Context, ampID int64) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT DISTINCT COALESCE(b.amp_customer_id, a.amp_customer_id)
		 `+sqliteLinkageJoin+`
		 WHERE a.amp_customer_id = ?`,
		ampID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: linked purchase ids %d", ampID)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan linked id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: linked ids iterate")
}

func (c *SQLiteCatalog) LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error) {
	if len(ampIDs) == 0 {
		return map[int64][]int64{}, nil
	}

	args := make([]any, len(ampIDs))
	for i, id := range ampIDs {
		args[i] = id
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT DISTINCT a.amp_customer_id, COALESCE(b.amp_customer_id, a.amp_customer_id)
		 `+sqliteLinkageJoin+`
		 WHERE a.amp_customer_id IN (`+placeholders(len(ampIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: linked purchase ids bulk")
	}
	defer rows.Close()

	expanded := make(map[int64][]int64, len(ampIDs))
	for rows.Next() {
		var orig, sibling int64
		if err := rows.Scan(&orig, &sibling); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan linked pair")
		}
		expanded[orig] = append(expanded[orig], sibling)
	}
	return expanded, eris.Wrap(rows.Err(), "sqlite: linked ids bulk iterate")
}

func (c *SQLiteCatalog) PipelineActivityDetail(ctx context.Context, sfID string) ([]model.PipelineActivity, error) {
	rows, err := c.db.QueryContext(ctx,
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
		 FROM dim_account a
		 JOIN dim_product_activity p ON p.account_operator_uuid = a.account_uuid
		 WHERE a.sf_account_id = ?
		 ORDER BY p.start_date DESC`,
		sfID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: pipeline activity detail %s", sfID)
	}
	defer rows.Close()

	var acts []model.PipelineActivity
	for rows.Next() {
		var p model.PipelineActivity
		if err := rows.Scan(&p.StartDate, &p.EndDate, &p.ActivityStatus,
			&p.ProductName, &p.ProductSKU, &p.ProductPack, &p.ClientName,
			&p.ProductCategory, &p.PipelineStage, &p.ProductStatus,
			&p.Quantity, &p.NextSteps); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pipeline activity")
		}
		acts = append(acts, p)
	}
	return acts, eris.Wrap(rows.Err(), "sqlite: pipeline detail iterate")
}

func (c *SQLiteCatalog) PurchaseActivityDetail(ctx context.Context, ampIDs []int64) ([]model.PurchaseRow, error) {
	if len(ampIDs) == 0 {
		return nil, nil
	}

	args := make([]any, len(ampIDs))
	for i, id := range ampIDs {
		args[i] = id
	}
	rows, err := c.db.QueryContext(ctx,
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
		 FROM fact_amp_purchase_data f
		 LEFT JOIN dim_account cust ON cust.amp_customer_id = f.amp_customer_id
		 LEFT JOIN dim_account mfr ON mfr.account_uuid = f.manufacturer_uuid
		 WHERE f.amp_customer_id IN (`+placeholders(len(ampIDs))+`)
		 ORDER BY f.period DESC`,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: purchase activity detail")
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
			return nil, eris.Wrap(err, "sqlite: scan purchase row")
		}
		purchases = append(purchases, r)
	}
	return purchases, eris.Wrap(rows.Err(), "sqlite: purchase detail iterate")
}

func (c *SQLiteCatalog) AccountHistory(ctx context.Context, accountUUID string) ([]model.HistoryEvent, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT event_date,
		        COALESCE(event_type, ''),
		        COALESCE(field_name, ''),
		        COALESCE(old_value, ''),
		        COALESCE(new_value, ''),
		        COALESCE(changed_by, '')
		 FROM account_history
		 WHERE account_uuid = ?
		 ORDER BY event_date DESC
		 LIMIT 100`,
		accountUUID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: account history %s", accountUUID)
	}
	defer rows.Close()

	var events []model.HistoryEvent
	for rows.Next() {
		var e model.HistoryEvent
		if err := rows.Scan(&e.EventDate, &e.EventType, &e.FieldName,
			&e.OldValue, &e.NewValue, &e.ChangedBy); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan history event")
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: account history iterate")
}
