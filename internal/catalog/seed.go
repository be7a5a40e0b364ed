package catalog

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/SonAcx/Customer360/internal/db"
	"github.com/SonAcx/Customer360/internal/resolve"
)

// Snapshot is a YAML warehouse fixture for the seed command. AMP ids are
// declared as raw strings so fixtures can carry the same messy forms the
// warehouse does ("4471", "4471.0", "0"); they pass through ParseAMPID on
// import.
type Snapshot struct {
	Accounts  []SnapshotAccount  `yaml:"accounts"`
	Pipeline  []SnapshotPipeline `yaml:"pipeline_activity"`
	Purchases []SnapshotPurchase `yaml:"purchases"`
	History   []SnapshotEvent    `yaml:"history"`
}

// SnapshotAccount is one dim_account fixture row.
type SnapshotAccount struct {
	AccountUUID        string `yaml:"account_uuid"`
	SFAccountID        string `yaml:"sf_account_id"`
	AMPCustomerID      string `yaml:"amp_customer_id"`
	FireflyID          string `yaml:"ff_id"`
	Name               string `yaml:"name"`
	Address            string `yaml:"address"`
	City               string `yaml:"city"`
	State              string `yaml:"state"`
	Zip                string `yaml:"zip"`
	AccountType        string `yaml:"account_type"`
	PrimaryEmployee    string `yaml:"primary_employee"`
	PrimaryDistributor string `yaml:"primary_distributor"`
	LLO                string `yaml:"llo"`
	Market             string `yaml:"market"`
	Zone               string `yaml:"zone"`
}

// SnapshotPipeline is one dim_product_activity fixture row.
type SnapshotPipeline struct {
	AccountOperatorUUID string     `yaml:"account_operator_uuid"`
	StartDate           *time.Time `yaml:"start_date"`
	EndDate             *time.Time `yaml:"end_date"`
	ActivityStatus      string     `yaml:"activity_status"`
	ProductName         string     `yaml:"product_name"`
	ProductSKU          string     `yaml:"product_sku"`
	ProductPack         string     `yaml:"product_pack"`
	ClientName          string     `yaml:"client_name"`
	ProductCategory     string     `yaml:"product_category"`
	PipelineStage       string     `yaml:"pipeline_stage"`
	ProductStatus       string     `yaml:"product_status"`
	Quantity            float64    `yaml:"quantity"`
	NextSteps           string     `yaml:"next_steps"`
}

// SnapshotPurchase is one fact_amp_purchase_data fixture row.
type SnapshotPurchase struct {
	AMPCustomerID    string  `yaml:"amp_customer_id"`
	ManufacturerUUID string  `yaml:"manufacturer_uuid"`
	Distributor      string  `yaml:"distributor"`
	DistCode         string  `yaml:"dist_code"`
	ItemID           string  `yaml:"item_id"`
	SKU              string  `yaml:"sku"`
	ProductName      string  `yaml:"product_name"`
	Category         string  `yaml:"category"`
	SubCategory      string  `yaml:"sub_category"`
	Period           string  `yaml:"period"`
	UOM              string  `yaml:"uom"`
	QtyCurrent       float64 `yaml:"qty_current"`
	QtyMago2         float64 `yaml:"mago_2"`
	QtyMago3         float64 `yaml:"mago_3"`
	QtyMago4         float64 `yaml:"mago_4"`
	QtyMago5         float64 `yaml:"mago_5"`
	QtyMago6         float64 `yaml:"mago_6"`
	QtyYTD           float64 `yaml:"ytd"`
	QtyLYM           float64 `yaml:"lym"`
	QtyLYTD          float64 `yaml:"lytd"`
}

// SnapshotEvent is one account_history fixture row.
type SnapshotEvent struct {
	AccountUUID string    `yaml:"account_uuid"`
	EventDate   time.Time `yaml:"event_date"`
	EventType   string    `yaml:"event_type"`
	FieldName   string    `yaml:"field_name"`
	OldValue    string    `yaml:"old_value"`
	NewValue    string    `yaml:"new_value"`
	ChangedBy   string    `yaml:"changed_by"`
}

// LoadSnapshot reads and parses a YAML snapshot fixture.
func LoadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return nil, eris.Wrapf(err, "seed: parse %s", path)
	}
	return &snap, nil
}

// nullable maps "" to nil so fixture blanks become SQL NULLs.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Import loads a snapshot into the SQLite catalog inside one transaction.
func (c *SQLiteCatalog) Import(ctx context.Context, snap *Snapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "seed: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, a := range snap.Accounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_account
			 (account_uuid, sf_account_id, amp_customer_id, ff_id, name, address,
			  city, state, zip, account_type, primary_employee, primary_distributor,
			  llo, market, zone)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.AccountUUID, nullable(a.SFAccountID), ampIDValue(a.AMPCustomerID),
			nullable(a.FireflyID), nullable(a.Name), nullable(a.Address),
			nullable(a.City), nullable(a.State), nullable(a.Zip),
			nullable(a.AccountType), nullable(a.PrimaryEmployee),
			nullable(a.PrimaryDistributor), nullable(a.LLO),
			nullable(a.Market), nullable(a.Zone),
		); err != nil {
			return eris.Wrapf(err, "seed: insert account %s", a.AccountUUID)
		}
	}

	for _, p := range snap.Pipeline {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_product_activity
			 (account_operator_uuid, start_date, end_date, activity_status,
			  product_name, product_sku, product_pack, client_name,
			  product_category, pipeline_stage, product_status, quantity, next_steps)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.AccountOperatorUUID, p.StartDate, p.EndDate,
			nullable(p.ActivityStatus), nullable(p.ProductName),
			nullable(p.ProductSKU), nullable(p.ProductPack),
			nullable(p.ClientName), nullable(p.ProductCategory),
			nullable(p.PipelineStage), nullable(p.ProductStatus),
			p.Quantity, nullable(p.NextSteps),
		); err != nil {
			return eris.Wrapf(err, "seed: insert pipeline activity for %s", p.AccountOperatorUUID)
		}
	}

	for _, r := range snap.Purchases {
		id := resolve.ParseAMPID(r.AMPCustomerID)
		if id == nil {
			return eris.Errorf("seed: purchase row has no valid amp_customer_id: %q", r.AMPCustomerID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fact_amp_purchase_data
			 (amp_customer_id, manufacturer_uuid, distributor, dist_code, item_id,
			  sku, product_name, category, sub_category, period, uom,
			  qty_current, mago_2, mago_3, mago_4, mago_5, mago_6, ytd, lym, lytd)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			*id, nullable(r.ManufacturerUUID), nullable(r.Distributor),
			nullable(r.DistCode), nullable(r.ItemID), nullable(r.SKU),
			nullable(r.ProductName), nullable(r.Category), nullable(r.SubCategory),
			nullable(r.Period), nullable(r.UOM),
			r.QtyCurrent, r.QtyMago2, r.QtyMago3, r.QtyMago4, r.QtyMago5,
			r.QtyMago6, r.QtyYTD, r.QtyLYM, r.QtyLYTD,
		); err != nil {
			return eris.Wrapf(err, "seed: insert purchase row for %s", r.AMPCustomerID)
		}
	}

	for _, e := range snap.History {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO account_history
			 (account_uuid, event_date, event_type, field_name, old_value, new_value, changed_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.AccountUUID, e.EventDate, nullable(e.EventType),
			nullable(e.FieldName), nullable(e.OldValue), nullable(e.NewValue),
			nullable(e.ChangedBy),
		); err != nil {
			return eris.Wrapf(err, "seed: insert history event for %s", e.AccountUUID)
		}
	}

	return eris.Wrap(tx.Commit(), "seed: commit")
}

// ampIDValue converts a raw fixture AMP id to a bind value, NULL when absent
// or malformed.
func ampIDValue(raw string) any {
	if id := resolve.ParseAMPID(raw); id != nil {
		return *id
	}
	return nil
}

// ImportPostgres loads a snapshot into a scratch Postgres warehouse. Accounts
// go through an upsert so a re-seed refreshes the dimension in place; the
// activity and history feeds are append-only and use the COPY protocol. Meant
// for integration environments; the production warehouse is read-only to this
// service.
func ImportPostgres(ctx context.Context, pool db.Pool, snap *Snapshot) error {
	accountRows := make([][]any, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accountRows = append(accountRows, []any{
			a.AccountUUID, nullable(a.SFAccountID), ampIDValue(a.AMPCustomerID),
			nullable(a.FireflyID), nullable(a.Name), nullable(a.Address),
			nullable(a.City), nullable(a.State), nullable(a.Zip),
			nullable(a.AccountType), nullable(a.PrimaryEmployee),
			nullable(a.PrimaryDistributor), nullable(a.LLO),
			nullable(a.Market), nullable(a.Zone),
		})
	}
	if _, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table: "dwh.dim_account",
		Columns: []string{"account_uuid", "sf_account_id", "amp_customer_id", "ff_id",
			"name", "address", "city", "state", "zip", "account_type",
			"primary_employee", "primary_distributor", "llo", "market", "zone"},
		ConflictKeys: []string{"account_uuid"},
	}, accountRows); err != nil {
		return eris.Wrap(err, "seed: upsert dim_account")
	}

	pipelineRows := make([][]any, 0, len(snap.Pipeline))
	for _, p := range snap.Pipeline {
		pipelineRows = append(pipelineRows, []any{
			p.AccountOperatorUUID, p.StartDate, p.EndDate,
			nullable(p.ActivityStatus), nullable(p.ProductName),
			nullable(p.ProductSKU), nullable(p.ProductPack),
			nullable(p.ClientName), nullable(p.ProductCategory),
			nullable(p.PipelineStage), nullable(p.ProductStatus),
			p.Quantity, nullable(p.NextSteps),
		})
	}
	if _, err := db.CopyFromSchema(ctx, pool, "dwh", "dim_product_activity",
		[]string{"account_operator_uuid", "start_date", "end_date",
			"activity_status", "product_name", "product_sku", "product_pack",
			"client_name", "product_category", "pipeline_stage",
			"product_status", "quantity", "next_steps"},
		pipelineRows); err != nil {
		return eris.Wrap(err, "seed: copy dim_product_activity")
	}

	purchaseRows := make([][]any, 0, len(snap.Purchases))
	for _, r := range snap.Purchases {
		id := resolve.ParseAMPID(r.AMPCustomerID)
		if id == nil {
			return eris.Errorf("seed: purchase row has no valid amp_customer_id: %q", r.AMPCustomerID)
		}
		purchaseRows = append(purchaseRows, []any{
			*id, nullable(r.ManufacturerUUID), nullable(r.Distributor),
			nullable(r.DistCode), nullable(r.ItemID), nullable(r.SKU),
			nullable(r.ProductName), nullable(r.Category), nullable(r.SubCategory),
			nullable(r.Period), nullable(r.UOM),
			r.QtyCurrent, r.QtyMago2, r.QtyMago3, r.QtyMago4, r.QtyMago5,
			r.QtyMago6, r.QtyYTD, r.QtyLYM, r.QtyLYTD,
		})
	}
	if _, err := db.CopyFromSchema(ctx, pool, "dwh", "fact_amp_purchase_data",
		[]string{"amp_customer_id", "manufacturer_uuid", "distributor",
			"dist_code", "item_id", "sku", "product_name", "category",
			"sub_category", "period", "uom", "qty_current", "mago_2", "mago_3",
			"mago_4", "mago_5", "mago_6", "ytd", "lym", "lytd"},
		purchaseRows); err != nil {
		return eris.Wrap(err, "seed: copy fact_amp_purchase_data")
	}

	historyRows := make([][]any, 0, len(snap.History))
	for _, e := range snap.History {
		historyRows = append(historyRows, []any{
			e.AccountUUID, e.EventDate, nullable(e.EventType),
			nullable(e.FieldName), nullable(e.OldValue), nullable(e.NewValue),
			nullable(e.ChangedBy),
		})
	}
	if _, err := db.CopyFromSchema(ctx, pool, "dwh", "account_history",
		[]string{"account_uuid", "event_date", "event_type", "field_name",
			"old_value", "new_value", "changed_by"},
		historyRows); err != nil {
		return eris.Wrap(err, "seed: copy account_history")
	}

	return nil
}
