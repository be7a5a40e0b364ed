package model

import "time"

// PipelineActivity is one CRM product-pipeline record joined to an account
// via its operator UUID and surfaced under the account's SF id.
type PipelineActivity struct {
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	ActivityStatus  string     `json:"activity_status,omitempty"`
	ProductName     string     `json:"product_name,omitempty"`
	ProductSKU      string     `json:"product_sku,omitempty"`
	ProductPack     string     `json:"product_pack,omitempty"`
	ClientName      string     `json:"client_name,omitempty"`
	ProductCategory string     `json:"product_category,omitempty"`
	PipelineStage   string     `json:"pipeline_stage,omitempty"`
	ProductStatus   string     `json:"product_status,omitempty"`
	Quantity        float64    `json:"quantity"`
	NextSteps       string     `json:"next_steps,omitempty"`
}

// PurchaseRow is one purchasing-feed record for an AMP customer id, joined to
// the customer and manufacturer account names. The trailing-period buckets
// mirror the warehouse fact table: current month, two through six months ago,
// year to date, last-year month, and last year to date.
type PurchaseRow struct {
	AMPCustomerID    int64   `json:"amp_customer_id"`
	CustomerName     string  `json:"customer_name,omitempty"`
	ManufacturerName string  `json:"manufacturer_name,omitempty"`
	Distributor      string  `json:"distributor,omitempty"`
	DistCode         string  `json:"dist_code,omitempty"`
	ItemID           string  `json:"item_id,omitempty"`
	SKU              string  `json:"sku,omitempty"`
	ProductName      string  `json:"product_name,omitempty"`
	Category         string  `json:"category,omitempty"`
	SubCategory      string  `json:"sub_category,omitempty"`
	Period           string  `json:"period,omitempty"`
	UOM              string  `json:"uom,omitempty"`
	QtyCurrent       float64 `json:"qty_current"`
	QtyMago2         float64 `json:"qty_mago_2"`
	QtyMago3         float64 `json:"qty_mago_3"`
	QtyMago4         float64 `json:"qty_mago_4"`
	QtyMago5         float64 `json:"qty_mago_5"`
	QtyMago6         float64 `json:"qty_mago_6"`
	QtyYTD           float64 `json:"qty_ytd"`
	QtyLYM           float64 `json:"qty_lym"`
	QtyLYTD          float64 `json:"qty_lytd"`
}
