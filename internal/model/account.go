package model

// Account is one row of the warehouse customer master (dim_account).
//
// None of the three identifiers is guaranteed present. Absent text
// identifiers are the empty string; an absent AMP customer id is nil. The
// warehouse historically stores 0 as a "missing" AMP id, so the catalog
// scanners and the resolve package normalize 0 to nil before anything else
// sees the value.
type Account struct {
	AccountUUID   string `json:"account_uuid"`
	SFAccountID   string `json:"sf_account_id,omitempty"`
	AMPCustomerID *int64 `json:"amp_customer_id,omitempty"`
	FireflyID     string `json:"firefly_id,omitempty"`

	Name               string `json:"name,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	State              string `json:"state,omitempty"`
	Zip                string `json:"zip,omitempty"`
	AccountType        string `json:"account_type,omitempty"`
	PrimaryEmployee    string `json:"primary_employee,omitempty"`
	PrimaryDistributor string `json:"primary_distributor,omitempty"`
	LLO                string `json:"llo,omitempty"`
	Market             string `json:"market,omitempty"`
	Zone               string `json:"zone,omitempty"`
}

// HasSFAccountID reports whether the account carries a CRM identifier.
func (a Account) HasSFAccountID() bool { return a.SFAccountID != "" }

// HasAMPCustomerID reports whether the account carries a real purchasing
// identifier (nil and the legacy 0 sentinel both count as absent).
func (a Account) HasAMPCustomerID() bool { return a.AMPCustomerID != nil && *a.AMPCustomerID != 0 }

// HasFireflyID reports whether the account carries a Firefly link id.
func (a Account) HasFireflyID() bool { return a.FireflyID != "" }

// Presence records which activity feeds have at least one row for an
// identifier. It does not distinguish "no activity" from "identifier could
// not be resolved"; both read as false.
type Presence struct {
	HasPipeline bool `json:"has_pipeline_activity"`
	HasPurchase bool `json:"has_purchase_activity"`
}

// PresenceMap maps a displayed identifier string to its activity flags. It is
// built fresh for each visible page of results and never cached.
type PresenceMap map[string]Presence

// FilterOption is one distinct (city, state) pair from the customer master,
// used to populate the search pick-lists.
type FilterOption struct {
	City  string `json:"city"`
	State string `json:"state"`
}
