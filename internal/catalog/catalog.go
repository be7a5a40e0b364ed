// Package catalog is the read-only query surface over the shared warehouse:
// the customer master, the two activity feeds, the Firefly linkage, and the
// account change history.
package catalog

import (
	"context"
	"strings"

	"github.com/SonAcx/Customer360/internal/model"
)

// AccountFilter selects rows from the customer master. Name is a
// case-insensitive substring match; City and State are exact matches when
// set. Requiring at least one filter is the caller's job, not the catalog's.
type AccountFilter struct {
	Name  string `json:"name,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// Empty reports whether the filter selects the whole table.
func (f AccountFilter) Empty() bool {
	return f.Name == "" && f.City == "" && f.State == ""
}

// Catalog defines the warehouse query contract. All batched methods accept
// empty input and return an empty result without touching the warehouse.
type Catalog interface {
	// Customer master
	FindAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error)
	GetAccount(ctx context.Context, accountUUID string) (*model.Account, error)
	FilterOptions(ctx context.Context) ([]model.FilterOption, error)

	// Activity existence (batched, one round trip each)
	PipelineActivityExists(ctx context.Context, sfIDs []string) (map[string]bool, error)
	PurchaseActivityExists(ctx context.Context, ampIDs []int64) (map[int64]int64, error)

	// Firefly linkage
	LinkedPurchaseIDs(ctx context.Context, ampID int64) ([]int64, error)
	LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error)

	// Activity detail
	PipelineActivityDetail(ctx context.Context, sfID string) ([]model.PipelineActivity, error)
	PurchaseActivityDetail(ctx context.Context, ampIDs []int64) ([]model.PurchaseRow, error)

	// Change history (most recent first, capped)
	AccountHistory(ctx context.Context, accountUUID string) ([]model.HistoryEvent, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

func toLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
