package resolve

import (
	"sort"

	"github.com/SonAcx/Customer360/internal/model"
)

// Identifier-coverage tiers. Accounts carrying more of the three ids are
// more reliably resolvable across feeds, so they surface first.
const (
	TierFullyLinked = 1 // SF + AMP + Firefly
	TierCRMPurchase = 2 // SF + AMP
	TierCRMOnly     = 3 // SF only
	TierUnlinked    = 4 // everything else, including zero identifiers
)

// Tier returns the ranking tier for an account.
func Tier(a model.Account) int {
	switch {
	case a.HasSFAccountID() && a.HasAMPCustomerID() && a.HasFireflyID():
		return TierFullyLinked
	case a.HasSFAccountID() && a.HasAMPCustomerID():
		return TierCRMPurchase
	case a.HasSFAccountID():
		return TierCRMOnly
	default:
		return TierUnlinked
	}
}

// SortKey is the within-tier tie-break: the three ids joined with "_",
// absent segments empty. Display stability only, no semantic meaning.
func SortKey(a model.Account) string {
	return a.SFAccountID + "_" + AMPIDString(a.AMPCustomerID) + "_" + a.FireflyID
}

// Rank orders accounts by tier, then by sort key within a tier. The sort is
// stable and the input slice is left untouched.
func Rank(accounts []model.Account) []model.Account {
	out := make([]model.Account, len(accounts))
	copy(out, accounts)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := Tier(out[i]), Tier(out[j])
		if ti != tj {
			return ti < tj
		}
		return SortKey(out[i]) < SortKey(out[j])
	})
	return out
}
