package main

import (
	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/resolve"
)

type presenceKind int

const (
	presencePipeline presenceKind = iota
	presencePurchase
)

// markID appends the activity marker to a displayed identifier when the
// presence map flags it. Multi-valued id fields are marked when any segment
// has activity.
func markID(id string, presence model.PresenceMap, kind presenceKind) string {
	if id == "" {
		return ""
	}
	if presenceFlagged(id, presence, kind) {
		return id + " ●"
	}
	return id
}

// presenceFlagged reports whether any comma-separated segment of a raw id
// field has recorded activity of the given kind.
func presenceFlagged(raw string, presence model.PresenceMap, kind presenceKind) bool {
	for _, seg := range resolve.SplitIDs(raw) {
		p, ok := presence[seg]
		if !ok {
			continue
		}
		if (kind == presencePipeline && p.HasPipeline) || (kind == presencePurchase && p.HasPurchase) {
			return true
		}
	}
	return false
}

func ampDisplay(a model.Account) string {
	return resolve.AMPIDString(a.AMPCustomerID)
}
