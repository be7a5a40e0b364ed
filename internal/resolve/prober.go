package resolve

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/SonAcx/Customer360/internal/model"
)

// ActivitySource is the catalog surface the prober needs: batched existence
// checks against both activity feeds plus the bulk linkage query.
type ActivitySource interface {
	PipelineActivityExists(ctx context.Context, sfIDs []string) (map[string]bool, error)
	PurchaseActivityExists(ctx context.Context, ampIDs []int64) (map[int64]int64, error)
	LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error)
}

// Prober annotates a page of accounts with activity-presence flags. Each
// probe issues at most three round trips regardless of batch size: one
// pipeline existence check, one linkage expansion, one purchase existence
// check. Empty partitions issue no query at all.
type Prober struct {
	src ActivitySource
}

// NewProber creates a Prober over the given catalog.
func NewProber(src ActivitySource) *Prober {
	return &Prober{src: src}
}

// Probe builds the presence map for a batch of accounts. Keys are the
// original identifier strings as displayed: each comma-joined segment of an
// SF id contributes its own key, and AMP ids key by their canonical decimal
// form. The map is keyed by what the caller showed the user, not by the
// internal sibling expansion.
//
// A catalog failure fails the whole probe; no partial map is returned.
func (p *Prober) Probe(ctx context.Context, accounts []model.Account) (model.PresenceMap, error) {
	var sfIDs []string
	var ampIDs []int64
	sfSeen := make(map[string]bool)
	ampSeen := make(map[int64]bool)

	for _, a := range accounts {
		for _, id := range SplitIDs(a.SFAccountID) {
			if !sfSeen[id] {
				sfSeen[id] = true
				sfIDs = append(sfIDs, id)
			}
		}
		if id := CanonicalAMPID(a.AMPCustomerID); id != nil && !ampSeen[*id] {
			ampSeen[*id] = true
			ampIDs = append(ampIDs, *id)
		}
	}

	out := model.PresenceMap{}

	if len(sfIDs) > 0 {
		has, err := p.src.PipelineActivityExists(ctx, sfIDs)
		if err != nil {
			return nil, eris.Wrap(err, "prober: pipeline existence")
		}
		for _, id := range sfIDs {
			mergePresence(out, id, has[id], false)
		}
	}

	if len(ampIDs) > 0 {
		expanded, err := p.src.LinkedPurchaseIDsBulk(ctx, ampIDs)
		if err != nil {
			return nil, eris.Wrap(err, "prober: linkage expansion")
		}

		var siblings []int64
		sibSeen := make(map[int64]bool)
		for _, sibs := range expanded {
			for _, s := range sibs {
				if s != 0 && !sibSeen[s] {
					sibSeen[s] = true
					siblings = append(siblings, s)
				}
			}
		}

		counts := map[int64]int64{}
		if len(siblings) > 0 {
			counts, err = p.src.PurchaseActivityExists(ctx, siblings)
			if err != nil {
				return nil, eris.Wrap(err, "prober: purchase existence")
			}
		}

		for _, id := range ampIDs {
			has := false
			for _, s := range expanded[id] {
				if counts[s] > 0 {
					has = true
					break
				}
			}
			mergePresence(out, AMPIDString(&id), false, has)
		}
	}

	return out, nil
}

// mergePresence ORs flags into the map so that a key shared by both id
// spaces keeps whichever flags either probe produced.
func mergePresence(m model.PresenceMap, key string, pipeline, purchase bool) {
	if key == "" {
		return
	}
	p := m[key]
	p.HasPipeline = p.HasPipeline || pipeline
	p.HasPurchase = p.HasPurchase || purchase
	m[key] = p
}
