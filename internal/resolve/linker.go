package resolve

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
)

// LinkSource is the catalog query the linker needs: given purchasing ids,
// return the purchasing ids of every account sharing a non-null Firefly id.
type LinkSource interface {
	LinkedPurchaseIDs(ctx context.Context, ampID int64) ([]int64, error)
	LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error)
}

// Linker resolves an AMP customer id to its sibling ids. The three identifier
// spaces on dim_account are populated independently, so purchasing data for a
// physical customer may sit under a different AMP id than the one on the row
// the user selected; expanding through the shared Firefly id is what keeps
// that history from silently appearing empty.
type Linker struct {
	src LinkSource
}

// NewLinker creates a Linker over the given catalog.
func NewLinker(src LinkSource) *Linker {
	return &Linker{src: src}
}

// Expand returns every AMP customer id linked to ampID, sorted ascending.
//
// An account with no Firefly id on record expands to exactly {ampID}; an id
// with no master row at all expands to the empty set without error. The
// input id is included whenever its row exists, since an account trivially
// shares its own Firefly id.
func (l *Linker) Expand(ctx context.Context, ampID int64) ([]int64, error) {
	if ampID == 0 {
		return nil, nil
	}
	ids, err := l.src.LinkedPurchaseIDs(ctx, ampID)
	if err != nil {
		return nil, eris.Wrapf(err, "linker: expand %d", ampID)
	}
	return dedupeSorted(ids), nil
}

// ExpandAll expands a whole batch in one linkage query. The result maps each
// input id to its sorted sibling set; ids with no master row are absent from
// the map. The 0 sentinel is dropped from the input, never queried.
func (l *Linker) ExpandAll(ctx context.Context, ampIDs []int64) (map[int64][]int64, error) {
	ids := make([]int64, 0, len(ampIDs))
	seen := make(map[int64]bool, len(ampIDs))
	for _, id := range ampIDs {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[int64][]int64{}, nil
	}

	expanded, err := l.src.LinkedPurchaseIDsBulk(ctx, ids)
	if err != nil {
		return nil, eris.Wrap(err, "linker: expand batch")
	}
	for id, sibs := range expanded {
		expanded[id] = dedupeSorted(sibs)
	}
	return expanded, nil
}

func dedupeSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
