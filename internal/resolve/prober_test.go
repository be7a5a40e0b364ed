package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SonAcx/Customer360/internal/model"
)

type fakeActivitySource struct {
	pipeline  map[string]bool
	links     map[int64][]int64
	purchases map[int64]int64

	pipelineErr error
	linksErr    error
	purchaseErr error

	pipelineCalls int
	linkCalls     int
	purchaseCalls int
}

func (f *fakeActivitySource) PipelineActivityExists(ctx context.Context, sfIDs []string) (map[string]bool, error) {
	f.pipelineCalls++
	if f.pipelineErr != nil {
		return nil, f.pipelineErr
	}
	out := make(map[string]bool, len(sfIDs))
	for _, id := range sfIDs {
		if f.pipeline[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeActivitySource) LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error) {
	f.linkCalls++
	if f.linksErr != nil {
		return nil, f.linksErr
	}
	out := make(map[int64][]int64, len(ampIDs))
	for _, id := range ampIDs {
		if sibs, ok := f.links[id]; ok {
			out[id] = sibs
		}
	}
	return out, nil
}

func (f *fakeActivitySource) PurchaseActivityExists(ctx context.Context, ampIDs []int64) (map[int64]int64, error) {
	f.purchaseCalls++
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	out := make(map[int64]int64, len(ampIDs))
	for _, id := range ampIDs {
		if n := f.purchases[id]; n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func acct(sfID string, ampID *int64, ffID string) model.Account {
	return model.Account{SFAccountID: sfID, AMPCustomerID: ampID, FireflyID: ffID}
}

func TestProbe_BothFeeds(t *testing.T) {
	src := &fakeActivitySource{
		pipeline:  map[string]bool{"SF1": true},
		links:     map[int64][]int64{100: {100, 200}},
		purchases: map[int64]int64{200: 7},
	}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), []model.Account{
		acct("SF1", ptr(100), "FF1"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.Presence{HasPipeline: true}, got["SF1"])
	assert.Equal(t, model.Presence{HasPurchase: true}, got["100"])
}

func TestProbe_SiblingPurchaseCounts(t *testing.T) {
	// The selected id has no purchase rows of its own; a sibling linked
	// through the shared Firefly id does.
	src := &fakeActivitySource{
		links:     map[int64][]int64{100: {100, 200}},
		purchases: map[int64]int64{200: 3},
	}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), []model.Account{acct("", ptr(100), "FF1")})
	require.NoError(t, err)
	assert.True(t, got["100"].HasPurchase)
}

func TestProbe_UnknownIDExpandsEmpty(t *testing.T) {
	src := &fakeActivitySource{
		links:     map[int64][]int64{},
		purchases: map[int64]int64{999: 5},
	}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), []model.Account{acct("", ptr(999), "")})
	require.NoError(t, err)
	assert.False(t, got["999"].HasPurchase)
	assert.Zero(t, src.purchaseCalls, "no siblings means no purchase query")
}

func TestProbe_CommaJoinedSFIDs(t *testing.T) {
	src := &fakeActivitySource{pipeline: map[string]bool{"SF2": true}}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), []model.Account{acct("SF1,SF2", nil, "")})
	require.NoError(t, err)
	assert.False(t, got["SF1"].HasPipeline)
	assert.True(t, got["SF2"].HasPipeline)
	_, joined := got["SF1,SF2"]
	assert.False(t, joined, "keys are individual segments, never the joined field")
}

func TestProbe_EmptyBatch(t *testing.T) {
	src := &fakeActivitySource{}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, src.pipelineCalls)
	assert.Zero(t, src.linkCalls)
	assert.Zero(t, src.purchaseCalls)
}

func TestProbe_ThreeRoundTrips(t *testing.T) {
	src := &fakeActivitySource{
		pipeline:  map[string]bool{"SF1": true},
		links:     map[int64][]int64{100: {100}, 200: {200}, 300: {300}},
		purchases: map[int64]int64{100: 1},
	}
	p := NewProber(src)

	accounts := []model.Account{
		acct("SF1", ptr(100), ""),
		acct("SF2,SF3", ptr(200), ""),
		acct("SF1", ptr(300), ""),
		acct("SF4", ptr(100), ""),
	}
	_, err := p.Probe(context.Background(), accounts)
	require.NoError(t, err)
	assert.Equal(t, 1, src.pipelineCalls)
	assert.Equal(t, 1, src.linkCalls)
	assert.Equal(t, 1, src.purchaseCalls)
}

func TestProbe_ZeroSentinelSkipped(t *testing.T) {
	src := &fakeActivitySource{}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), []model.Account{acct("", ptr(0), "")})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, src.linkCalls)
}

func TestProbe_SourceErrorFailsWhole(t *testing.T) {
	src := &fakeActivitySource{
		pipeline: map[string]bool{"SF1": true},
		linksErr: errors.New("timeout"),
	}
	p := NewProber(src)

	got, err := p.Probe(context.Background(), []model.Account{acct("SF1", ptr(100), "")})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "prober: linkage expansion")
}
