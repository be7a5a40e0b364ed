package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSeededSQLite builds a snapshot catalog with two accounts linked through
// a shared Firefly id, one unlinked account, and activity in both feeds.
func newSeededSQLite(t *testing.T) *SQLiteCatalog {
	t.Helper()

	c, err := NewSQLite(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() }) //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, c.Migrate(ctx))

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		Accounts: []SnapshotAccount{
			{AccountUUID: "u1", SFAccountID: "SF1", AMPCustomerID: "100", FireflyID: "FF1",
				Name: "Joe's Diner", City: "Austin", State: "TX"},
			{AccountUUID: "u2", SFAccountID: "", AMPCustomerID: "200.0", FireflyID: "FF1",
				Name: "Joes Diner LLC", City: "Austin", State: "TX"},
			{AccountUUID: "u3", SFAccountID: "SF3", AMPCustomerID: "0", FireflyID: "",
				Name: "Solo Cafe", City: "Dallas", State: "TX"},
		},
		Pipeline: []SnapshotPipeline{
			{AccountOperatorUUID: "u1", StartDate: &start, ActivityStatus: "Active",
				ProductName: "Widget", ProductSKU: "W-1", Quantity: 12},
		},
		Purchases: []SnapshotPurchase{
			{AMPCustomerID: "200", Distributor: "US Foods", SKU: "W-1",
				ProductName: "Widget", Period: "2026-01", QtyCurrent: 4},
		},
		History: []SnapshotEvent{
			{AccountUUID: "u1", EventDate: start, EventType: "update",
				FieldName: "primary_distributor", OldValue: "Sysco", NewValue: "US Foods", ChangedBy: "jane"},
		},
	}
	require.NoError(t, c.Import(ctx, snap))
	return c
}

func TestSQLite_FindAccounts(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.FindAccounts(context.Background(), AccountFilter{Name: "joe"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Joe's Diner", got[0].Name)
	assert.Equal(t, "Joes Diner LLC", got[1].Name)

	got, err = c.FindAccounts(context.Background(), AccountFilter{City: "Dallas", State: "TX"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Solo Cafe", got[0].Name)
}

func TestSQLite_GetAccount(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.GetAccount(context.Background(), "u2")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.AMPCustomerID, "float fixture form parses to an id")
	assert.Equal(t, int64(200), *got.AMPCustomerID)

	missing, err := c.GetAccount(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_ZeroAMPIDStoredAsNull(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.GetAccount(context.Background(), "u3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.AMPCustomerID)
}

func TestSQLite_FilterOptions(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.FilterOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Austin", got[0].City)
	assert.Equal(t, "Dallas", got[1].City)
}

func TestSQLite_PipelineActivityExists(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.PipelineActivityExists(context.Background(), []string{"SF1", "SF3"})
	require.NoError(t, err)
	assert.True(t, got["SF1"])
	assert.False(t, got["SF3"])
}

func TestSQLite_LinkedPurchaseIDs(t *testing.T) {
	c := newSeededSQLite(t)
	ctx := context.Background()

	// Shared Firefly id expands to both siblings.
	got, err := c.LinkedPurchaseIDs(ctx, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{100, 200}, got)

	// Unknown id expands to nothing.
	got, err = c.LinkedPurchaseIDs(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_LinkedPurchaseIDsBulk(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.LinkedPurchaseIDsBulk(context.Background(), []int64{100, 200, 999})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{100, 200}, got[100])
	assert.ElementsMatch(t, []int64{100, 200}, got[200])
	_, ok := got[999]
	assert.False(t, ok)
}

func TestSQLite_PurchaseActivityExists(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.PurchaseActivityExists(context.Background(), []int64{100, 200})
	require.NoError(t, err)
	assert.Zero(t, got[100])
	assert.Equal(t, int64(1), got[200])
}

func TestSQLite_PurchaseActivityDetail(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.PurchaseActivityDetail(context.Background(), []int64{100, 200})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(200), got[0].AMPCustomerID)
	assert.Equal(t, "Joes Diner LLC", got[0].CustomerName)
	assert.Equal(t, 4.0, got[0].QtyCurrent)
}

func TestSQLite_PipelineActivityDetail(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.PipelineActivityDetail(context.Background(), "SF1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Widget", got[0].ProductName)
	assert.Equal(t, 12.0, got[0].Quantity)
}

func TestSQLite_AccountHistory(t *testing.T) {
	c := newSeededSQLite(t)

	got, err := c.AccountHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "US Foods", got[0].NewValue)

	empty, err := c.AccountHistory(context.Background(), "u3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
