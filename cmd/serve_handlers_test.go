package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/SonAcx/Customer360/internal/catalog"
	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/search"
)

// stubCatalog is an in-memory warehouse for handler tests.
type stubCatalog struct {
	catalog.Catalog

	accounts map[string]model.Account
	findErr  error

	pipeline  map[string]bool
	purchases map[int64]int64
	links     map[int64][]int64

	pipelineRows []model.PipelineActivity
	purchaseRows []model.PurchaseRow
	history      []model.HistoryEvent
	options      []model.FilterOption
}

func (s *stubCatalog) FindAccounts(ctx context.Context, f catalog.AccountFilter) ([]model.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []model.Account
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubCatalog) GetAccount(ctx context.Context, accountUUID string) (*model.Account, error) {
	a, ok := s.accounts[accountUUID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *stubCatalog) FilterOptions(ctx context.Context) ([]model.FilterOption, error) {
	return s.options, nil
}

func (s *stubCatalog) PipelineActivityExists(ctx context.Context, sfIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range sfIDs {
		if s.pipeline[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (s *stubCatalog) PurchaseActivityExists(ctx context.Context, ampIDs []int64) (map[int64]int64, error) {
	out := map[int64]int64{}
	for _, id := range ampIDs {
		if n := s.purchases[id]; n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (s *stubCatalog) LinkedPurchaseIDs(ctx context.Context, ampID int64) ([]int64, error) {
	return s.links[ampID], nil
}

func (s *stubCatalog) LinkedPurchaseIDsBulk(ctx context.Context, ampIDs []int64) (map[int64][]int64, error) {
	out := map[int64][]int64{}
	for _, id := range ampIDs {
		if sibs, ok := s.links[id]; ok {
			out[id] = sibs
		}
	}
	return out, nil
}

func (s *stubCatalog) PipelineActivityDetail(ctx context.Context, sfID string) ([]model.PipelineActivity, error) {
	return s.pipelineRows, nil
}

func (s *stubCatalog) PurchaseActivityDetail(ctx context.Context, ampIDs []int64) ([]model.PurchaseRow, error) {
	return s.purchaseRows, nil
}

func (s *stubCatalog) AccountHistory(ctx context.Context, accountUUID string) ([]model.HistoryEvent, error) {
	return s.history, nil
}

func newTestServer(t *testing.T, cat *stubCatalog) *httptest.Server {
	t.Helper()
	svc := search.New(cat, 50, 2)
	opts := catalog.NewFilterOptionsCache(cat, time.Hour)
	limiter := rate.NewLimiter(rate.Inf, 0)
	srv := httptest.NewServer(buildRouter(cat, svc, opts, limiter, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func linkedAccount() model.Account {
	amp := int64(100)
	return model.Account{
		AccountUUID:   "u1",
		SFAccountID:   "SF1",
		AMPCustomerID: &amp,
		FireflyID:     "FF1",
		Name:          "Joe's Diner",
		City:          "Austin",
		State:         "TX",
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{})

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestSearchAccounts(t *testing.T) {
	cat := &stubCatalog{
		accounts:  map[string]model.Account{"u1": linkedAccount()},
		pipeline:  map[string]bool{"SF1": true},
		links:     map[int64][]int64{100: {100}},
		purchases: map[int64]int64{100: 3},
	}
	srv := newTestServer(t, cat)

	var body search.Result
	status := getJSON(t, srv.URL+"/api/accounts?name=joe", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, "Joe's Diner", body.Accounts[0].Name)
	assert.True(t, body.Presence["SF1"].HasPipeline)
	assert.True(t, body.Presence["100"].HasPurchase)
}

func TestSearchAccounts_FilterRequired(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{})

	var body map[string]string
	status := getJSON(t, srv.URL+"/api/accounts?name=j", &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestSearchAccounts_WarehouseError(t *testing.T) {
	cat := &stubCatalog{findErr: errors.New("connection refused")}
	srv := newTestServer(t, cat)

	status := getJSON(t, srv.URL+"/api/accounts?name=joe", nil)
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestAccountDetail(t *testing.T) {
	cat := &stubCatalog{accounts: map[string]model.Account{"u1": linkedAccount()}}
	srv := newTestServer(t, cat)

	var body model.Account
	status := getJSON(t, srv.URL+"/api/accounts/u1", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Joe's Diner", body.Name)
}

func TestAccountDetail_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{})

	status := getJSON(t, srv.URL+"/api/accounts/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPipelineDetail(t *testing.T) {
	cat := &stubCatalog{
		accounts:     map[string]model.Account{"u1": linkedAccount()},
		pipelineRows: []model.PipelineActivity{{ProductName: "Widget"}},
	}
	srv := newTestServer(t, cat)

	var body struct {
		Activities []model.PipelineActivity `json:"activities"`
	}
	status := getJSON(t, srv.URL+"/api/accounts/u1/pipeline", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Activities, 1)
	assert.Equal(t, "Widget", body.Activities[0].ProductName)
}

func TestPurchaseDetail(t *testing.T) {
	cat := &stubCatalog{
		accounts:     map[string]model.Account{"u1": linkedAccount()},
		links:        map[int64][]int64{100: {100, 200}},
		purchaseRows: []model.PurchaseRow{{AMPCustomerID: 200, ProductName: "Widget"}},
	}
	srv := newTestServer(t, cat)

	var body struct {
		Purchases []model.PurchaseRow `json:"purchases"`
	}
	status := getJSON(t, srv.URL+"/api/accounts/u1/purchases", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Purchases, 1)
	assert.Equal(t, int64(200), body.Purchases[0].AMPCustomerID)
}

func TestPurchaseDetail_NoAMPID(t *testing.T) {
	a := linkedAccount()
	a.AMPCustomerID = nil
	cat := &stubCatalog{accounts: map[string]model.Account{"u1": a}}
	srv := newTestServer(t, cat)

	var body struct {
		Purchases []model.PurchaseRow `json:"purchases"`
	}
	status := getJSON(t, srv.URL+"/api/accounts/u1/purchases", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body.Purchases)
	assert.Empty(t, body.Purchases)
}

func TestAccountHistory(t *testing.T) {
	cat := &stubCatalog{
		accounts: map[string]model.Account{"u1": linkedAccount()},
		history:  []model.HistoryEvent{{EventType: "update", ChangedBy: "jane"}},
	}
	srv := newTestServer(t, cat)

	var body struct {
		Events []model.HistoryEvent `json:"events"`
	}
	status := getJSON(t, srv.URL+"/api/accounts/u1/history", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "jane", body.Events[0].ChangedBy)
}

func TestFilterOptionsEndpoint(t *testing.T) {
	cat := &stubCatalog{options: []model.FilterOption{{City: "Austin", State: "TX"}}}
	srv := newTestServer(t, cat)

	var body struct {
		Options []model.FilterOption `json:"options"`
	}
	status := getJSON(t, srv.URL+"/api/filters", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Options, 1)
	assert.Equal(t, "Austin", body.Options[0].City)
}

func TestRateLimit(t *testing.T) {
	cat := &stubCatalog{options: []model.FilterOption{}}
	svc := search.New(cat, 50, 2)
	opts := catalog.NewFilterOptionsCache(cat, time.Hour)
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	srv := httptest.NewServer(buildRouter(cat, svc, opts, limiter, []string{"*"}))
	t.Cleanup(srv.Close)

	status := getJSON(t, srv.URL+"/api/filters", nil)
	assert.Equal(t, http.StatusOK, status)

	status = getJSON(t, srv.URL+"/api/filters", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)

	// /health stays reachable when the API budget is spent.
	status = getJSON(t, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
}
