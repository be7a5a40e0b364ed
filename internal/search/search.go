// Package search orchestrates a user query end to end: filter the customer
// master, rank the matches, page the result, and probe the visible page for
// activity presence.
package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/SonAcx/Customer360/internal/catalog"
	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/resolve"
)

// Params is one search request. Page is zero-based.
type Params struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
	Page  int    `json:"page"`
}

// Result is one page of ranked, annotated matches. Presence is keyed by the
// displayed identifier strings of this page only and is rebuilt per request.
type Result struct {
	Accounts   []model.Account   `json:"accounts"`
	Presence   model.PresenceMap `json:"presence"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

// ErrFilterRequired is returned when a query would scan the whole master.
var ErrFilterRequired = eris.New("search: need a name of at least the minimum length, or a city/state filter")

// Service wires the catalog, prober, and paging policy together.
type Service struct {
	cat      catalog.Catalog
	prober   *resolve.Prober
	pageSize int
	minName  int
}

// New creates a search Service. pageSize and minNameLen guard the warehouse:
// results page at pageSize rows, and a name-only query shorter than
// minNameLen runes is rejected before any SQL is issued.
func New(cat catalog.Catalog, pageSize, minNameLen int) *Service {
	if pageSize <= 0 {
		pageSize = 50
	}
	if minNameLen <= 0 {
		minNameLen = 2
	}
	return &Service{
		cat:      cat,
		prober:   resolve.NewProber(cat),
		pageSize: pageSize,
		minName:  minNameLen,
	}
}

// Validate rejects queries with no usable filter.
func (s *Service) Validate(p Params) error {
	if len([]rune(strings.TrimSpace(p.Name))) >= s.minName {
		return nil
	}
	if p.City != "" || p.State != "" {
		return nil
	}
	return ErrFilterRequired
}

// Search runs the query and returns the requested page. A page index past
// the end falls back to the first page, matching the dashboard's behavior
// when a filter change shrinks the result set. An empty result is a normal
// state, not an error.
func (s *Service) Search(ctx context.Context, p Params) (*Result, error) {
	if err := s.Validate(p); err != nil {
		return nil, err
	}

	filter := catalog.AccountFilter{Name: strings.TrimSpace(p.Name), City: p.City, State: p.State}
	if len([]rune(filter.Name)) < s.minName {
		filter.Name = ""
	}

	accounts, err := s.cat.FindAccounts(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "search: find accounts")
	}

	ranked := resolve.Rank(accounts)
	total := len(ranked)
	if total == 0 {
		return &Result{
			Accounts: []model.Account{},
			Presence: model.PresenceMap{},
			PageSize: s.pageSize,
		}, nil
	}

	totalPages := (total-1)/s.pageSize + 1
	page := p.Page
	if page < 0 || page >= totalPages {
		page = 0
	}
	start := page * s.pageSize
	end := start + s.pageSize
	if end > total {
		end = total
	}
	visible := ranked[start:end]

	presence, err := s.prober.Probe(ctx, visible)
	if err != nil {
		return nil, eris.Wrap(err, "search: probe page")
	}

	return &Result{
		Accounts:   visible,
		Presence:   presence,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

