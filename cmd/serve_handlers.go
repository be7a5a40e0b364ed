package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SonAcx/Customer360/internal/catalog"
	"github.com/SonAcx/Customer360/internal/model"
	"github.com/SonAcx/Customer360/internal/resolve"
	"github.com/SonAcx/Customer360/internal/search"
)

// apiServer holds the handler dependencies.
type apiServer struct {
	cat  catalog.Catalog
	svc  *search.Service
	opts *catalog.FilterOptionsCache
}

func (s *apiServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) filterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.opts.Options(r.Context())
	if err != nil {
		writeWarehouseError(w, r, "filter options", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": opts})
}

func (s *apiServer) searchAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	params := search.Params{
		Name:  q.Get("name"),
		City:  q.Get("city"),
		State: q.Get("state"),
		Page:  page,
	}

	result, err := s.svc.Search(r.Context(), params)
	if err != nil {
		if errors.Is(err, search.ErrFilterRequired) {
			writeError(w, http.StatusBadRequest, "provide a name of at least 2 characters, or a city/state filter")
			return
		}
		writeWarehouseError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) accountDetail(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *apiServer) pipelineDetail(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}

	// A master row can factually hold several comma-joined SF ids; the feed
	// is queried per id and the rows concatenated.
	var activities []model.PipelineActivity
	for _, sfID := range resolve.SplitIDs(account.SFAccountID) {
		rows, err := s.cat.PipelineActivityDetail(r.Context(), sfID)
		if err != nil {
			writeWarehouseError(w, r, "pipeline detail", err)
			return
		}
		activities = append(activities, rows...)
	}
	if activities == nil {
		activities = []model.PipelineActivity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

func (s *apiServer) purchaseDetail(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}

	rows := []model.PurchaseRow{}
	if account.HasAMPCustomerID() {
		linker := resolve.NewLinker(s.cat)
		expanded, err := linker.Expand(r.Context(), *account.AMPCustomerID)
		if err != nil {
			writeWarehouseError(w, r, "linkage expansion", err)
			return
		}
		got, err := s.cat.PurchaseActivityDetail(r.Context(), expanded)
		if err != nil {
			writeWarehouseError(w, r, "purchase detail", err)
			return
		}
		if got != nil {
			rows = got
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchases": rows})
}

func (s *apiServer) accountHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}

	events, err := s.cat.AccountHistory(r.Context(), account.AccountUUID)
	if err != nil {
		writeWarehouseError(w, r, "account history", err)
		return
	}
	if events == nil {
		events = []model.HistoryEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// lookupAccount resolves the {uuid} route param. Writes the response itself
// on failure and reports ok=false.
func (s *apiServer) lookupAccount(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	accountUUID := chi.URLParam(r, "uuid")
	if accountUUID == "" {
		writeError(w, http.StatusBadRequest, "account uuid is required")
		return nil, false
	}

	account, err := s.cat.GetAccount(r.Context(), accountUUID)
	if err != nil {
		writeWarehouseError(w, r, "get account", err)
		return nil, false
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return nil, false
	}
	return account, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeWarehouseError surfaces a catalog failure as a 502: the warehouse is
// an upstream dependency and there is no retry path for the current request.
func writeWarehouseError(w http.ResponseWriter, r *http.Request, op string, err error) {
	zap.L().Error("warehouse query failed",
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusBadGateway, "warehouse query failed")
}

// requestLogger tags each request with an id and logs method, path, and
// duration at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()
		next.ServeHTTP(w, r)
		zap.L().Debug("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// rateLimit rejects requests once the shared-warehouse budget is spent.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
