package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SonAcx/Customer360/internal/catalog"
	"github.com/SonAcx/Customer360/internal/search"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cat, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		svc := search.New(cat, cfg.Search.PageSize, cfg.Search.MinNameChars)
		opts := catalog.NewFilterOptionsCache(cat, cfg.Search.FilterCacheTTL())
		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)

		router := buildRouter(cat, svc, opts, limiter, cfg.Server.AllowedOrigins)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter assembles the API. The rate limiter sits in front of every
// warehouse-touching route so one dashboard cannot hammer the shared
// warehouse; /health stays outside it.
func buildRouter(cat catalog.Catalog, svc *search.Service, opts *catalog.FilterOptionsCache, limiter *rate.Limiter, origins []string) http.Handler {
	api := &apiServer{cat: cat, svc: svc, opts: opts}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", api.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Get("/filters", api.filterOptions)
		r.Get("/accounts", api.searchAccounts)
		r.Route("/accounts/{uuid}", func(r chi.Router) {
			r.Get("/", api.accountDetail)
			r.Get("/pipeline", api.pipelineDetail)
			r.Get("/purchases", api.purchaseDetail)
			r.Get("/history", api.accountHistory)
		})
	})

	return r
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
