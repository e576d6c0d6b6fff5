// Package main is the entry point for the portfolio analytics service.
// It serves stocks and portfolios over HTTP, keeps stored price series current
// with a scheduled incremental sync, and recomputes portfolio analytics after
// every holding change.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/aristath/portfolio-analytics/internal/config"
	"github.com/aristath/portfolio-analytics/internal/di"
	portfoliohandlers "github.com/aristath/portfolio-analytics/internal/modules/portfolio/handlers"
	universehandlers "github.com/aristath/portfolio-analytics/internal/modules/universe/handlers"
	"github.com/aristath/portfolio-analytics/internal/scheduler"
	"github.com/aristath/portfolio-analytics/internal/server"
	"github.com/aristath/portfolio-analytics/pkg/logger"
)

// main loads configuration, wires dependencies, seeds the watchlist, starts the
// scheduler and the HTTP server, and shuts both down on SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("timezone", cfg.Timezone).
		Str("volatility_window_order", cfg.WindowOrder.String()).
		Msg("Starting portfolio analytics")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(log)
	container, jobs, err := di.Wire(ctx, cfg, sched, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Seed the watchlist in the background; creation calls the provider
	if len(cfg.Watchlist) > 0 {
		go func() {
			seedCtx, seedCancel := context.WithTimeout(ctx, cfg.SyncTimeout)
			defer seedCancel()
			created := container.StockService.EnsureExists(seedCtx, cfg.Watchlist)
			log.Info().Int("watchlist", len(cfg.Watchlist)).Int("created", created).Msg("Watchlist seeded")
		}()
	}

	sched.Start()

	var quota server.QuotaReporter
	if container.AlphaVantageClient != nil {
		quota = container.AlphaVantageClient
	}

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		CORSOrigins: cfg.CORSOrigins,
		Health:      container.Health,
		System:      server.NewSystemHandlers(log, quota, jobs.All()...),
		Modules: []server.RouteRegistrar{
			universehandlers.NewHandler(container.StockService, log),
			portfoliohandlers.NewHandler(container.PortfolioService, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Waits for a running sync to finish
	sched.Stop()

	log.Info().Msg("Server stopped")
}
