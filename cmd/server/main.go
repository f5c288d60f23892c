package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	router "github.com/dkeye/Tracklist/internal/adapters/http"
	wssignal "github.com/dkeye/Tracklist/internal/adapters/signal"
	"github.com/dkeye/Tracklist/internal/app"
	"github.com/dkeye/Tracklist/internal/app/orch"
	"github.com/dkeye/Tracklist/internal/config"
	"github.com/dkeye/Tracklist/internal/ledger"
	"github.com/dkeye/Tracklist/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cliApp := &cli.App{
		Name:   "tracklist",
		Usage:  "collaborative playlist voting server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and websocket server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the ledger schema for the configured driver",
				Action: migrate,
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("tracklist failed")
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Mode == "release" {
		// JSON lines in production.
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, error) {
	store, err := ledger.Open(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Ledger.Driver).Msg("schema is up to date")
	return nil
}

func serve(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	var (
		m              metrics.Metrics = metrics.NoOp{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		pm, err := metrics.NewPrometheus(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		m = pm
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	o := &orch.Orchestrator{
		Registry:         app.NewRegistry(),
		Rooms:            app.NewRoomManager(),
		Members:          app.NewMembershipTracker(),
		Ledger:           ledger.NewGuard(store, cfg.Ledger.Timeout, m),
		Policy:           app.SimplePolicy{},
		Metrics:          m,
		LeaderboardLimit: cfg.Leaderboard.Limit,
	}

	var limiter *wssignal.VoterRateLimiter
	if cfg.Rate.VotesPerSecond > 0 {
		limiter = wssignal.NewVoterRateLimiter(rate.Limit(cfg.Rate.VotesPerSecond), cfg.Rate.Burst)
	}
	ctl := wssignal.NewSignalWSController(o, limiter, m, wssignal.Options{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		SendBuffer:   cfg.SendBuffer,
		QueryTimeout: cfg.Ledger.Timeout,
	})

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:      o,
		Directory: store,
		Signal:    ctl,
		Metrics:   metricsHandler,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("ledger", cfg.Ledger.Driver).Msg("Tracklist server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
