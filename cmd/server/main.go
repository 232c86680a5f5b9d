package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/api"
	"github.com/ameyrk/wealthledger/internal/cache"
	"github.com/ameyrk/wealthledger/internal/config"
	"github.com/ameyrk/wealthledger/internal/database"
	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/service"
	"github.com/ameyrk/wealthledger/internal/worker"
)

const backfillQueueSize = 64

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := newLogger(cfg.Log)

	// Open database connection, running pending migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	fundTZ, err := time.LoadLocation(cfg.Market.FundTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Market.FundTimezone).Msg("invalid fund timezone")
	}

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// Shared infrastructure
	marketClient := marketdata.NewChartClient()
	navClient := marketdata.NewNavClient()
	memCache := cache.New(time.Minute)

	// Create services
	systemService := service.NewSystemService(db)
	fxService := service.NewFXService(marketClient, assetRepo, memCache, log)
	refreshService := service.NewRefreshService(
		holdingRepo,
		assetRepo,
		marketClient,
		navClient,
		fxService,
		cfg.Market.QuoteCooldown,
		fundTZ,
		log,
	)
	holdingService := service.NewHoldingService(holdingRepo, tradeRepo, log)
	backfillService := service.NewBackfillService(
		tradeRepo,
		snapshotRepo,
		marketClient,
		navClient,
		cfg.Market.BenchmarkSymbol,
		log,
	)

	queue := worker.NewQueue(backfillService, backfillQueueSize, log)

	transactionService := service.NewTransactionService(
		assetRepo,
		holdingRepo,
		tradeRepo,
		holdingService,
		queue,
		log,
	)
	portfolioService := service.NewPortfolioService(
		assetRepo,
		holdingRepo,
		tradeRepo,
		refreshService,
		marketClient,
		log,
	)
	analyticsService := service.NewAnalyticsService(
		holdingRepo,
		tradeRepo,
		snapshotRepo,
		userRepo,
		expenseRepo,
		marketClient,
		memCache,
		cfg.Market.BenchmarkSymbol,
		log,
	)
	expenseService := service.NewExpenseService(expenseRepo, userRepo, log)

	// Scheduled jobs: the periodic price sweep keeps quotes warm between
	// portfolio reads, and the nightly sweep rebuilds every user's history
	// so snapshots cover days without trades or logins.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("*/15 * * * *", func() {
		assets, err := assetRepo.GetAll()
		if err != nil {
			log.Error().Err(err).Msg("price sweep failed to list assets")
			return
		}
		if err := refreshService.RefreshAssets(assets); err != nil {
			log.Error().Err(err).Msg("price sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule price sweep")
	}
	if _, err := scheduler.AddFunc("30 1 * * *", func() {
		ids, err := userRepo.ListUserIDs()
		if err != nil {
			log.Error().Err(err).Msg("backfill sweep failed to list users")
			return
		}
		for _, id := range ids {
			queue.Submit(id)
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule backfill sweep")
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Portfolio:   portfolioService,
		Transaction: transactionService,
		Analytics:   analyticsService,
		Expense:     expenseService,
		Users:       userRepo,
		Queue:       queue,
	}, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scheduler.Stop()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	// Let an in-flight history rebuild finish before exit
	if err := queue.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("backfill queue did not drain in time")
	}

	log.Info().Msg("server exited")
}

// newLogger builds the process logger from config. Pretty output is for
// local development; production emits JSON lines.
func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	w := zerolog.New(os.Stdout)
	if cfg.Pretty {
		w = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return w.Level(level).With().Timestamp().Logger()
}
