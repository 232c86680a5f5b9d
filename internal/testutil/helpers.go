package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/cache"
	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/service"
)

// Logger returns a silenced logger for tests.
func Logger() zerolog.Logger {
	return zerolog.Nop()
}

func NewTestHoldingService(t *testing.T, db *sql.DB) *service.HoldingService {
	t.Helper()

	holdingRepo := repository.NewHoldingRepository(db)
	tradeRepo := repository.NewTradeRepository(db)

	return service.NewHoldingService(
		holdingRepo,
		tradeRepo,
		Logger(),
	)
}

func NewTestExpenseService(t *testing.T, db *sql.DB) *service.ExpenseService {
	t.Helper()

	expenseRepo := repository.NewExpenseRepository(db)
	userRepo := repository.NewUserRepository(db)

	return service.NewExpenseService(
		expenseRepo,
		userRepo,
		Logger(),
	)
}

func NewTestRefreshService(t *testing.T, db *sql.DB, market *MockMarketClient, nav *MockNavClient) *service.RefreshService {
	t.Helper()

	holdingRepo := repository.NewHoldingRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	fx := service.NewFXService(market, assetRepo, cache.New(time.Minute), Logger())

	tz, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Failed to load test timezone: %v", err)
	}

	return service.NewRefreshService(
		holdingRepo,
		assetRepo,
		market,
		nav,
		fx,
		5*time.Minute,
		tz,
		Logger(),
	)
}

func NewTestBackfillService(t *testing.T, db *sql.DB, market *MockMarketClient, nav *MockNavClient) *service.BackfillService {
	t.Helper()

	tradeRepo := repository.NewTradeRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	return service.NewBackfillService(
		tradeRepo,
		snapshotRepo,
		market,
		nav,
		"^NSEI",
		Logger(),
	)
}

func NewTestAnalyticsService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.AnalyticsService {
	t.Helper()

	holdingRepo := repository.NewHoldingRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	userRepo := repository.NewUserRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	return service.NewAnalyticsService(
		holdingRepo,
		tradeRepo,
		snapshotRepo,
		userRepo,
		expenseRepo,
		market,
		cache.New(time.Minute),
		"^NSEI",
		Logger(),
	)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB, market *MockMarketClient, nav *MockNavClient) *service.PortfolioService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	refresh := NewTestRefreshService(t, db, market, nav)

	return service.NewPortfolioService(
		assetRepo,
		holdingRepo,
		tradeRepo,
		refresh,
		market,
		Logger(),
	)
}
