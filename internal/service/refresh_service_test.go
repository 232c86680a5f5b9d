package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/testutil"
)

func TestRefreshAssets(t *testing.T) {
	t.Run("fresh price is not refetched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("TCS.NS", 105, "INR")
		svc := testutil.NewTestRefreshService(t, db, market, testutil.NewMockNavClient())

		asset := testutil.NewAsset("TCS.NS").WithPrice(100, time.Now()).Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		if market.LatestCalls != 0 {
			t.Errorf("Expected no provider call for a fresh price, got %d", market.LatestCalls)
		}
	})

	t.Run("stale price is refreshed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("TCS.NS", 105, "INR")
		svc := testutil.NewTestRefreshService(t, db, market, testutil.NewMockNavClient())
		assetRepo := repository.NewAssetRepository(db)

		asset := testutil.NewAsset("TCS.NS").WithPrice(100, time.Now().Add(-10*time.Minute)).Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		got, err := assetRepo.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("Failed to reload asset: %v", err)
		}
		if got.LastPrice != 105 {
			t.Errorf("Expected refreshed price 105, got %v", got.LastPrice)
		}
	})

	t.Run("zero price is always stale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("TCS.NS", 105, "INR")
		svc := testutil.NewTestRefreshService(t, db, market, testutil.NewMockNavClient())
		assetRepo := repository.NewAssetRepository(db)

		// Zero price with a recent timestamp, such as an asset created
		// before its first successful quote.
		asset := testutil.NewAsset("TCS.NS").WithPrice(0, time.Now()).Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		got, err := assetRepo.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("Failed to reload asset: %v", err)
		}
		if got.LastPrice != 105 {
			t.Errorf("Expected refreshed price 105, got %v", got.LastPrice)
		}
	})

	t.Run("missing quote leaves the price stale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRefreshService(t, db, testutil.NewMockMarketClient(), testutil.NewMockNavClient())
		assetRepo := repository.NewAssetRepository(db)

		asset := testutil.NewAsset("TCS.NS").WithPrice(100, time.Now().Add(-time.Hour)).Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		got, err := assetRepo.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("Failed to reload asset: %v", err)
		}
		if got.LastPrice != 100 {
			t.Errorf("Expected price untouched at 100, got %v", got.LastPrice)
		}
	})

	t.Run("fund nav is fresh until the next calendar day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		nav := testutil.NewMockNavClient().WithNav("120503", 82)
		svc := testutil.NewTestRefreshService(t, db, testutil.NewMockMarketClient(), nav)

		ist, err := time.LoadLocation("Asia/Kolkata")
		if err != nil {
			t.Fatalf("Failed to load timezone: %v", err)
		}
		local := time.Now().In(ist)
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ist)

		asset := testutil.NewAsset("120503").
			WithType(model.AssetMutualFund).
			WithPrice(80, dayStart.Add(time.Minute)).
			Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		if nav.Calls != 0 {
			t.Errorf("Expected no nav fetch for a same-day price, got %d calls", nav.Calls)
		}
	})

	t.Run("fund nav from the previous day is stale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		nav := testutil.NewMockNavClient().WithNav("120503", 82)
		svc := testutil.NewTestRefreshService(t, db, testutil.NewMockMarketClient(), nav)
		assetRepo := repository.NewAssetRepository(db)

		ist, err := time.LoadLocation("Asia/Kolkata")
		if err != nil {
			t.Fatalf("Failed to load timezone: %v", err)
		}
		local := time.Now().In(ist)
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ist)

		// Priced one minute before today's boundary in the fund timezone,
		// even though that may be well inside a wall-clock cooldown.
		asset := testutil.NewAsset("120503").
			WithType(model.AssetMutualFund).
			WithPrice(80, dayStart.Add(-time.Minute)).
			Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		got, err := assetRepo.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("Failed to reload asset: %v", err)
		}
		if got.LastPrice != 82 {
			t.Errorf("Expected refreshed nav 82, got %v", got.LastPrice)
		}
	})

	t.Run("usd gold converts to the ten gram price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithQuote("GOLD.NS", 2000, "USD").
			WithQuote("INR=X", 80, "INR")
		svc := testutil.NewTestRefreshService(t, db, market, testutil.NewMockNavClient())
		assetRepo := repository.NewAssetRepository(db)

		asset := testutil.NewAsset("GOLD").
			WithName("Gold Futures").
			WithType(model.AssetCommodity).
			WithPrice(50000, time.Now().Add(-time.Hour)).
			Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		got, err := assetRepo.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("Failed to reload asset: %v", err)
		}
		want := marketdata.OunceUSDToGrams(2000, 80, 10)
		if math.Abs(got.LastPrice-want) > 0.01 {
			t.Errorf("Expected localized gold price %v, got %v", want, got.LastPrice)
		}
	})

	t.Run("usd crypto converts at the spot rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithQuote("BTC-USD", 50000, "USD").
			WithQuote("INR=X", 80, "INR")
		svc := testutil.NewTestRefreshService(t, db, market, testutil.NewMockNavClient())
		assetRepo := repository.NewAssetRepository(db)

		asset := testutil.NewAsset("BTC-USD").
			WithType(model.AssetCrypto).
			WithPrice(1, time.Now().Add(-time.Hour)).
			Build(t, db)

		if err := svc.RefreshAssets([]model.Asset{asset}); err != nil {
			t.Fatalf("RefreshAssets failed: %v", err)
		}

		got, err := assetRepo.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("Failed to reload asset: %v", err)
		}
		if got.LastPrice != 50000*80 {
			t.Errorf("Expected converted price %v, got %v", 50000*80, got.LastPrice)
		}
	})
}
