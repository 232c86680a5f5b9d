package service_test

import (
	"errors"
	"testing"

	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/testutil"
)

func TestRecalculate(t *testing.T) {
	t.Run("single buy sets quantity and cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)

		if err := svc.Recalculate(holding.ID); err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}

		got, err := holdingRepo.GetHolding(holding.ID)
		if err != nil {
			t.Fatalf("Failed to reload holding: %v", err)
		}
		if got.Quantity.IntPart() != 10 {
			t.Errorf("Expected quantity 10, got %s", got.Quantity)
		}
		if got.AvgBuyPrice.IntPart() != 100 {
			t.Errorf("Expected avg buy price 100, got %s", got.AvgBuyPrice)
		}
	})

	t.Run("second buy averages the cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 200).OnDate("2024-02-01").Build(t, db)

		if err := svc.Recalculate(holding.ID); err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}

		got, err := holdingRepo.GetHolding(holding.ID)
		if err != nil {
			t.Fatalf("Failed to reload holding: %v", err)
		}
		if got.Quantity.IntPart() != 20 {
			t.Errorf("Expected quantity 20, got %s", got.Quantity)
		}
		if got.AvgBuyPrice.IntPart() != 150 {
			t.Errorf("Expected avg buy price 150, got %s", got.AvgBuyPrice)
		}
	})

	t.Run("sell reduces quantity but keeps average cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)
		testutil.NewTrade(holding.ID).Sell(5, 180).OnDate("2024-02-01").Build(t, db)

		if err := svc.Recalculate(holding.ID); err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}

		got, err := holdingRepo.GetHolding(holding.ID)
		if err != nil {
			t.Fatalf("Failed to reload holding: %v", err)
		}
		if got.Quantity.IntPart() != 5 {
			t.Errorf("Expected quantity 5, got %s", got.Quantity)
		}
		if got.AvgBuyPrice.IntPart() != 100 {
			t.Errorf("Expected avg buy price unchanged at 100, got %s", got.AvgBuyPrice)
		}
	})

	t.Run("closing sell deletes the holding and its trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		holdingRepo := repository.NewHoldingRepository(db)
		tradeRepo := repository.NewTradeRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)
		testutil.NewTrade(holding.ID).Sell(10, 150).OnDate("2024-02-01").Build(t, db)

		if err := svc.Recalculate(holding.ID); err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}

		if _, err := holdingRepo.GetHolding(holding.ID); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected closed holding to be deleted, got err %v", err)
		}
		trades, err := tradeRepo.ListByHolding(holding.ID)
		if err != nil {
			t.Fatalf("Failed to list trades: %v", err)
		}
		if len(trades) != 0 {
			t.Errorf("Expected cascade to remove trades, found %d", len(trades))
		}
	})

	t.Run("replay order follows trade date not insertion", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		// Backdated buy inserted after the sell that closes it out.
		testutil.NewTrade(holding.ID).Sell(5, 200).OnDate("2024-03-01").Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)

		if err := svc.Recalculate(holding.ID); err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}

		got, err := holdingRepo.GetHolding(holding.ID)
		if err != nil {
			t.Fatalf("Failed to reload holding: %v", err)
		}
		if got.Quantity.IntPart() != 5 {
			t.Errorf("Expected quantity 5, got %s", got.Quantity)
		}
	})
}
