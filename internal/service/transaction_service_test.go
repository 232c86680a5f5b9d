package service_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/ameyrk/wealthledger/internal/api/request"
	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/service"
	"github.com/ameyrk/wealthledger/internal/testutil"
)

// recordingQueue captures submitted user ids instead of running rebuilds.
type recordingQueue struct {
	userIDs []string
}

func (q *recordingQueue) Submit(userID string) {
	q.userIDs = append(q.userIDs, userID)
}

func newTransactionService(t *testing.T, db *sql.DB, queue *recordingQueue) *service.TransactionService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	tradeRepo := repository.NewTradeRepository(db)

	return service.NewTransactionService(
		assetRepo,
		holdingRepo,
		tradeRepo,
		testutil.NewTestHoldingService(t, db),
		queue,
		testutil.Logger(),
	)
}

func TestCreateTrade(t *testing.T) {
	t.Run("first trade creates asset and holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		queue := &recordingQueue{}
		svc := newTransactionService(t, db, queue)
		assetRepo := repository.NewAssetRepository(db)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)

		trade, err := svc.CreateTrade(user.ID, request.CreateTradeRequest{
			Symbol:   "tcs.ns",
			Name:     "Tata Consultancy Services",
			Type:     "buy",
			Quantity: "10",
			Price:    "3500",
			Date:     "2024-01-15",
		})
		if err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}
		if trade.ID == "" {
			t.Error("Expected trade to be assigned an id")
		}

		asset, err := assetRepo.GetBySymbol("TCS.NS")
		if err != nil {
			t.Fatalf("Expected asset created on first trade: %v", err)
		}
		if asset.MarketCap != model.CapMid {
			t.Errorf("Expected lazily created asset to default to MID cap, got %q", asset.MarketCap)
		}
		holding, err := holdingRepo.GetByUserAndAsset(user.ID, asset.ID)
		if err != nil {
			t.Fatalf("Expected holding created on first trade: %v", err)
		}
		if holding.Quantity.IntPart() != 10 {
			t.Errorf("Expected replayed quantity 10, got %s", holding.Quantity)
		}
		if holding.AvgBuyPrice.IntPart() != 3500 {
			t.Errorf("Expected avg buy price 3500, got %s", holding.AvgBuyPrice)
		}
		if len(queue.userIDs) != 1 || queue.userIDs[0] != user.ID {
			t.Errorf("Expected one backfill submission for the user, got %v", queue.userIDs)
		}
	})

	t.Run("repeat trades reuse the asset and holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		queue := &recordingQueue{}
		svc := newTransactionService(t, db, queue)
		assetRepo := repository.NewAssetRepository(db)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)

		for _, price := range []string{"100", "200"} {
			if _, err := svc.CreateTrade(user.ID, request.CreateTradeRequest{
				Symbol: "TCS.NS", Type: "BUY", Quantity: "10", Price: price, Date: "2024-01-15",
			}); err != nil {
				t.Fatalf("CreateTrade failed: %v", err)
			}
		}

		assets, err := assetRepo.GetAll()
		if err != nil {
			t.Fatalf("Failed to list assets: %v", err)
		}
		if len(assets) != 1 {
			t.Fatalf("Expected a single asset row, got %d", len(assets))
		}
		holdings, err := holdingRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list holdings: %v", err)
		}
		if len(holdings) != 1 {
			t.Fatalf("Expected a single holding row, got %d", len(holdings))
		}
		if holdings[0].AvgBuyPrice.IntPart() != 150 {
			t.Errorf("Expected avg buy price 150, got %s", holdings[0].AvgBuyPrice)
		}
	})

	t.Run("closing sell removes the holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		queue := &recordingQueue{}
		svc := newTransactionService(t, db, queue)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)

		if _, err := svc.CreateTrade(user.ID, request.CreateTradeRequest{
			Symbol: "TCS.NS", Type: "BUY", Quantity: "10", Price: "100", Date: "2024-01-15",
		}); err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}
		if _, err := svc.CreateTrade(user.ID, request.CreateTradeRequest{
			Symbol: "TCS.NS", Type: "SELL", Quantity: "10", Price: "120", Date: "2024-02-15",
		}); err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}

		holdings, err := holdingRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list holdings: %v", err)
		}
		if len(holdings) != 0 {
			t.Errorf("Expected closed position removed, got %d holdings", len(holdings))
		}
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newTransactionService(t, db, &recordingQueue{})

		user := testutil.NewUser().Build(t, db)

		_, err := svc.CreateTrade(user.ID, request.CreateTradeRequest{
			Symbol: "TCS.NS", Type: "BUY", Quantity: "10", Price: "100", Date: "15-01-2024",
		})
		if err == nil {
			t.Error("Expected error for malformed date")
		}
	})
}

func TestDeleteTrade(t *testing.T) {
	t.Run("delete replays the holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		queue := &recordingQueue{}
		svc := newTransactionService(t, db, queue)
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).WithPosition(20, 150).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)
		doomed := testutil.NewTrade(holding.ID).Buy(10, 200).OnDate("2024-02-01").Build(t, db)

		if err := svc.DeleteTrade(user.ID, doomed.ID); err != nil {
			t.Fatalf("DeleteTrade failed: %v", err)
		}

		got, err := holdingRepo.GetHolding(holding.ID)
		if err != nil {
			t.Fatalf("Failed to reload holding: %v", err)
		}
		if got.Quantity.IntPart() != 10 {
			t.Errorf("Expected quantity 10 after delete, got %s", got.Quantity)
		}
		if got.AvgBuyPrice.IntPart() != 100 {
			t.Errorf("Expected avg buy price 100 after delete, got %s", got.AvgBuyPrice)
		}
		if len(queue.userIDs) != 1 {
			t.Errorf("Expected one backfill submission, got %v", queue.userIDs)
		}
	})

	t.Run("deleting the only trade removes the holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newTransactionService(t, db, &recordingQueue{})
		holdingRepo := repository.NewHoldingRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).WithPosition(10, 100).Build(t, db)
		trade := testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)

		if err := svc.DeleteTrade(user.ID, trade.ID); err != nil {
			t.Fatalf("DeleteTrade failed: %v", err)
		}

		if _, err := holdingRepo.GetHolding(holding.ID); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected holding removed, got err %v", err)
		}
	})

	t.Run("cannot delete another user's trade", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newTransactionService(t, db, &recordingQueue{})

		owner := testutil.NewUser().Build(t, db)
		intruder := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(owner.ID, asset.ID).WithPosition(10, 100).Build(t, db)
		trade := testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)

		err := svc.DeleteTrade(intruder.ID, trade.ID)
		if !errors.Is(err, apperrors.ErrTradeNotFound) {
			t.Errorf("Expected ErrTradeNotFound, got %v", err)
		}
	})
}
