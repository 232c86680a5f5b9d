package service_test

import (
	"testing"
	"time"

	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/testutil"
)

// daysAgo formats the UTC date n days before today, matching the rebuild's
// date axis which always ends on the current day.
func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format("2006-01-02")
}

func TestRebuild(t *testing.T) {
	t.Run("values each day with forward filled prices", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithHistory("TCS.NS", testutil.DailySeries(daysAgo(4), 100, 102, 101))
		nav := testutil.NewMockNavClient()
		svc := testutil.NewTestBackfillService(t, db, market, nav)
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(4)).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 5 {
			t.Fatalf("Expected 5 snapshots, got %d", len(snapshots))
		}
		if snapshots[0].TotalValue != 1000 {
			t.Errorf("Expected first day valued at 1000, got %v", snapshots[0].TotalValue)
		}
		if snapshots[1].TotalValue != 1020 {
			t.Errorf("Expected second day valued at 1020, got %v", snapshots[1].TotalValue)
		}
		// Days past the last price sample carry it forward.
		if snapshots[4].TotalValue != 1010 {
			t.Errorf("Expected last day valued at 1010, got %v", snapshots[4].TotalValue)
		}
		for _, snap := range snapshots {
			if snap.InvestedValue != 1000 {
				t.Errorf("Expected invested 1000 on %s, got %v", snap.Date, snap.InvestedValue)
			}
		}
	})

	t.Run("closed position ends the series at the sell", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithHistory("TCS.NS", testutil.DailySeries(daysAgo(4), 100, 100, 100, 110, 110))
		nav := testutil.NewMockNavClient()
		svc := testutil.NewTestBackfillService(t, db, market, nav)
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(4)).Build(t, db)
		testutil.NewTrade(holding.ID).Sell(10, 110).OnDate(daysAgo(1)).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		// The position is worth something on the three days before the
		// sell; the sell day and after have zero value and no snapshot.
		if len(snapshots) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
		}
		last := snapshots[len(snapshots)-1]
		if last.Date.Format("2006-01-02") != daysAgo(2) {
			t.Errorf("Expected series to end on %s, got %s", daysAgo(2), last.Date.Format("2006-01-02"))
		}
	})

	t.Run("rebuild is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithHistory("TCS.NS", testutil.DailySeries(daysAgo(3), 100, 102))
		nav := testutil.NewMockNavClient()
		svc := testutil.NewTestBackfillService(t, db, market, nav)
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(3)).Build(t, db)

		svc.Rebuild(user.ID)
		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 4 {
			t.Fatalf("Expected 4 snapshots after double rebuild, got %d", len(snapshots))
		}
		seen := map[string]bool{}
		for _, snap := range snapshots {
			key := snap.Date.Format("2006-01-02")
			if seen[key] {
				t.Errorf("Duplicate snapshot for %s", key)
			}
			seen[key] = true
		}
	})

	t.Run("no trades leaves snapshots untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBackfillService(t, db, testutil.NewMockMarketClient(), testutil.NewMockNavClient())
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		testutil.NewSnapshot(user.ID, daysAgo(5)).WithValues(1000, 900).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 1 {
			t.Errorf("Expected existing snapshot kept, got %d rows", len(snapshots))
		}
	})

	t.Run("total provider failure keeps existing history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		// No canned history at all; every fetch fails.
		svc := testutil.NewTestBackfillService(t, db, testutil.NewMockMarketClient(), testutil.NewMockNavClient())
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(3)).Build(t, db)
		testutil.NewSnapshot(user.ID, daysAgo(5)).WithValues(1000, 900).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 1 {
			t.Errorf("Expected existing history kept on provider failure, got %d rows", len(snapshots))
		}
	})

	t.Run("only future dated trades leave snapshots untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithHistory("TCS.NS", testutil.DailySeries(daysAgo(4), 100))
		svc := testutil.NewTestBackfillService(t, db, market, testutil.NewMockNavClient())
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(-3)).Build(t, db)
		testutil.NewSnapshot(user.ID, daysAgo(5)).WithValues(1000, 900).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 1 {
			t.Errorf("Expected existing history kept, got %d rows", len(snapshots))
		}
	})

	t.Run("future dated trade is excluded from valuation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithHistory("TCS.NS", testutil.DailySeries(daysAgo(4), 100))
		svc := testutil.NewTestBackfillService(t, db, market, testutil.NewMockNavClient())
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(4)).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(90, 100).OnDate(daysAgo(-30)).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 5 {
			t.Fatalf("Expected 5 snapshots, got %d", len(snapshots))
		}
		// The dated-ahead purchase must not land on day one.
		if snapshots[0].TotalValue != 1000 {
			t.Errorf("Expected first day valued at 1000, got %v", snapshots[0].TotalValue)
		}
		for _, snap := range snapshots {
			if snap.InvestedValue != 1000 {
				t.Errorf("Expected invested 1000 on %s, got %v", snap.Date, snap.InvestedValue)
			}
		}
	})

	t.Run("benchmark column is forward filled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithHistory("TCS.NS", testutil.DailySeries(daysAgo(2), 100, 100, 100)).
			WithHistory("^NSEI", testutil.DailySeries(daysAgo(2), 22000, 22100))
		nav := testutil.NewMockNavClient()
		svc := testutil.NewTestBackfillService(t, db, market, nav)
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("TCS.NS").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(10, 100).OnDate(daysAgo(2)).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
		}
		if snapshots[0].BenchmarkValue == nil || *snapshots[0].BenchmarkValue != 22000 {
			t.Errorf("Expected benchmark 22000 on first day, got %v", snapshots[0].BenchmarkValue)
		}
		if snapshots[2].BenchmarkValue == nil || *snapshots[2].BenchmarkValue != 22100 {
			t.Errorf("Expected benchmark carried forward to 22100, got %v", snapshots[2].BenchmarkValue)
		}
	})

	t.Run("fund codes resolve through the nav client", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		nav := testutil.NewMockNavClient().
			WithHistory("120503", testutil.DailySeries(daysAgo(2), 80, 81, 82))
		svc := testutil.NewTestBackfillService(t, db, testutil.NewMockMarketClient(), nav)
		snapshotRepo := repository.NewSnapshotRepository(db)

		user := testutil.NewUser().Build(t, db)
		asset := testutil.NewAsset("120503").Build(t, db)
		holding := testutil.NewHolding(user.ID, asset.ID).Build(t, db)
		testutil.NewTrade(holding.ID).Buy(100, 80).OnDate(daysAgo(2)).Build(t, db)

		svc.Rebuild(user.ID)

		snapshots, err := snapshotRepo.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
		}
		if snapshots[2].TotalValue != 8200 {
			t.Errorf("Expected last day valued at 8200, got %v", snapshots[2].TotalValue)
		}
	})
}
