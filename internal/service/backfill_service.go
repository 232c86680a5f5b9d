package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// maxLookback bounds the rebuild window; price providers rarely serve more
// history and the in-memory matrices grow with the window.
const maxLookbackYears = 30

// historyFetchConcurrency bounds parallel history downloads during a rebuild.
const historyFetchConcurrency = 10

// BackfillService reconstructs a user's daily portfolio history from their
// full trade log plus historical prices. The snapshot table is a disposable
// projection: every run recomputes the whole per-user set and swaps it in
// atomically. A run either completes or leaves the stored history untouched.
type BackfillService struct {
	tradeRepo    *repository.TradeRepository
	snapshotRepo *repository.SnapshotRepository
	market       marketdata.MarketClient
	nav          marketdata.NavClient
	benchmark    string
	log          zerolog.Logger

	now func() time.Time // overridable in tests
}

// NewBackfillService creates a new BackfillService with the provided dependencies.
func NewBackfillService(
	tradeRepo *repository.TradeRepository,
	snapshotRepo *repository.SnapshotRepository,
	market marketdata.MarketClient,
	nav marketdata.NavClient,
	benchmarkSymbol string,
	log zerolog.Logger,
) *BackfillService {
	return &BackfillService{
		tradeRepo:    tradeRepo,
		snapshotRepo: snapshotRepo,
		market:       market,
		nav:          nav,
		benchmark:    benchmarkSymbol,
		log:          log,
		now:          time.Now,
	}
}

// Rebuild recomputes the user's snapshot history. Failures are logged, not
// returned; a failed run never mutates stored snapshots.
func (s *BackfillService) Rebuild(userID string) {
	if err := s.rebuild(userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("history rebuild failed, snapshots left untouched")
	}
}

func (s *BackfillService) rebuild(userID string) error {
	trades, err := s.tradeRepo.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}
	if len(trades) == 0 {
		return nil
	}

	end := day(s.now())
	start := day(trades[0].Date)
	if clip := end.AddDate(-maxLookbackYears, 0, 0); start.Before(clip) {
		start = clip
	}
	if start.After(end) {
		s.log.Warn().Str("user_id", userID).Msg("earliest trade is future dated, nothing to value")
		return nil
	}

	axis := dateAxis(start, end)
	index := make(map[time.Time]int, len(axis))
	for i, d := range axis {
		index[d] = i
	}

	prices := s.fetchPriceMatrix(distinctSymbols(trades), axis)

	// Signed quantity deltas per symbol plus one invested-cash delta
	// column, then cumulative sums down the date axis. Trades older than
	// the clipped window land on the first day; trades dated past the
	// axis end do not exist yet as far as history is concerned.
	qtyDeltas := make(map[string][]float64)
	investedDeltas := make([]float64, len(axis))
	for _, t := range trades {
		i, ok := index[day(t.Date)]
		if !ok {
			if day(t.Date).After(end) {
				continue
			}
			i = 0
		}

		qty, _ := t.Quantity.Float64()
		total, _ := t.Total().Float64()
		if t.Type == model.TradeSell {
			qty, total = -qty, -total
		}

		if qtyDeltas[t.Symbol] == nil {
			qtyDeltas[t.Symbol] = make([]float64, len(axis))
		}
		qtyDeltas[t.Symbol][i] += qty
		investedDeltas[i] += total
	}

	holdings := make(map[string][]float64, len(qtyDeltas))
	for sym, deltas := range qtyDeltas {
		holdings[sym] = cumulate(deltas)
	}
	invested := cumulate(investedDeltas)

	benchmark := s.fetchBenchmark(axis)

	snapshots := make([]model.PortfolioSnapshot, 0, len(axis))
	for i, d := range axis {
		var value float64
		for sym, qty := range holdings {
			series, ok := prices[sym]
			if !ok || math.IsNaN(series[i]) {
				continue
			}
			value += qty[i] * series[i]
		}

		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}

		snap := model.PortfolioSnapshot{
			UserID:        userID,
			Date:          d,
			TotalValue:    value,
			InvestedValue: invested[i],
		}
		if benchmark != nil && !math.IsNaN(benchmark[i]) {
			v := benchmark[i]
			snap.BenchmarkValue = &v
		}
		snapshots = append(snapshots, snap)
	}

	// Every price fetch failing leaves nothing to value. Keep whatever
	// history exists instead of swapping in an empty set.
	if len(snapshots) == 0 {
		s.log.Warn().Str("user_id", userID).Msg("rebuild valued no days, existing history kept")
		return nil
	}

	if err := s.snapshotRepo.ReplaceForUser(userID, snapshots); err != nil {
		return fmt.Errorf("failed to replace snapshots: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Int("trades", len(trades)).
		Int("snapshots", len(snapshots)).
		Msg("history rebuild complete")
	return nil
}

// fetchPriceMatrix downloads and forward-fills one price column per symbol.
// A symbol whose fetch fails simply has no column and contributes nothing
// to valuation.
func (s *BackfillService) fetchPriceMatrix(symbols []string, axis []time.Time) map[string][]float64 {
	start, end := axis[0], axis[len(axis)-1]

	var mu sync.Mutex
	prices := make(map[string][]float64, len(symbols))

	var g errgroup.Group
	g.SetLimit(historyFetchConcurrency)
	for _, sym := range symbols {
		g.Go(func() error {
			var points []marketdata.PricePoint
			var err error
			if marketdata.IsFundCode(sym) {
				points, err = s.nav.FetchNavHistory(sym, start, end)
			} else {
				points, err = s.market.FetchDailyHistory(marketdata.NormalizeSymbol(sym), start, end)
			}
			if err != nil || len(points) == 0 {
				s.log.Warn().Err(err).Str("symbol", sym).Msg("history fetch failed, symbol excluded from valuation")
				return nil
			}

			series := forwardFill(axis, points)
			mu.Lock()
			prices[sym] = series
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return prices
}

// fetchBenchmark returns the benchmark index level forward-filled over the
// axis, or nil when the fetch fails.
func (s *BackfillService) fetchBenchmark(axis []time.Time) []float64 {
	if s.benchmark == "" {
		return nil
	}
	points, err := s.market.FetchDailyHistory(s.benchmark, axis[0], axis[len(axis)-1])
	if err != nil || len(points) == 0 {
		s.log.Warn().Err(err).Str("symbol", s.benchmark).Msg("benchmark history unavailable")
		return nil
	}
	return forwardFill(axis, points)
}

func distinctSymbols(trades []repository.TradeWithSymbol) []string {
	seen := make(map[string]bool, len(trades))
	symbols := []string{}
	for _, t := range trades {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}
	return symbols
}
