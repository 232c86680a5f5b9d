package service

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/ameyrk/wealthledger/internal/cache"
	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

const (
	// benchmarkLookbackDays is the benchmark history window used for beta.
	benchmarkLookbackDays = 365

	benchmarkCacheTTL = 24 * time.Hour

	// minSnapshots and minOverlap gate the statistics: below these counts
	// the metrics return neutral defaults instead of noise.
	minSnapshots = 10
	minOverlap   = 10

	tradingDaysPerYear = 252
)

// AnalyticsService derives portfolio statistics from the live holdings and
// the materialized snapshot history. Every method degrades to a neutral
// default on missing data rather than failing; only storage errors surface.
type AnalyticsService struct {
	holdingRepo  *repository.HoldingRepository
	tradeRepo    *repository.TradeRepository
	snapshotRepo *repository.SnapshotRepository
	userRepo     *repository.UserRepository
	expenseRepo  *repository.ExpenseRepository
	market       marketdata.MarketClient
	cache        *cache.Cache
	benchmark    string
	log          zerolog.Logger

	now func() time.Time // overridable in tests
}

// NewAnalyticsService creates a new AnalyticsService with the provided dependencies.
func NewAnalyticsService(
	holdingRepo *repository.HoldingRepository,
	tradeRepo *repository.TradeRepository,
	snapshotRepo *repository.SnapshotRepository,
	userRepo *repository.UserRepository,
	expenseRepo *repository.ExpenseRepository,
	market marketdata.MarketClient,
	c *cache.Cache,
	benchmarkSymbol string,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		holdingRepo:  holdingRepo,
		tradeRepo:    tradeRepo,
		snapshotRepo: snapshotRepo,
		userRepo:     userRepo,
		expenseRepo:  expenseRepo,
		market:       market,
		cache:        c,
		benchmark:    benchmarkSymbol,
		log:          log,
		now:          time.Now,
	}
}

// Analytics assembles the full analytics payload: headline metrics, sector
// split, and the performance graph from the snapshot history.
func (s *AnalyticsService) Analytics(userID string) (model.AnalyticsResponse, error) {
	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return model.AnalyticsResponse{}, fmt.Errorf("failed to load holdings: %w", err)
	}
	snapshots, err := s.snapshotRepo.ListByUser(userID)
	if err != nil {
		return model.AnalyticsResponse{}, fmt.Errorf("failed to load snapshots: %w", err)
	}
	trades, err := s.tradeRepo.ListByUser(userID)
	if err != nil {
		return model.AnalyticsResponse{}, fmt.Errorf("failed to load trades: %w", err)
	}

	risk := s.riskMetrics(snapshots)

	graph := make([]model.PerformancePoint, 0, len(snapshots))
	for _, snap := range snapshots {
		graph = append(graph, model.PerformancePoint{
			Name:      snap.Date.Format("Jan-06"),
			Date:      snap.Date.Format("2006-01-02"),
			Portfolio: snap.TotalValue,
			Invested:  snap.InvestedValue,
			Benchmark: snap.BenchmarkValue,
		})
	}

	return model.AnalyticsResponse{
		Metrics: model.AnalyticsMetrics{
			XIRR:        round2(portfolioXIRR(trades, totalValue(holdings), s.now())),
			Beta:        risk.Beta,
			Volatility:  risk.Volatility,
			HealthScore: healthScore(holdings),
		},
		Sectors:          sectorSplit(holdings),
		PerformanceGraph: graph,
	}, nil
}

// RiskMetrics exposes the volatility/beta block on its own.
func (s *AnalyticsService) RiskMetrics(userID string) (model.RiskMetrics, error) {
	snapshots, err := s.snapshotRepo.ListByUser(userID)
	if err != nil {
		return model.RiskMetrics{}, fmt.Errorf("failed to load snapshots: %w", err)
	}
	return s.riskMetrics(snapshots), nil
}

// Summary is the landing-page roll-up: net worth from live holdings plus
// month-to-date spend against budget.
func (s *AnalyticsService) Summary(userID string) (model.HomeSummary, error) {
	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		return model.HomeSummary{}, err
	}
	spend, err := s.expenseRepo.MonthTotal(userID, s.now())
	if err != nil {
		return model.HomeSummary{}, err
	}
	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return model.HomeSummary{}, err
	}

	return model.HomeSummary{
		MonthlySpend:  spend,
		MonthlyBudget: user.MonthlyBudget,
		NetWorth:      totalValue(holdings),
		Username:      user.Username,
	}, nil
}

// riskMetrics computes annualized volatility and market beta from the
// snapshot series. Fewer than minSnapshots points is not statistically
// meaningful and yields the neutral defaults.
func (s *AnalyticsService) riskMetrics(snapshots []model.PortfolioSnapshot) model.RiskMetrics {
	if len(snapshots) < minSnapshots {
		return model.RiskMetrics{Beta: 0, Volatility: "Low", VolatilityPct: 0}
	}

	returns := make(map[time.Time]float64, len(snapshots))
	flat := make([]float64, 0, len(snapshots))
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].TotalValue
		if prev == 0 {
			continue
		}
		r := snapshots[i].TotalValue/prev - 1
		returns[day(snapshots[i].Date)] = r
		flat = append(flat, r)
	}

	var volatility float64
	if len(flat) > 1 {
		volatility = stat.StdDev(flat, nil) * math.Sqrt(tradingDaysPerYear) * 100
	}

	label := "Low"
	if volatility > 15 {
		label = "Medium"
	}
	if volatility > 30 {
		label = "High"
	}

	return model.RiskMetrics{
		Beta:          round2(s.beta(returns)),
		Volatility:    label,
		VolatilityPct: round2(volatility),
	}
}

// beta regresses the portfolio's daily returns against the benchmark's over
// their date-aligned intersection. Both series are keyed by naive calendar
// date before joining; a timezone mismatch between them would silently
// empty the join.
func (s *AnalyticsService) beta(portfolioReturns map[time.Time]float64) float64 {
	market := s.benchmarkReturns()
	if len(market) == 0 {
		return 0
	}

	var port, bench []float64
	for d, r := range portfolioReturns {
		if m, ok := market[d]; ok {
			port = append(port, r)
			bench = append(bench, m)
		}
	}
	if len(port) <= minOverlap {
		return 0
	}

	variance := stat.Variance(bench, nil)
	if variance <= 0 {
		return 0
	}
	return stat.Covariance(port, bench, nil) / variance
}

// benchmarkReturns fetches the benchmark index's daily returns keyed by
// date, cached for a day to spare the provider.
func (s *AnalyticsService) benchmarkReturns() map[time.Time]float64 {
	key := "benchmark:" + s.benchmark
	if v, ok := s.cache.Get(key); ok {
		return v.(map[time.Time]float64)
	}

	end := s.now()
	points, err := s.market.FetchDailyHistory(s.benchmark, end.AddDate(0, 0, -benchmarkLookbackDays), end)
	if err != nil || len(points) == 0 {
		s.log.Warn().Err(err).Str("symbol", s.benchmark).Msg("benchmark history unavailable, beta defaults to 0")
		return nil
	}

	returns := make(map[time.Time]float64, len(points))
	for i := 1; i < len(points); i++ {
		if points[i-1].Price == 0 {
			continue
		}
		returns[day(points[i].Date)] = points[i].Price/points[i-1].Price - 1
	}

	s.cache.Set(key, returns, benchmarkCacheTTL)
	return returns
}

// sectorSplit groups current market value by sector. Holdings without a
// useful sector (empty or "Other") group by asset class instead, so gold
// ETFs and funds still land in a meaningful bucket. Empty when the
// portfolio has no value.
func sectorSplit(holdings []model.HoldingWithAsset) []model.SectorSlice {
	groups := map[string]float64{}
	order := []string{}
	var total float64

	for _, h := range holdings {
		value := holdingValue(h)
		name := h.Asset.Sector
		if name == "" || name == "Other" {
			name = string(h.Asset.Type)
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] += value
		total += value
	}

	if total == 0 {
		return []model.SectorSlice{}
	}

	slices := make([]model.SectorSlice, 0, len(order))
	for _, name := range order {
		v := groups[name]
		slices = append(slices, model.SectorSlice{
			Name:  name,
			Value: round2(v / total * 100),
			Total: round2(v),
		})
	}
	return slices
}

// healthScore is a 0-100 diversification score. Starts at 100, minus 15 per
// holding concentrated above 40% of total value, minus 20 below three
// sectors, minus 10 below two asset classes. An empty portfolio scores a
// neutral 50; a valued-at-zero one scores 0.
func healthScore(holdings []model.HoldingWithAsset) int {
	if len(holdings) == 0 {
		return 50
	}

	total := totalValue(holdings)
	if total == 0 {
		return 0
	}

	score := 100
	for _, h := range holdings {
		if holdingValue(h)/total > 0.40 {
			score -= 15
		}
	}

	sectors := map[string]bool{}
	types := map[model.AssetType]bool{}
	for _, h := range holdings {
		if h.Asset.Sector != "" {
			sectors[h.Asset.Sector] = true
		}
		types[h.Asset.Type] = true
	}
	if len(sectors) < 3 {
		score -= 20
	}
	if len(types) < 2 {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	return score
}

func holdingValue(h model.HoldingWithAsset) float64 {
	qty, _ := h.Quantity.Float64()
	return qty * h.Asset.LastPrice
}

func totalValue(holdings []model.HoldingWithAsset) float64 {
	var total float64
	for _, h := range holdings {
		total += holdingValue(h)
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
