package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// navFetchConcurrency bounds the parallel NAV lookups; the NAV provider is
// one HTTP call per fund code.
const navFetchConcurrency = 10

// RefreshService reprices stale assets behind a user's holdings. Listed
// instruments refresh on a wall-clock cooldown, funds on a calendar-day
// boundary in the exchange timezone. All successfully fetched prices are
// persisted in a single bulk write; individual symbol failures never fail
// the pass.
type RefreshService struct {
	holdingRepo *repository.HoldingRepository
	assetRepo   *repository.AssetRepository
	market      marketdata.MarketClient
	nav         marketdata.NavClient
	fx          *FXService
	cooldown    time.Duration
	fundTZ      *time.Location
	log         zerolog.Logger

	now func() time.Time // overridable in tests
}

// NewRefreshService creates a new RefreshService with the provided dependencies.
func NewRefreshService(
	holdingRepo *repository.HoldingRepository,
	assetRepo *repository.AssetRepository,
	market marketdata.MarketClient,
	nav marketdata.NavClient,
	fx *FXService,
	cooldown time.Duration,
	fundTZ *time.Location,
	log zerolog.Logger,
) *RefreshService {
	return &RefreshService{
		holdingRepo: holdingRepo,
		assetRepo:   assetRepo,
		market:      market,
		nav:         nav,
		fx:          fx,
		cooldown:    cooldown,
		fundTZ:      fundTZ,
		log:         log,
		now:         time.Now,
	}
}

// RefreshUser reprices the stale assets behind the user's holdings.
// Idempotent; safe to call on every portfolio read.
func (s *RefreshService) RefreshUser(userID string) error {
	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load holdings for refresh: %w", err)
	}

	assets := make([]model.Asset, 0, len(holdings))
	for _, h := range holdings {
		assets = append(assets, h.Asset)
	}
	return s.RefreshAssets(assets)
}

// RefreshAssets reprices whichever of the given assets are stale.
func (s *RefreshService) RefreshAssets(assets []model.Asset) error {
	now := s.now()

	var fundAssets, marketAssets []model.Asset
	for _, a := range assets {
		if !s.isStale(a, now) {
			continue
		}
		if marketdata.IsFundCode(a.Symbol) {
			fundAssets = append(fundAssets, a)
		} else {
			marketAssets = append(marketAssets, a)
		}
	}
	if len(fundAssets) == 0 && len(marketAssets) == 0 {
		return nil
	}

	updates := s.fetchMarketPrices(marketAssets, now)
	updates = append(updates, s.fetchFundNavs(fundAssets, now)...)

	if err := s.assetRepo.UpdatePrices(updates); err != nil {
		return fmt.Errorf("failed to persist refreshed prices: %w", err)
	}

	s.log.Debug().
		Int("stale", len(fundAssets)+len(marketAssets)).
		Int("refreshed", len(updates)).
		Msg("price refresh pass complete")
	return nil
}

// isStale applies the per-class staleness policy. A zero price is always
// stale. Funds publish NAV once per day, so their boundary is the start of
// the current day in the exchange timezone rather than a cooldown.
func (s *RefreshService) isStale(a model.Asset, now time.Time) bool {
	if a.LastPrice == 0 || a.LastPriceAt.IsZero() {
		return true
	}
	if a.Type == model.AssetMutualFund {
		local := now.In(s.fundTZ)
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.fundTZ)
		return a.LastPriceAt.Before(dayStart)
	}
	return now.Sub(a.LastPriceAt) > s.cooldown
}

// fetchMarketPrices resolves listed instruments through one batched quote
// call. Symbols the provider fails to return are skipped and stay stale.
func (s *RefreshService) fetchMarketPrices(assets []model.Asset, now time.Time) []repository.PriceUpdate {
	if len(assets) == 0 {
		return nil
	}

	bySymbol := make(map[string]model.Asset, len(assets))
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		sym := marketdata.NormalizeSymbol(a.Symbol)
		bySymbol[sym] = a
		symbols = append(symbols, sym)
	}

	quotes, err := s.market.FetchLatest(symbols)
	if err != nil {
		s.log.Warn().Err(err).Msg("market quote batch failed, prices stay stale")
		return nil
	}

	updates := make([]repository.PriceUpdate, 0, len(quotes))
	for sym, q := range quotes {
		a, ok := bySymbol[sym]
		if !ok || q.Price <= 0 {
			continue
		}
		updates = append(updates, repository.PriceUpdate{
			AssetID: a.ID,
			Price:   s.localizePrice(a, q),
			At:      now,
		})
	}
	return updates
}

// fetchFundNavs resolves fund NAVs on a bounded worker pool, one provider
// call per scheme code.
func (s *RefreshService) fetchFundNavs(assets []model.Asset, now time.Time) []repository.PriceUpdate {
	if len(assets) == 0 {
		return nil
	}

	var mu sync.Mutex
	var updates []repository.PriceUpdate

	var g errgroup.Group
	g.SetLimit(navFetchConcurrency)
	for _, a := range assets {
		g.Go(func() error {
			q, err := s.nav.FetchLatestNav(a.Symbol)
			if err != nil || q.Price <= 0 {
				s.log.Warn().Err(err).Str("code", a.Symbol).Msg("nav fetch failed, price stays stale")
				return nil
			}
			mu.Lock()
			updates = append(updates, repository.PriceUpdate{AssetID: a.ID, Price: q.Price, At: now})
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return updates
}

// localizePrice converts USD-quoted instruments into the local currency.
// Gold and silver futures are quoted per troy ounce and convert to the
// domestic 10g and 1kg units respectively; other USD quotes (crypto pairs)
// convert at the spot rate.
func (s *RefreshService) localizePrice(a model.Asset, q marketdata.Quote) float64 {
	if !strings.EqualFold(q.Currency, "USD") {
		return q.Price
	}

	rate := s.fx.USDToINR()
	upper := strings.ToUpper(a.Symbol + " " + a.Name)
	switch {
	case strings.Contains(upper, "GOLD") || strings.Contains(upper, "GC="):
		return marketdata.OunceUSDToGrams(q.Price, rate, 10)
	case strings.Contains(upper, "SILVER") || strings.Contains(upper, "SI="):
		return marketdata.OunceUSDToGrams(q.Price, rate, 1000)
	default:
		return q.Price * rate
	}
}
