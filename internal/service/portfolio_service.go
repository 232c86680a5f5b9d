package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/classify"
	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// searchResultLimit caps the local search; the provider lookup only kicks in
// when the local index comes up short.
const searchResultLimit = 5

// PortfolioService assembles the portfolio views: valued positions, holding
// detail, and asset search with lazy asset creation.
type PortfolioService struct {
	assetRepo   *repository.AssetRepository
	holdingRepo *repository.HoldingRepository
	tradeRepo   *repository.TradeRepository
	refresh     *RefreshService
	market      marketdata.MarketClient
	log         zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	assetRepo *repository.AssetRepository,
	holdingRepo *repository.HoldingRepository,
	tradeRepo *repository.TradeRepository,
	refresh *RefreshService,
	market marketdata.MarketClient,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		assetRepo:   assetRepo,
		holdingRepo: holdingRepo,
		tradeRepo:   tradeRepo,
		refresh:     refresh,
		market:      market,
		log:         log,
	}
}

// GetPortfolio returns the user's valued positions and summary totals. A
// refresh pass runs first; the staleness cooldown makes it free when prices
// are current, and a failed refresh only means slightly stale prices.
func (s *PortfolioService) GetPortfolio(userID string) (model.PortfolioResponse, error) {
	if err := s.refresh.RefreshUser(userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("refresh before portfolio read failed")
	}

	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return model.PortfolioResponse{}, fmt.Errorf("failed to load holdings: %w", err)
	}

	positions := make([]model.Position, 0, len(holdings))
	var overview model.PortfolioOverview
	for _, h := range holdings {
		qty, _ := h.Quantity.Float64()
		avg, _ := h.AvgBuyPrice.Float64()

		currentValue := qty * h.Asset.LastPrice
		investedValue := qty * avg
		profit := currentValue - investedValue
		var profitPct float64
		if investedValue > 0 {
			profitPct = profit / investedValue * 100
		}

		positions = append(positions, model.Position{
			AssetID:       h.Asset.ID,
			Symbol:        h.Asset.Symbol,
			Name:          h.Asset.Name,
			Type:          h.Asset.Type,
			Sector:        h.Asset.Sector,
			MarketCap:     h.Asset.MarketCap,
			Quantity:      qty,
			AvgBuyPrice:   avg,
			CurrentPrice:  h.Asset.LastPrice,
			CurrentValue:  round2(currentValue),
			InvestedValue: round2(investedValue),
			Profit:        round2(profit),
			ProfitPct:     round2(profitPct),
		})

		overview.TotalValue += currentValue
		overview.TotalInvested += investedValue
	}

	overview.TotalValue = round2(overview.TotalValue)
	overview.TotalInvested = round2(overview.TotalInvested)
	overview.TotalProfit = round2(overview.TotalValue - overview.TotalInvested)

	return model.PortfolioResponse{Holdings: positions, Summary: overview}, nil
}

// GetHoldingDetail returns one position with its trades, newest first.
func (s *PortfolioService) GetHoldingDetail(userID, assetID string) (model.HoldingDetail, error) {
	holding, err := s.holdingRepo.GetByUserAndAsset(userID, assetID)
	if err != nil {
		return model.HoldingDetail{}, err
	}
	asset, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.HoldingDetail{}, err
	}
	trades, err := s.tradeRepo.ListByHolding(holding.ID)
	if err != nil {
		return model.HoldingDetail{}, err
	}

	views := make([]model.TradeView, 0, len(trades))
	for i := len(trades) - 1; i >= 0; i-- {
		t := trades[i]
		qty, _ := t.Quantity.Float64()
		price, _ := t.Price.Float64()
		total, _ := t.Total().Float64()
		views = append(views, model.TradeView{
			ID:       t.ID,
			Type:     string(t.Type),
			Quantity: qty,
			Price:    price,
			Date:     t.Date.Format("2006-01-02"),
			Total:    total,
		})
	}

	qty, _ := holding.Quantity.Float64()
	avg, _ := holding.AvgBuyPrice.Float64()
	return model.HoldingDetail{
		Symbol:       asset.Symbol,
		Name:         asset.Name,
		AvgBuyPrice:  avg,
		Quantity:     qty,
		CurrentPrice: asset.LastPrice,
		CurrentValue: round2(qty * asset.LastPrice),
		Trades:       views,
	}, nil
}

// SearchAssets searches the local asset index, and when that comes up short
// for a plausible symbol, quotes the provider and creates the asset on the
// spot, classified from its symbol and name.
func (s *PortfolioService) SearchAssets(query string) ([]model.Asset, error) {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return []model.Asset{}, nil
	}

	results, err := s.assetRepo.Search(query, searchResultLimit)
	if err != nil {
		return nil, err
	}
	if len(results) >= 3 || len(query) <= 2 {
		return results, nil
	}

	created, ok := s.lookupAndCreate(query)
	if ok {
		results = append(results, created)
	}
	return results, nil
}

// lookupAndCreate quotes the provider for an unknown symbol and stores it.
// Provider misses are expected for free-text queries and are not errors.
func (s *PortfolioService) lookupAndCreate(query string) (model.Asset, bool) {
	symbol := marketdata.NormalizeSymbol(query)
	if _, err := s.assetRepo.GetBySymbol(symbol); err == nil {
		return model.Asset{}, false
	}

	quotes, err := s.market.FetchLatest([]string{symbol})
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("provider lookup failed during search")
		return model.Asset{}, false
	}
	q, ok := quotes[symbol]
	if !ok || q.Price <= 0 {
		return model.Asset{}, false
	}

	asset, err := s.assetRepo.Create(model.Asset{
		Symbol:    symbol,
		Name:      query,
		Type:      classify.Classify(symbol, query),
		MarketCap: model.CapMid,
		LastPrice: q.Price,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to create asset from search")
		return model.Asset{}, false
	}
	return asset, true
}

// Reclassify re-runs the classifier over every stored asset and persists
// changed tags. Idempotent: a second run changes nothing.
func (s *PortfolioService) Reclassify() (int, error) {
	assets, err := s.assetRepo.GetAll()
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, a := range assets {
		want := classify.Classify(a.Symbol, a.Name)
		if want == a.Type {
			continue
		}
		if err := s.assetRepo.UpdateType(a.ID, want); err != nil {
			return changed, err
		}
		s.log.Info().Str("symbol", a.Symbol).
			Str("from", string(a.Type)).Str("to", string(want)).
			Msg("asset reclassified")
		changed++
	}
	return changed, nil
}
