package service

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/cache"
	"github.com/ameyrk/wealthledger/internal/marketdata"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

const (
	usdInrSymbol = "INR=X"

	// fallbackUSDINR is the rate of last resort when the provider is down
	// and no rate was ever persisted.
	fallbackUSDINR = 87.0

	fxCacheKey = "fx:usd-inr"
	fxCacheTTL = 3 * time.Hour
)

// FXService resolves the USD to INR conversion rate used to price
// dollar-quoted assets. Resolution order is in-process cache, live
// provider, last persisted rate, hardcoded fallback.
type FXService struct {
	market    marketdata.MarketClient
	assetRepo *repository.AssetRepository
	cache     *cache.Cache
	log       zerolog.Logger
}

// NewFXService creates a new FXService with the provided dependencies.
func NewFXService(
	market marketdata.MarketClient,
	assetRepo *repository.AssetRepository,
	c *cache.Cache,
	log zerolog.Logger,
) *FXService {
	return &FXService{
		market:    market,
		assetRepo: assetRepo,
		cache:     c,
		log:       log,
	}
}

// USDToINR returns the current USD to INR rate. Never fails; degraded
// sources are logged and the next source tried.
func (s *FXService) USDToINR() float64 {
	if v, ok := s.cache.Get(fxCacheKey); ok {
		return v.(float64)
	}

	quotes, err := s.market.FetchLatest([]string{usdInrSymbol})
	if err == nil {
		if q, ok := quotes[usdInrSymbol]; ok && q.Price > 0 {
			s.cache.Set(fxCacheKey, q.Price, fxCacheTTL)
			s.persistRate(q.Price)
			return q.Price
		}
	}
	s.log.Warn().Err(err).Msg("fx provider unavailable, trying persisted rate")

	if rate, ok := s.persistedRate(); ok {
		s.cache.Set(fxCacheKey, rate, fxCacheTTL)
		return rate
	}

	s.log.Warn().Float64("rate", fallbackUSDINR).Msg("no persisted fx rate, using fallback")
	return fallbackUSDINR
}

// persistRate stores the fetched rate on the INR=X asset row so it survives
// restarts as the provider-down fallback.
func (s *FXService) persistRate(rate float64) {
	now := time.Now().UTC()

	a, err := s.assetRepo.GetBySymbol(usdInrSymbol)
	if errors.Is(err, apperrors.ErrAssetNotFound) {
		_, err = s.assetRepo.Create(model.Asset{
			Symbol:      usdInrSymbol,
			Name:        "USD/INR",
			Type:        model.AssetCommodity,
			LastPrice:   rate,
			LastPriceAt: now,
		})
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to persist fx rate")
		}
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to persist fx rate")
		return
	}

	if err := s.assetRepo.UpdatePrices([]repository.PriceUpdate{{AssetID: a.ID, Price: rate, At: now}}); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist fx rate")
	}
}

func (s *FXService) persistedRate() (float64, bool) {
	a, err := s.assetRepo.GetBySymbol(usdInrSymbol)
	if err != nil || a.LastPrice <= 0 {
		return 0, false
	}
	return a.LastPrice, true
}
