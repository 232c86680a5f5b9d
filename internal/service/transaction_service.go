package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ameyrk/wealthledger/internal/api/request"
	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/classify"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// BackfillQueue accepts per-user history rebuild jobs. Satisfied by
// worker.Queue.
type BackfillQueue interface {
	Submit(userID string)
}

// TransactionService handles trade creation and deletion. Every trade
// mutation replays the parent holding synchronously and enqueues a history
// rebuild for the user.
type TransactionService struct {
	assetRepo      *repository.AssetRepository
	holdingRepo    *repository.HoldingRepository
	tradeRepo      *repository.TradeRepository
	holdingService *HoldingService
	queue          BackfillQueue
	log            zerolog.Logger
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	assetRepo *repository.AssetRepository,
	holdingRepo *repository.HoldingRepository,
	tradeRepo *repository.TradeRepository,
	holdingService *HoldingService,
	queue BackfillQueue,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		assetRepo:      assetRepo,
		holdingRepo:    holdingRepo,
		tradeRepo:      tradeRepo,
		holdingService: holdingService,
		queue:          queue,
		log:            log,
	}
}

// CreateTrade records a buy or sell for the user. The asset is created on
// first reference, classified from its symbol and name.
func (s *TransactionService) CreateTrade(userID string, req request.CreateTradeRequest) (model.Trade, error) {
	tradeDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return model.Trade{}, err
	}
	quantity, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil {
		return model.Trade{}, err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return model.Trade{}, err
	}

	asset, err := s.resolveAsset(req.Symbol, req.Name)
	if err != nil {
		return model.Trade{}, err
	}

	holding, err := s.holdingRepo.GetOrCreate(userID, asset.ID)
	if err != nil {
		return model.Trade{}, err
	}

	trade, err := s.tradeRepo.Insert(model.Trade{
		HoldingID: holding.ID,
		Type:      model.TradeType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Quantity:  quantity,
		Price:     price,
		Date:      tradeDate,
	})
	if err != nil {
		return model.Trade{}, fmt.Errorf("failed to create trade: %w", err)
	}

	if err := s.holdingService.Recalculate(holding.ID); err != nil {
		return model.Trade{}, fmt.Errorf("failed to recalculate holding: %w", err)
	}

	s.queue.Submit(userID)
	return trade, nil
}

// DeleteTrade removes a trade owned by the user, replays the holding, and
// enqueues a history rebuild.
func (s *TransactionService) DeleteTrade(userID, tradeID string) error {
	ownerID, holdingID, err := s.tradeRepo.OwnerOf(tradeID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return apperrors.ErrTradeNotFound
	}

	if err := s.tradeRepo.Delete(tradeID); err != nil {
		return err
	}

	err = s.holdingService.Recalculate(holdingID)
	if err != nil && !errors.Is(err, apperrors.ErrHoldingNotFound) {
		return fmt.Errorf("failed to recalculate holding: %w", err)
	}

	s.queue.Submit(userID)
	return nil
}

// resolveAsset returns the stored asset for a symbol, creating and
// classifying it on first reference.
func (s *TransactionService) resolveAsset(symbol, name string) (model.Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" {
		name = symbol
	}

	asset, err := s.assetRepo.GetBySymbol(symbol)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, apperrors.ErrAssetNotFound) {
		return model.Asset{}, err
	}

	asset, err = s.assetRepo.Create(model.Asset{
		Symbol:    symbol,
		Name:      name,
		Type:      classify.Classify(symbol, name),
		MarketCap: model.CapMid,
	})
	if err != nil {
		return model.Asset{}, err
	}

	s.log.Info().Str("symbol", symbol).Str("type", string(asset.Type)).Msg("created asset on first trade")
	return asset, nil
}
