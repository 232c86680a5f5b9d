package service

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// HoldingService owns the position ledger. A holding's quantity and average
// cost are never patched incrementally; every mutation replays the full
// trade history so the stored state is always derivable from the trades.
type HoldingService struct {
	holdingRepo *repository.HoldingRepository
	tradeRepo   *repository.TradeRepository
	log         zerolog.Logger
}

// NewHoldingService creates a new HoldingService with the provided repository dependencies.
func NewHoldingService(
	holdingRepo *repository.HoldingRepository,
	tradeRepo *repository.TradeRepository,
	log zerolog.Logger,
) *HoldingService {
	return &HoldingService{
		holdingRepo: holdingRepo,
		tradeRepo:   tradeRepo,
		log:         log,
	}
}

// Recalculate replays a holding's trades in date order and persists the
// resulting quantity and average buy price. Buys add quantity and cost,
// sells subtract quantity only. A holding whose replayed quantity drops to
// zero or below is a closed position and is deleted.
func (s *HoldingService) Recalculate(holdingID string) error {
	trades, err := s.tradeRepo.ListByHolding(holdingID)
	if err != nil {
		return fmt.Errorf("failed to load trades for recalculation: %w", err)
	}

	quantity := decimal.Zero
	cost := decimal.Zero
	for _, t := range trades {
		switch t.Type {
		case model.TradeBuy:
			quantity = quantity.Add(t.Quantity)
			cost = cost.Add(t.Quantity.Mul(t.Price))
		case model.TradeSell:
			quantity = quantity.Sub(t.Quantity)
		}
	}

	if quantity.Sign() <= 0 {
		s.log.Debug().Str("holding_id", holdingID).Msg("position closed, deleting holding")
		return s.holdingRepo.Delete(holdingID)
	}

	avg := cost.Div(quantity)
	return s.holdingRepo.Update(holdingID, quantity, avg)
}
