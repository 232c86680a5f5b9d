package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

func flow(t *testing.T, typ model.TradeType, qty, price int64, date string) repository.TradeWithSymbol {
	t.Helper()
	return repository.TradeWithSymbol{
		Trade: model.Trade{
			Type:     typ,
			Quantity: decimal.NewFromInt(qty),
			Price:    decimal.NewFromInt(price),
			Date:     mustDate(t, date),
		},
		Symbol: "TCS",
	}
}

func TestPortfolioXIRR(t *testing.T) {
	t.Run("no trades", func(t *testing.T) {
		assert.Zero(t, portfolioXIRR(nil, 1000, mustDate(t, "2024-01-01")))
	})

	t.Run("only buys with worthless holdings", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 10, 100, "2023-01-01"),
		}
		// No positive flow exists, so no rate is defined.
		assert.Zero(t, portfolioXIRR(trades, 0, mustDate(t, "2024-01-01")))
	})

	t.Run("ten percent over one year", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 10, 100, "2023-01-01"),
		}
		got := portfolioXIRR(trades, 1100, mustDate(t, "2024-01-01"))
		assert.InDelta(t, 10.0, got, 0.2)
	})

	t.Run("doubling over one year", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 10, 100, "2023-01-01"),
		}
		got := portfolioXIRR(trades, 2000, mustDate(t, "2024-01-01"))
		assert.InDelta(t, 100.0, got, 0.5)
	})

	t.Run("loss over one year", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 10, 100, "2023-01-01"),
		}
		got := portfolioXIRR(trades, 800, mustDate(t, "2024-01-01"))
		assert.InDelta(t, -20.0, got, 0.5)
	})

	t.Run("same day round trip at cost", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 10, 100, "2023-06-15"),
			flow(t, model.TradeSell, 10, 100, "2023-06-15"),
		}
		// Every year fraction is zero, so NPV is flat in the rate; the
		// simple return is the only defensible answer.
		assert.Zero(t, portfolioXIRR(trades, 0, mustDate(t, "2023-06-15")))
	})

	t.Run("realized sell plus terminal value", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 20, 100, "2022-01-01"),
			flow(t, model.TradeSell, 10, 110, "2023-01-01"),
		}
		got := portfolioXIRR(trades, 1200, mustDate(t, "2024-01-01"))
		// Outflow 2000, inflows 1100 after one year and 1200 after two.
		// The rate solving that NPV is roughly 9.6 percent.
		assert.InDelta(t, 9.6, got, 0.5)
	})

	t.Run("closed portfolio skips terminal flow", func(t *testing.T) {
		trades := []repository.TradeWithSymbol{
			flow(t, model.TradeBuy, 10, 100, "2023-01-01"),
			flow(t, model.TradeSell, 10, 150, "2024-01-01"),
		}
		got := portfolioXIRR(trades, 0, mustDate(t, "2025-01-01"))
		assert.InDelta(t, 50.0, got, 0.5)
	})
}
