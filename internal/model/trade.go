package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the direction of a trade.
type TradeType string

// Trade directions.
const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Trade represents a buy or sell against a holding. Trades are the source
// of truth for holding state: they are immutable once created, except for
// deletion, and every mutation triggers a replay of the parent holding.
type Trade struct {
	ID        string          `json:"id"`
	HoldingID string          `json:"holdingId"`
	Type      TradeType       `json:"type"`
	Quantity  decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

// Total returns the cash value of the trade (quantity x price).
func (t Trade) Total() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}
