package model

import "github.com/shopspring/decimal"

// Holding represents a user's position in one asset. Quantity and average
// buy price are a derived cache over the holding's trades: they are
// recomputed by replaying the full trade history and are never edited
// directly. A holding with non-positive quantity is deleted rather than
// persisted, so one row per (user, asset) pair always describes an open
// position.
type Holding struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	AssetID     string          `json:"assetId"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgBuyPrice decimal.Decimal `json:"avgBuyPrice"`
}

// HoldingWithAsset is a holding joined with its asset row. Repositories
// return this shape so services can value positions without N+1 lookups.
type HoldingWithAsset struct {
	Holding
	Asset Asset
}

// Position is a holding joined with its asset and enriched with current
// valuation figures for API responses.
type Position struct {
	AssetID       string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Type          AssetType `json:"type"`
	Sector        string    `json:"sector,omitempty"`
	MarketCap     MarketCap `json:"marketCapCategory"`
	Quantity      float64   `json:"qty"`
	AvgBuyPrice   float64   `json:"avgPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	CurrentValue  float64   `json:"currentValue"`
	InvestedValue float64   `json:"investedValue"`
	Profit        float64   `json:"profit"`
	ProfitPct     float64   `json:"profitPct"`
}

// PortfolioResponse is the payload of GET /api/portfolio.
type PortfolioResponse struct {
	Holdings []Position        `json:"holdings"`
	Summary  PortfolioOverview `json:"summary"`
}

// HoldingDetail is one position with its full trade history.
type HoldingDetail struct {
	Symbol       string      `json:"symbol"`
	Name         string      `json:"name"`
	AvgBuyPrice  float64     `json:"avgPrice"`
	Quantity     float64     `json:"totalQty"`
	CurrentPrice float64     `json:"currentPrice"`
	CurrentValue float64     `json:"currentValue"`
	Trades       []TradeView `json:"transactions"`
}

// TradeView is a trade flattened for API responses.
type TradeView struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Quantity float64 `json:"qty"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
	Total    float64 `json:"total"`
}

// PortfolioOverview is the summary block returned alongside positions.
type PortfolioOverview struct {
	TotalValue    float64 `json:"totalValue"`
	TotalInvested float64 `json:"totalInvested"`
	TotalProfit   float64 `json:"totalProfit"`
}
