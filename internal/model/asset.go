package model

import "time"

// AssetType categorizes a tradeable instrument. The classifier in
// internal/classify maps raw symbol/name pairs onto these tags.
type AssetType string

// Supported asset classes.
const (
	AssetStock      AssetType = "STOCK"
	AssetMutualFund AssetType = "MF"
	AssetETF        AssetType = "ETF"
	AssetCrypto     AssetType = "CRYPTO"
	AssetCommodity  AssetType = "COMMODITY"
	AssetREIT       AssetType = "REIT"
)

// MarketCap buckets an equity by free-float market capitalization.
type MarketCap string

// Market-cap buckets.
const (
	CapLarge MarketCap = "LARGE"
	CapMid   MarketCap = "MID"
	CapSmall MarketCap = "SMALL"
)

// Asset represents a financial instrument tracked by the system.
// Assets are created lazily on first search/reference and are never deleted;
// only the refresher mutates LastPrice/LastPriceAt.
type Asset struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Type        AssetType `json:"type"`
	Sector      string    `json:"sector,omitempty"`
	MarketCap   MarketCap `json:"marketCapCategory"`
	LastPrice   float64   `json:"lastPrice"`
	LastPriceAt time.Time `json:"lastPriceAt,omitempty"` // zero value means never priced
}
