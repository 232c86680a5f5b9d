// Package marketdata provides the price source adapters: a chart-API client
// for listed instruments and a per-code NAV client for mutual funds. The
// two universes are routed by symbol shape - purely numeric symbols are
// AMFI fund codes, everything else goes to the market-data provider.
package marketdata

import (
	"strings"
	"time"
	"unicode"
)

// Quote is a point-in-time price for a symbol.
type Quote struct {
	Symbol   string
	Price    float64
	Currency string
}

// PricePoint is one (date, price) sample of a historical series. Dates are
// truncated to midnight UTC.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// MarketClient fetches quotes and daily history for exchange-listed
// symbols (stocks, ETFs, crypto pairs, commodity futures).
type MarketClient interface {
	FetchLatest(symbols []string) (map[string]Quote, error)
	FetchDailyHistory(symbol string, start, end time.Time) ([]PricePoint, error)
}

// NavClient fetches published NAVs for mutual fund scheme codes.
type NavClient interface {
	FetchLatestNav(code string) (Quote, error)
	FetchNavHistory(code string, start, end time.Time) ([]PricePoint, error)
}

// DefaultExchangeSuffix is appended to bare symbols before querying the
// market-data provider. Domestic instruments are assumed to list on the NSE.
const DefaultExchangeSuffix = ".NS"

// GramsPerTroyOunce converts futures prices quoted per troy ounce.
const GramsPerTroyOunce = 31.1035

// IsFundCode reports whether a symbol is a purely numeric fund scheme code.
func IsFundCode(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, r := range symbol {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NormalizeSymbol appends the default exchange suffix to bare symbols.
// Symbols already carrying an exchange suffix or a currency-pair marker are
// returned unchanged.
func NormalizeSymbol(symbol string) string {
	if strings.ContainsAny(symbol, ".-") {
		return symbol
	}
	return symbol + DefaultExchangeSuffix
}

// OunceUSDToGrams converts a per-troy-ounce USD price into a local-currency
// price for the given number of grams (10 for gold, 1000 for silver).
func OunceUSDToGrams(usdPerOunce, fxRate float64, grams float64) float64 {
	return usdPerOunce * fxRate / GramsPerTroyOunce * grams
}
