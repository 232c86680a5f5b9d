// Package classify maps raw symbol/name pairs onto asset classes using an
// ordered heuristic rule chain. The ordering is deliberate: a purely numeric
// symbol is always a mutual fund code, regardless of what the display name
// contains, and commodity tokens beat the generic ETF rule so GOLDBEES-style
// instruments land in the commodity bucket.
package classify

import (
	"strings"
	"unicode"

	"github.com/ameyrk/wealthledger/internal/model"
)

// fund-family tokens that mark an instrument as an ETF even when the name
// omits the literal "ETF".
var etfMarkers = []string{"ETF", "BEES", "MON100"}

// Classify returns the asset class for a symbol/name pair. First matching
// rule wins. Inputs are case-normalized; the function is pure and never
// fails.
func Classify(symbol, name string) model.AssetType {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	nm := strings.ToUpper(strings.TrimSpace(name))

	// 1. Purely numeric symbols are AMFI scheme codes.
	if isNumeric(sym) {
		return model.AssetMutualFund
	}

	// 2. Currency-pair suffix marks crypto.
	if strings.Contains(sym, "-USD") {
		return model.AssetCrypto
	}

	// 3. Precious metals, including sovereign gold bonds.
	if strings.Contains(nm, "GOLD") || strings.Contains(nm, "SILVER") ||
		strings.Contains(sym, "GOLD") || strings.Contains(sym, "SILVER") ||
		strings.Contains(sym, "SGB") {
		return model.AssetCommodity
	}

	// 4. REITs by name.
	if strings.Contains(nm, "REIT") {
		return model.AssetREIT
	}

	// 5. ETFs by name or fund-family marker.
	for _, marker := range etfMarkers {
		if strings.Contains(nm, marker) || strings.Contains(sym, marker) {
			return model.AssetETF
		}
	}

	return model.AssetStock
}

// isNumeric reports whether s is non-empty and consists only of digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
