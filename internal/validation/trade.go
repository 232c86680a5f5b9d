package validation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ameyrk/wealthledger/internal/api/request"
	"github.com/ameyrk/wealthledger/internal/model"
)

// ValidateCreateTrade validates a trade creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - symbol: Must be non-empty
//   - type: Must be BUY or SELL
//   - qty: Must be a positive decimal
//   - price: Must be a non-negative decimal
//   - date: Must be in YYYY-MM-DD format
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTrade(req request.CreateTradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	tradeType := model.TradeType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if tradeType != model.TradeBuy && tradeType != model.TradeSell {
		errors["type"] = "type must be BUY or SELL"
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil {
		errors["qty"] = "qty not a valid number"
	} else if qty.Sign() <= 0 {
		errors["qty"] = "qty must be positive"
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		errors["price"] = "price not a valid number"
	} else if price.Sign() < 0 {
		errors["price"] = "price must not be negative"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
