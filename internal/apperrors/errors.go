package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAssetNotFound indicates that an asset with the given ID or symbol does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrHoldingNotFound indicates that a holding for the given user/asset does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrTradeNotFound indicates that a trade with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrExpenseNotFound indicates that an expense with the given ID does not exist.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrCategoryNotFound indicates that an expense category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidTradeType indicates a trade direction other than BUY or SELL.
	ErrInvalidTradeType = errors.New("invalid trade type")

	// ErrNonPositiveQuantity indicates a trade quantity that is zero or negative.
	ErrNonPositiveQuantity = errors.New("quantity must be positive")

	// ErrNegativeAmount indicates an amount field with an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Provider errors represent failures of the external price-data sources.
// They are recovered locally: the affected symbol is skipped and logged, and
// the failure never propagates to an API caller.
var (
	// ErrPriceUnavailable indicates that no current price could be obtained for a symbol.
	ErrPriceUnavailable = errors.New("price not available")

	// ErrNoPriceHistory indicates that a provider returned no historical series.
	ErrNoPriceHistory = errors.New("no price history returned")
)
