package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ameyrk/wealthledger/internal/model"
)

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.NewString()
}

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().WithBudget(5000).Build(t, db)
type UserBuilder struct {
	ID            string
	Username      string
	MonthlyBudget float64
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	id := MakeID()
	return &UserBuilder{
		ID:       id,
		Username: "user-" + id[:8],
	}
}

// WithUsername sets a custom username.
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.Username = name
	return b
}

// WithBudget sets the monthly budget.
func (b *UserBuilder) WithBudget(budget float64) *UserBuilder {
	b.MonthlyBudget = budget
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO user (id, username, monthly_budget) VALUES (?, ?, ?)`,
		b.ID, b.Username, b.MonthlyBudget,
	)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return model.User{ID: b.ID, Username: b.Username, MonthlyBudget: b.MonthlyBudget}
}

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	asset := testutil.NewAsset("TCS.NS").
//	    WithType(model.AssetStock).
//	    WithSector("IT").
//	    WithPrice(3500, time.Now()).
//	    Build(t, db)
type AssetBuilder struct {
	ID          string
	Symbol      string
	Name        string
	Type        model.AssetType
	Sector      string
	MarketCap   model.MarketCap
	LastPrice   float64
	LastPriceAt time.Time
}

// NewAsset creates an AssetBuilder with sensible defaults.
func NewAsset(symbol string) *AssetBuilder {
	return &AssetBuilder{
		ID:        MakeID(),
		Symbol:    symbol,
		Name:      symbol,
		Type:      model.AssetStock,
		MarketCap: model.CapMid,
	}
}

// WithName sets a custom display name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithType sets the asset class.
func (b *AssetBuilder) WithType(t model.AssetType) *AssetBuilder {
	b.Type = t
	return b
}

// WithSector sets the sector.
func (b *AssetBuilder) WithSector(sector string) *AssetBuilder {
	b.Sector = sector
	return b
}

// WithPrice sets the last known price and its timestamp.
func (b *AssetBuilder) WithPrice(price float64, at time.Time) *AssetBuilder {
	b.LastPrice = price
	b.LastPriceAt = at
	return b
}

// Build creates the asset in the database and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	var sector any
	if b.Sector != "" {
		sector = b.Sector
	}
	var priceAt any
	if !b.LastPriceAt.IsZero() {
		priceAt = b.LastPriceAt.UTC().Format(time.RFC3339)
	}

	_, err := db.Exec(
		`INSERT INTO asset (id, symbol, name, asset_type, sector, market_cap, last_price, last_price_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Symbol, b.Name, b.Type, sector, b.MarketCap, b.LastPrice, priceAt,
	)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return model.Asset{
		ID: b.ID, Symbol: b.Symbol, Name: b.Name, Type: b.Type,
		Sector: b.Sector, MarketCap: b.MarketCap,
		LastPrice: b.LastPrice, LastPriceAt: b.LastPriceAt,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
type HoldingBuilder struct {
	ID          string
	UserID      string
	AssetID     string
	Quantity    decimal.Decimal
	AvgBuyPrice decimal.Decimal
}

// NewHolding creates a HoldingBuilder linking a user and an asset.
func NewHolding(userID, assetID string) *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		UserID:      userID,
		AssetID:     assetID,
		Quantity:    decimal.Zero,
		AvgBuyPrice: decimal.Zero,
	}
}

// WithPosition sets quantity and average buy price from ints for readable tests.
func (b *HoldingBuilder) WithPosition(qty, avgPrice int64) *HoldingBuilder {
	b.Quantity = decimal.NewFromInt(qty)
	b.AvgBuyPrice = decimal.NewFromInt(avgPrice)
	return b
}

// WithQuantity sets an exact decimal quantity.
func (b *HoldingBuilder) WithQuantity(qty decimal.Decimal) *HoldingBuilder {
	b.Quantity = qty
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO holding (id, user_id, asset_id, quantity, avg_buy_price) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.AssetID, b.Quantity.String(), b.AvgBuyPrice.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		ID: b.ID, UserID: b.UserID, AssetID: b.AssetID,
		Quantity: b.Quantity, AvgBuyPrice: b.AvgBuyPrice,
	}
}

// TradeBuilder provides a fluent interface for creating test trades.
//
// Example usage:
//
//	testutil.NewTrade(holding.ID).Buy(10, 100).OnDate("2024-01-01").Build(t, db)
type TradeBuilder struct {
	ID        string
	HoldingID string
	Type      model.TradeType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
}

// NewTrade creates a TradeBuilder for a holding, defaulting to a buy today.
func NewTrade(holdingID string) *TradeBuilder {
	return &TradeBuilder{
		ID:        MakeID(),
		HoldingID: holdingID,
		Type:      model.TradeBuy,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(100),
		Date:      time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
}

// Buy makes the trade a buy of qty units at price.
func (b *TradeBuilder) Buy(qty, price int64) *TradeBuilder {
	b.Type = model.TradeBuy
	b.Quantity = decimal.NewFromInt(qty)
	b.Price = decimal.NewFromInt(price)
	return b
}

// Sell makes the trade a sell of qty units at price.
func (b *TradeBuilder) Sell(qty, price int64) *TradeBuilder {
	b.Type = model.TradeSell
	b.Quantity = decimal.NewFromInt(qty)
	b.Price = decimal.NewFromInt(price)
	return b
}

// OnDate sets the trade date from a YYYY-MM-DD string.
func (b *TradeBuilder) OnDate(date string) *TradeBuilder {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(fmt.Sprintf("invalid test trade date %q: %v", date, err))
	}
	b.Date = d
	b.CreatedAt = d
	return b
}

// Build creates the trade in the database and returns it.
func (b *TradeBuilder) Build(t *testing.T, db *sql.DB) model.Trade {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO trade (id, holding_id, type, quantity, price, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.HoldingID, b.Type, b.Quantity.String(), b.Price.String(),
		b.Date.Format("2006-01-02"), b.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}

	return model.Trade{
		ID: b.ID, HoldingID: b.HoldingID, Type: b.Type,
		Quantity: b.Quantity, Price: b.Price, Date: b.Date, CreatedAt: b.CreatedAt,
	}
}

// SnapshotBuilder provides a fluent interface for creating test snapshots.
type SnapshotBuilder struct {
	ID            string
	UserID        string
	Date          time.Time
	TotalValue    float64
	InvestedValue float64
	Benchmark     *float64
}

// NewSnapshot creates a SnapshotBuilder for a user on a YYYY-MM-DD date.
func NewSnapshot(userID, date string) *SnapshotBuilder {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(fmt.Sprintf("invalid test snapshot date %q: %v", date, err))
	}
	return &SnapshotBuilder{ID: MakeID(), UserID: userID, Date: d}
}

// WithValues sets total and invested value.
func (b *SnapshotBuilder) WithValues(total, invested float64) *SnapshotBuilder {
	b.TotalValue = total
	b.InvestedValue = invested
	return b
}

// WithBenchmark sets the optional benchmark value.
func (b *SnapshotBuilder) WithBenchmark(v float64) *SnapshotBuilder {
	b.Benchmark = &v
	return b
}

// Build creates the snapshot in the database and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.PortfolioSnapshot {
	t.Helper()

	var benchmark any
	if b.Benchmark != nil {
		benchmark = *b.Benchmark
	}

	_, err := db.Exec(
		`INSERT INTO portfolio_snapshot (id, user_id, date, total_value, invested_value, benchmark_value)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Date.Format("2006-01-02"), b.TotalValue, b.InvestedValue, benchmark,
	)
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}

	return model.PortfolioSnapshot{
		ID: b.ID, UserID: b.UserID, Date: b.Date,
		TotalValue: b.TotalValue, InvestedValue: b.InvestedValue, BenchmarkValue: b.Benchmark,
	}
}

// ExpenseBuilder provides a fluent interface for creating test expenses.
type ExpenseBuilder struct {
	ID          string
	UserID      string
	CategoryID  string
	Amount      float64
	Description string
	Date        time.Time
}

// NewExpense creates an ExpenseBuilder for a user.
func NewExpense(userID string, amount float64) *ExpenseBuilder {
	return &ExpenseBuilder{
		ID:          MakeID(),
		UserID:      userID,
		Amount:      amount,
		Description: "test expense",
		Date:        time.Now().UTC(),
	}
}

// WithCategory links a category by id.
func (b *ExpenseBuilder) WithCategory(categoryID string) *ExpenseBuilder {
	b.CategoryID = categoryID
	return b
}

// OnDate sets the expense date from a YYYY-MM-DD string.
func (b *ExpenseBuilder) OnDate(date string) *ExpenseBuilder {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(fmt.Sprintf("invalid test expense date %q: %v", date, err))
	}
	b.Date = d
	return b
}

// Build creates the expense in the database and returns it.
func (b *ExpenseBuilder) Build(t *testing.T, db *sql.DB) model.Expense {
	t.Helper()

	var categoryID any
	if b.CategoryID != "" {
		categoryID = b.CategoryID
	}

	_, err := db.Exec(
		`INSERT INTO expense (id, user_id, category_id, amount, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, categoryID, b.Amount, b.Description, b.Date.Format("2006-01-02"),
	)
	if err != nil {
		t.Fatalf("Failed to create test expense: %v", err)
	}

	return model.Expense{
		ID: b.ID, UserID: b.UserID, CategoryID: b.CategoryID,
		Amount: b.Amount, Description: b.Description, Date: b.Date,
	}
}

// CreateCategory inserts a category row directly.
func CreateCategory(t *testing.T, db *sql.DB, userID, name string) model.Category {
	t.Helper()

	c := model.Category{ID: MakeID(), UserID: userID, Name: name}
	if _, err := db.Exec(
		`INSERT INTO category (id, user_id, name) VALUES (?, ?, ?)`,
		c.ID, c.UserID, c.Name,
	); err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return c
}
