package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE user (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			monthly_budget FLOAT NOT NULL DEFAULT 0
		);

		CREATE TABLE asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(50) NOT NULL UNIQUE,
			name VARCHAR(200) NOT NULL,
			asset_type VARCHAR(20) NOT NULL,
			sector VARCHAR(100),
			market_cap VARCHAR(10) NOT NULL DEFAULT 'MID',
			last_price FLOAT NOT NULL DEFAULT 0,
			last_price_at DATETIME
		);

		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			asset_id VARCHAR(36) NOT NULL,
			quantity TEXT NOT NULL,
			avg_buy_price TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE,
			FOREIGN KEY(asset_id) REFERENCES asset(id),
			CONSTRAINT unique_user_asset UNIQUE (user_id, asset_id)
		);

		CREATE TABLE trade (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			holding_id VARCHAR(36) NOT NULL,
			type VARCHAR(4) NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT NOT NULL,
			date DATE NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY(holding_id) REFERENCES holding(id) ON DELETE CASCADE
		);

		CREATE TABLE portfolio_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			total_value FLOAT NOT NULL,
			invested_value FLOAT NOT NULL,
			benchmark_value FLOAT,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE,
			CONSTRAINT unique_user_date UNIQUE (user_id, date)
		);

		CREATE TABLE category (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE,
			CONSTRAINT unique_user_category UNIQUE (user_id, name)
		);

		CREATE TABLE expense (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			category_id VARCHAR(36),
			amount FLOAT NOT NULL,
			description TEXT NOT NULL,
			date DATE NOT NULL,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE,
			FOREIGN KEY(category_id) REFERENCES category(id) ON DELETE SET NULL
		);

		CREATE INDEX idx_holding_user ON holding(user_id);
		CREATE INDEX idx_trade_holding ON trade(holding_id);
		CREATE INDEX idx_trade_date ON trade(date);
		CREATE INDEX idx_snapshot_user_date ON portfolio_snapshot(user_id, date);
		CREATE INDEX idx_expense_user_date ON expense(user_id, date);
		CREATE INDEX idx_asset_symbol ON asset(symbol);
	`

	_, err := db.Exec(schema)
	return err
}
