package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/model"
)

// TradeRepository provides data access methods for the trade table.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

const dateFormat = "2006-01-02"

func scanTrade(scan func(dest ...any) error) (model.Trade, error) {
	var t model.Trade
	var qty, price, date, created string

	if err := scan(&t.ID, &t.HoldingID, &t.Type, &qty, &price, &date, &created); err != nil {
		return model.Trade{}, err
	}

	var err error
	if t.Quantity, err = decimal.NewFromString(qty); err != nil {
		return model.Trade{}, fmt.Errorf("invalid stored quantity %q: %w", qty, err)
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return model.Trade{}, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	if t.Date, err = ParseTime(date); err != nil {
		return model.Trade{}, err
	}
	if t.CreatedAt, err = ParseTime(created); err != nil {
		return model.Trade{}, err
	}
	return t, nil
}

// GetTrade retrieves a trade by ID.
func (r *TradeRepository) GetTrade(tradeID string) (model.Trade, error) {
	row := r.db.QueryRow(
		`SELECT id, holding_id, type, quantity, price, date, created_at FROM trade WHERE id = ?`,
		tradeID,
	)
	t, err := scanTrade(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trade{}, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return model.Trade{}, fmt.Errorf("failed to query trade: %w", err)
	}
	return t, nil
}

// Insert persists a new trade. The ID and creation time are filled in when
// empty.
func (r *TradeRepository) Insert(t model.Trade) (model.Trade, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO trade (id, holding_id, type, quantity, price, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.HoldingID, t.Type, t.Quantity.String(), t.Price.String(),
		t.Date.Format(dateFormat), t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.Trade{}, fmt.Errorf("failed to insert trade: %w", err)
	}
	return t, nil
}

// Delete removes a trade.
func (r *TradeRepository) Delete(tradeID string) error {
	result, err := r.db.Exec(`DELETE FROM trade WHERE id = ?`, tradeID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check trade delete: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// ListByHolding returns a holding's trades in chronological order, creation
// time breaking ties between same-day trades.
func (r *TradeRepository) ListByHolding(holdingID string) ([]model.Trade, error) {
	rows, err := r.db.Query(
		`SELECT id, holding_id, type, quantity, price, date, created_at
		 FROM trade WHERE holding_id = ? ORDER BY date, created_at`,
		holdingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := []model.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// TradeWithSymbol is a trade joined with its asset's symbol and class, the
// shape the history rebuild and return computations consume.
type TradeWithSymbol struct {
	model.Trade
	AssetID   string
	Symbol    string
	AssetType model.AssetType
}

// ListByUser returns every trade across all of the user's holdings, joined
// with asset identity, in chronological order.
func (r *TradeRepository) ListByUser(userID string) ([]TradeWithSymbol, error) {
	rows, err := r.db.Query(
		`SELECT t.id, t.holding_id, t.type, t.quantity, t.price, t.date, t.created_at,
		        a.id, a.symbol, a.asset_type
		 FROM trade t
		 JOIN holding h ON h.id = t.holding_id
		 JOIN asset a ON a.id = h.asset_id
		 WHERE h.user_id = ?
		 ORDER BY t.date, t.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user trades: %w", err)
	}
	defer rows.Close()

	trades := []TradeWithSymbol{}
	for rows.Next() {
		var tw TradeWithSymbol
		var qty, price, date, created string

		err := rows.Scan(
			&tw.ID, &tw.HoldingID, &tw.Type, &qty, &price, &date, &created,
			&tw.AssetID, &tw.Symbol, &tw.AssetType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		if tw.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("invalid stored quantity %q: %w", qty, err)
		}
		if tw.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
		}
		if tw.Date, err = ParseTime(date); err != nil {
			return nil, err
		}
		if tw.CreatedAt, err = ParseTime(created); err != nil {
			return nil, err
		}

		trades = append(trades, tw)
	}
	return trades, rows.Err()
}

// OwnerOf returns the user ID and holding ID a trade belongs to.
func (r *TradeRepository) OwnerOf(tradeID string) (userID, holdingID string, err error) {
	row := r.db.QueryRow(
		`SELECT h.user_id, h.id FROM trade t JOIN holding h ON h.id = t.holding_id WHERE t.id = ?`,
		tradeID,
	)
	err = row.Scan(&userID, &holdingID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", apperrors.ErrTradeNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query trade owner: %w", err)
	}
	return userID, holdingID, nil
}
