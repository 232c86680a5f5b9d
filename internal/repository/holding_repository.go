package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// Quantities and average prices are stored as decimal strings so replays
// never accumulate float error.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

func scanHolding(scan func(dest ...any) error) (model.Holding, error) {
	var h model.Holding
	var qty, avg string

	if err := scan(&h.ID, &h.UserID, &h.AssetID, &qty, &avg); err != nil {
		return model.Holding{}, err
	}

	var err error
	if h.Quantity, err = decimal.NewFromString(qty); err != nil {
		return model.Holding{}, fmt.Errorf("invalid stored quantity %q: %w", qty, err)
	}
	if h.AvgBuyPrice, err = decimal.NewFromString(avg); err != nil {
		return model.Holding{}, fmt.Errorf("invalid stored avg price %q: %w", avg, err)
	}
	return h, nil
}

// GetHolding retrieves a holding by ID.
func (r *HoldingRepository) GetHolding(holdingID string) (model.Holding, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, asset_id, quantity, avg_buy_price FROM holding WHERE id = ?`,
		holdingID,
	)
	h, err := scanHolding(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding: %w", err)
	}
	return h, nil
}

// GetByUserAndAsset retrieves the user's holding for an asset, if any.
func (r *HoldingRepository) GetByUserAndAsset(userID, assetID string) (model.Holding, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, asset_id, quantity, avg_buy_price FROM holding
		 WHERE user_id = ? AND asset_id = ?`,
		userID, assetID,
	)
	h, err := scanHolding(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding: %w", err)
	}
	return h, nil
}

// GetOrCreate returns the user's holding for an asset, creating an empty one
// when none exists yet.
func (r *HoldingRepository) GetOrCreate(userID, assetID string) (model.Holding, error) {
	h, err := r.GetByUserAndAsset(userID, assetID)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, apperrors.ErrHoldingNotFound) {
		return model.Holding{}, err
	}

	h = model.Holding{
		ID:          uuid.NewString(),
		UserID:      userID,
		AssetID:     assetID,
		Quantity:    decimal.Zero,
		AvgBuyPrice: decimal.Zero,
	}
	_, err = r.db.Exec(
		`INSERT INTO holding (id, user_id, asset_id, quantity, avg_buy_price) VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.AssetID, h.Quantity.String(), h.AvgBuyPrice.String(),
	)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to insert holding: %w", err)
	}
	return h, nil
}

// ListByUser returns all of the user's holdings joined with their assets,
// ordered by symbol.
func (r *HoldingRepository) ListByUser(userID string) ([]model.HoldingWithAsset, error) {
	rows, err := r.db.Query(
		`SELECT h.id, h.user_id, h.asset_id, h.quantity, h.avg_buy_price,
		        a.id, a.symbol, a.name, a.asset_type, a.sector, a.market_cap, a.last_price, a.last_price_at
		 FROM holding h
		 JOIN asset a ON a.id = h.asset_id
		 WHERE h.user_id = ?
		 ORDER BY a.symbol`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []model.HoldingWithAsset{}
	for rows.Next() {
		var hw model.HoldingWithAsset
		var qty, avg string
		var sector, priceAt sql.NullString

		err := rows.Scan(
			&hw.ID, &hw.UserID, &hw.AssetID, &qty, &avg,
			&hw.Asset.ID, &hw.Asset.Symbol, &hw.Asset.Name, &hw.Asset.Type,
			&sector, &hw.Asset.MarketCap, &hw.Asset.LastPrice, &priceAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		if hw.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("invalid stored quantity %q: %w", qty, err)
		}
		if hw.AvgBuyPrice, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("invalid stored avg price %q: %w", avg, err)
		}
		if sector.Valid {
			hw.Asset.Sector = sector.String
		}
		if priceAt.Valid && priceAt.String != "" {
			t, err := ParseTime(priceAt.String)
			if err != nil {
				return nil, err
			}
			hw.Asset.LastPriceAt = t
		}

		holdings = append(holdings, hw)
	}
	return holdings, rows.Err()
}

// Update persists a recalculated quantity and average buy price.
func (r *HoldingRepository) Update(holdingID string, quantity, avgBuyPrice decimal.Decimal) error {
	result, err := r.db.Exec(
		`UPDATE holding SET quantity = ?, avg_buy_price = ? WHERE id = ?`,
		quantity.String(), avgBuyPrice.String(), holdingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check holding update: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// Delete removes a holding. Its trades go with it via the foreign key cascade.
func (r *HoldingRepository) Delete(holdingID string) error {
	result, err := r.db.Exec(`DELETE FROM holding WHERE id = ?`, holdingID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check holding delete: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}
