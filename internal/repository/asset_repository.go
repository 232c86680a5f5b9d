package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/model"
)

// AssetRepository provides data access methods for the asset table.
// Assets are created lazily on first reference and never deleted; price
// fields are only mutated by the refresher's bulk update.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, symbol, name, asset_type, sector, market_cap, last_price, last_price_at`

// scanAsset scans one asset row, handling nullable sector and price timestamp.
func scanAsset(scan func(dest ...any) error) (model.Asset, error) {
	var a model.Asset
	var sector sql.NullString
	var priceAt sql.NullString

	err := scan(&a.ID, &a.Symbol, &a.Name, &a.Type, &sector, &a.MarketCap, &a.LastPrice, &priceAt)
	if err != nil {
		return model.Asset{}, err
	}

	if sector.Valid {
		a.Sector = sector.String
	}
	if priceAt.Valid && priceAt.String != "" {
		t, err := ParseTime(priceAt.String)
		if err != nil {
			return model.Asset{}, err
		}
		a.LastPriceAt = t
	}
	return a, nil
}

// GetAsset retrieves an asset by ID.
func (r *AssetRepository) GetAsset(assetID string) (model.Asset, error) {
	row := r.db.QueryRow(`SELECT `+assetColumns+` FROM asset WHERE id = ?`, assetID)
	a, err := scanAsset(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to query asset: %w", err)
	}
	return a, nil
}

// GetBySymbol retrieves an asset by its unique symbol.
func (r *AssetRepository) GetBySymbol(symbol string) (model.Asset, error) {
	row := r.db.QueryRow(`SELECT `+assetColumns+` FROM asset WHERE symbol = ?`, symbol)
	a, err := scanAsset(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to query asset: %w", err)
	}
	return a, nil
}

// Search returns up to limit assets whose symbol or name contains the query
// string (case-insensitive).
func (r *AssetRepository) Search(query string, limit int) ([]model.Asset, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.Query(
		`SELECT `+assetColumns+` FROM asset
		 WHERE symbol LIKE ? COLLATE NOCASE OR name LIKE ? COLLATE NOCASE
		 ORDER BY symbol LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// GetAll returns every asset. Used by reclassification.
func (r *AssetRepository) GetAll() ([]model.Asset, error) {
	rows, err := r.db.Query(`SELECT ` + assetColumns + ` FROM asset ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func collectAssets(rows *sql.Rows) ([]model.Asset, error) {
	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Create inserts a new asset. The ID is generated when empty.
func (r *AssetRepository) Create(a model.Asset) (model.Asset, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	var sector any
	if a.Sector != "" {
		sector = a.Sector
	}
	var priceAt any
	if !a.LastPriceAt.IsZero() {
		priceAt = a.LastPriceAt.UTC().Format(time.RFC3339)
	}

	_, err := r.db.Exec(
		`INSERT INTO asset (id, symbol, name, asset_type, sector, market_cap, last_price, last_price_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, a.Name, a.Type, sector, a.MarketCap, a.LastPrice, priceAt,
	)
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to insert asset: %w", err)
	}
	return a, nil
}

// PriceUpdate is one asset price to persist in a bulk write.
type PriceUpdate struct {
	AssetID string
	Price   float64
	At      time.Time
}

// UpdatePrices persists a batch of refreshed prices and their timestamps in
// a single transaction.
func (r *AssetRepository) UpdatePrices(updates []PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin price update: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE asset SET last_price = ?, last_price_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare price update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.Exec(u.Price, u.At.UTC().Format(time.RFC3339), u.AssetID); err != nil {
			return fmt.Errorf("failed to update price for asset %s: %w", u.AssetID, err)
		}
	}

	return tx.Commit()
}

// UpdateType changes an asset's class tag. Used by reclassification.
func (r *AssetRepository) UpdateType(assetID string, assetType model.AssetType) error {
	_, err := r.db.Exec(`UPDATE asset SET asset_type = ? WHERE id = ?`, assetType, assetID)
	if err != nil {
		return fmt.Errorf("failed to update asset type: %w", err)
	}
	return nil
}
