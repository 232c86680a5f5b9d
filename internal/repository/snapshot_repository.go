package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ameyrk/wealthledger/internal/model"
)

// SnapshotRepository provides data access methods for the portfolio_snapshot
// table, the materialized daily history the analytics layer reads.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ListByUser returns the user's snapshots in ascending date order.
func (r *SnapshotRepository) ListByUser(userID string) ([]model.PortfolioSnapshot, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, date, total_value, invested_value, benchmark_value
		 FROM portfolio_snapshot WHERE user_id = ? ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.PortfolioSnapshot{}
	for rows.Next() {
		var s model.PortfolioSnapshot
		var date string
		var benchmark sql.NullFloat64

		if err := rows.Scan(&s.ID, &s.UserID, &date, &s.TotalValue, &s.InvestedValue, &benchmark); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if s.Date, err = ParseTime(date); err != nil {
			return nil, err
		}
		if benchmark.Valid {
			v := benchmark.Float64
			s.BenchmarkValue = &v
		}

		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// ReplaceForUser atomically swaps the user's entire snapshot history for the
// provided set. Readers never observe a partially rebuilt history.
func (r *SnapshotRepository) ReplaceForUser(userID string, snapshots []model.PortfolioSnapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM portfolio_snapshot WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO portfolio_snapshot (id, user_id, date, total_value, invested_value, benchmark_value)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		var benchmark any
		if s.BenchmarkValue != nil {
			benchmark = *s.BenchmarkValue
		}
		_, err := stmt.Exec(id, userID, s.Date.Format(dateFormat), s.TotalValue, s.InvestedValue, benchmark)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", s.Date.Format(dateFormat), err)
		}
	}

	return tx.Commit()
}
