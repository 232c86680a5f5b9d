package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/model"
)

// UserRepository provides data access methods for the user table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(userID string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(
		`SELECT id, username, monthly_budget FROM user WHERE id = ?`, userID,
	).Scan(&u.ID, &u.Username, &u.MonthlyBudget)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new user and returns it.
func (r *UserRepository) CreateUser(username string) (model.User, error) {
	u := model.User{ID: uuid.NewString(), Username: username}
	_, err := r.db.Exec(
		`INSERT INTO user (id, username, monthly_budget) VALUES (?, ?, 0)`,
		u.ID, u.Username,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// ListUserIDs returns the IDs of all users. Used by the nightly backfill
// sweep.
func (r *UserRepository) ListUserIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM user`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateBudget sets a user's monthly budget.
func (r *UserRepository) UpdateBudget(userID string, budget float64) error {
	result, err := r.db.Exec(
		`UPDATE user SET monthly_budget = ? WHERE id = ?`, budget, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
