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

// ExpenseRepository provides data access methods for the expense and
// category tables.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository with the provided database connection.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ListByUser returns the user's expenses joined with category names, newest
// first.
func (r *ExpenseRepository) ListByUser(userID string, limit int) ([]model.Expense, error) {
	rows, err := r.db.Query(
		`SELECT e.id, e.user_id, e.category_id, COALESCE(c.name, ''), e.amount, e.description, e.date
		 FROM expense e
		 LEFT JOIN category c ON c.id = e.category_id
		 WHERE e.user_id = ?
		 ORDER BY e.date DESC, e.id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		var categoryID sql.NullString
		var date string

		if err := rows.Scan(&e.ID, &e.UserID, &categoryID, &e.Category, &e.Amount, &e.Description, &date); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if categoryID.Valid {
			e.CategoryID = categoryID.String
		}
		if e.Date, err = ParseTime(date); err != nil {
			return nil, err
		}

		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Insert persists a new expense. The ID is generated when empty.
func (r *ExpenseRepository) Insert(e model.Expense) (model.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var categoryID any
	if e.CategoryID != "" {
		categoryID = e.CategoryID
	}

	_, err := r.db.Exec(
		`INSERT INTO expense (id, user_id, category_id, amount, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, categoryID, e.Amount, e.Description, e.Date.Format(dateFormat),
	)
	if err != nil {
		return model.Expense{}, fmt.Errorf("failed to insert expense: %w", err)
	}
	return e, nil
}

// Delete removes an expense owned by the user.
func (r *ExpenseRepository) Delete(userID, expenseID string) error {
	result, err := r.db.Exec(`DELETE FROM expense WHERE id = ? AND user_id = ?`, expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense delete: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// MonthTotal returns the sum of the user's expenses dated within the month
// containing the given time.
func (r *ExpenseRepository) MonthTotal(userID string, month time.Time) (float64, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var total sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT SUM(amount) FROM expense WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, start.Format(dateFormat), end.Format(dateFormat),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum month expenses: %w", err)
	}
	return total.Float64, nil
}

// GetOrCreateCategory returns the user's category with the given name,
// creating it on first use.
func (r *ExpenseRepository) GetOrCreateCategory(userID, name string) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(
		`SELECT id, user_id, name FROM category WHERE user_id = ? AND name = ?`,
		userID, name,
	).Scan(&c.ID, &c.UserID, &c.Name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("failed to query category: %w", err)
	}

	c = model.Category{ID: uuid.NewString(), UserID: userID, Name: name}
	if _, err := r.db.Exec(
		`INSERT INTO category (id, user_id, name) VALUES (?, ?, ?)`,
		c.ID, c.UserID, c.Name,
	); err != nil {
		return model.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by name.
func (r *ExpenseRepository) ListCategories(userID string) ([]model.Category, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, name FROM category WHERE user_id = ? ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
