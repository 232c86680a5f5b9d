package model

import "time"

// Category is a user-scoped expense category. Names are unique per user.
type Category struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Expense records a single outflow. The category link is optional; deleting
// a category keeps its expenses and leaves them uncategorized.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// LedgerStats summarizes the current month's spending against budget.
type LedgerStats struct {
	TotalSpent    float64 `json:"total_spent"`
	MonthlyBudget float64 `json:"monthly_budget"`
	Remaining     float64 `json:"remaining"`
	Percentage    int     `json:"percentage"`
}
