package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/api/request"
	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// expenseListLimit caps the expense feed.
const expenseListLimit = 500

// ExpenseService handles the expense ledger: per-user categories, outflows,
// and the month-to-date spend versus budget stats.
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	userRepo    *repository.UserRepository
	log         zerolog.Logger

	now func() time.Time // overridable in tests
}

// NewExpenseService creates a new ExpenseService with the provided repository dependencies.
func NewExpenseService(
	expenseRepo *repository.ExpenseRepository,
	userRepo *repository.UserRepository,
	log zerolog.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		log:         log,
		now:         time.Now,
	}
}

// ListExpenses returns the user's expenses, newest first. Uncategorized
// entries carry an explicit placeholder name.
func (s *ExpenseService) ListExpenses(userID string) ([]model.Expense, error) {
	expenses, err := s.expenseRepo.ListByUser(userID, expenseListLimit)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		if expenses[i].Category == "" {
			expenses[i].Category = "Uncategorized"
		}
	}
	return expenses, nil
}

// AddExpense records an outflow, creating the named category on first use.
// The date defaults to today when omitted.
func (s *ExpenseService) AddExpense(userID string, req request.CreateExpenseRequest) (model.Expense, error) {
	expense := model.Expense{
		UserID:      userID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Date:        day(s.now()),
	}

	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return model.Expense{}, err
		}
		expense.Date = d
	}

	if name := strings.TrimSpace(req.Category); name != "" {
		category, err := s.expenseRepo.GetOrCreateCategory(userID, name)
		if err != nil {
			return model.Expense{}, err
		}
		expense.CategoryID = category.ID
		expense.Category = category.Name
	}

	return s.expenseRepo.Insert(expense)
}

// DeleteExpense removes an expense owned by the user.
func (s *ExpenseService) DeleteExpense(userID, expenseID string) error {
	return s.expenseRepo.Delete(userID, expenseID)
}

// Stats returns the current month's spend against the user's budget. The
// percentage is clamped to 100 for display.
func (s *ExpenseService) Stats(userID string) (model.LedgerStats, error) {
	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		return model.LedgerStats{}, err
	}
	spent, err := s.expenseRepo.MonthTotal(userID, s.now())
	if err != nil {
		return model.LedgerStats{}, err
	}

	stats := model.LedgerStats{
		TotalSpent:    spent,
		MonthlyBudget: user.MonthlyBudget,
		Remaining:     user.MonthlyBudget - spent,
	}
	if user.MonthlyBudget > 0 {
		pct := int(spent / user.MonthlyBudget * 100)
		if pct > 100 {
			pct = 100
		}
		stats.Percentage = pct
	}
	return stats, nil
}

// UpdateBudget sets the user's monthly budget.
func (s *ExpenseService) UpdateBudget(userID string, budget float64) error {
	return s.userRepo.UpdateBudget(userID, budget)
}
