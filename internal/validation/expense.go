package validation

import (
	"strings"
	"time"

	"github.com/ameyrk/wealthledger/internal/api/request"
)

// ValidateCreateExpense validates an expense creation request.
func ValidateCreateExpense(req request.CreateExpenseRequest) error {
	errors := make(map[string]string)

	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}

	if strings.TrimSpace(req.Description) == "" {
		errors["description"] = "description is required"
	}

	if strings.TrimSpace(req.Date) != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateBudget validates a budget update request.
func ValidateUpdateBudget(req request.UpdateBudgetRequest) error {
	if req.MonthlyBudget < 0 {
		return &Error{Fields: map[string]string{"monthlyBudget": "budget must not be negative"}}
	}
	return nil
}
