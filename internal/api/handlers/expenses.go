package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameyrk/wealthledger/internal/api/middleware"
	"github.com/ameyrk/wealthledger/internal/api/request"
	"github.com/ameyrk/wealthledger/internal/api/response"
	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/service"
	"github.com/ameyrk/wealthledger/internal/validation"
)

// ExpenseHandler handles HTTP requests for the expense ledger.
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler with the provided service dependency.
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// List handles GET requests for the user's expense feed, newest first.
//
// Endpoint: GET /api/expenses
// Response: 200 OK with expense list
// Error: 500 Internal Server Error if storage fails
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseService.ListExpenses(middleware.UserID(r))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to list expenses", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, expenses)
}

// Create handles POST requests to record a new expense.
//
// Endpoint: POST /api/expenses
// Response: 201 Created with the stored expense
// Error: 400 Bad Request for invalid input, 500 Internal Server Error if storage fails
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateExpenseRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateExpense(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	expense, err := h.expenseService.AddExpense(middleware.UserID(r), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create expense", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, expense)
}

// Delete handles DELETE requests to remove an expense owned by the caller.
//
// Endpoint: DELETE /api/expenses/{uuid}
// Response: 200 OK with status message
// Error: 404 Not Found if the expense does not exist or belongs to another user
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "uuid")

	if err := h.expenseService.DeleteExpense(middleware.UserID(r), expenseID); err != nil {
		if errors.Is(err, apperrors.ErrExpenseNotFound) {
			response.RespondError(w, http.StatusNotFound, "expense not found", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete expense", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Stats handles GET requests for the current month's spend versus budget.
//
// Endpoint: GET /api/expenses/stats
// Response: 200 OK with LedgerStats
// Error: 404 Not Found if the user does not exist
func (h *ExpenseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.expenseService.Stats(middleware.UserID(r))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			response.RespondError(w, http.StatusNotFound, "user not found", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to compute stats", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stats)
}

// UpdateBudget handles PUT requests to set the user's monthly budget.
//
// Endpoint: PUT /api/expenses/budget
// Response: 200 OK with status message
// Error: 400 Bad Request for a negative budget, 404 Not Found if the user does not exist
func (h *ExpenseHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateBudgetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateBudget(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.expenseService.UpdateBudget(middleware.UserID(r), req.MonthlyBudget); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			response.RespondError(w, http.StatusNotFound, "user not found", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update budget", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
