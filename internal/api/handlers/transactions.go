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

// TransactionHandler handles HTTP requests for trade endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// CreateTrade handles POST requests to record a buy or sell.
// The parent holding is replayed synchronously and a history rebuild is
// enqueued before the response returns.
//
// Endpoint: POST /api/portfolio/transactions
// Request Body: CreateTradeRequest (symbol, type, qty, price, date)
// Response: 201 Created with Trade
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.transactionService.CreateTrade(middleware.UserID(r), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create trade", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// DeleteTrade handles DELETE requests to remove a trade.
// The parent holding is replayed synchronously and a history rebuild is
// enqueued before the response returns.
//
// Endpoint: DELETE /api/portfolio/transactions/{uuid}
// Response: 200 OK with status message
// Error: 404 Not Found if the trade does not exist or belongs to another user
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	err := h.transactionService.DeleteTrade(middleware.UserID(r), tradeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, "trade not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete trade", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
