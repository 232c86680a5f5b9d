package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameyrk/wealthledger/internal/api/middleware"
	"github.com/ameyrk/wealthledger/internal/api/response"
	"github.com/ameyrk/wealthledger/internal/apperrors"
	"github.com/ameyrk/wealthledger/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolio handles GET requests to retrieve the caller's valued positions
// and summary totals. Stale prices are refreshed before the read.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with PortfolioResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(middleware.UserID(r))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// HoldingDetail handles GET requests to retrieve one position with its
// trade history.
//
// Endpoint: GET /api/portfolio/holdings/{uuid}
// Response: 200 OK with HoldingDetail
// Error: 404 Not Found if the caller holds no position in the asset
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) HoldingDetail(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	detail, err := h.portfolioService.GetHoldingDetail(middleware.UserID(r), assetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) || errors.Is(err, apperrors.ErrAssetNotFound) {
			response.RespondError(w, http.StatusNotFound, "holding not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve holding", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, detail)
}
