package handlers

import (
	"net/http"

	"github.com/ameyrk/wealthledger/internal/api/response"
	"github.com/ameyrk/wealthledger/internal/service"
)

// AssetHandler handles HTTP requests for asset search and maintenance.
type AssetHandler struct {
	portfolioService *service.PortfolioService
}

// NewAssetHandler creates a new AssetHandler with the provided service dependency.
func NewAssetHandler(portfolioService *service.PortfolioService) *AssetHandler {
	return &AssetHandler{
		portfolioService: portfolioService,
	}
}

// Search handles GET requests to find assets by symbol or name fragment.
// Falls through to the market provider and creates the asset when the local
// index has too few matches for a plausible symbol.
//
// Endpoint: GET /api/portfolio/assets/search?q=
// Response: 200 OK with array of Asset
// Error: 500 Internal Server Error if the search fails
func (h *AssetHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	assets, err := h.portfolioService.SearchAssets(query)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to search assets", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, assets)
}

// ReclassifyResponse reports how many assets changed class.
type ReclassifyResponse struct {
	Changed int `json:"changed"`
}

// Reclassify handles POST requests to re-run the classifier over every
// stored asset. Idempotent.
//
// Endpoint: POST /api/portfolio/assets/reclassify
// Response: 200 OK with ReclassifyResponse
// Error: 500 Internal Server Error if reclassification fails
func (h *AssetHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	changed, err := h.portfolioService.Reclassify()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to reclassify assets", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ReclassifyResponse{Changed: changed})
}
