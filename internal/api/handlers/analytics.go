package handlers

import (
	"net/http"

	"github.com/ameyrk/wealthledger/internal/api/middleware"
	"github.com/ameyrk/wealthledger/internal/api/response"
	"github.com/ameyrk/wealthledger/internal/service"
)

// AnalyticsHandler handles HTTP requests for derived portfolio statistics.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	queue            service.BackfillQueue
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the provided dependencies.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, queue service.BackfillQueue) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		queue:            queue,
	}
}

// Analytics handles GET requests for the full analytics payload: headline
// metrics, sector split, and the performance graph. Degrades to neutral
// defaults on missing data rather than erroring.
//
// Endpoint: GET /api/analytics
// Response: 200 OK with AnalyticsResponse
// Error: 500 Internal Server Error if storage fails
func (h *AnalyticsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analyticsService.Analytics(middleware.UserID(r))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute analytics", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, analytics)
}

// Summary handles GET requests for the landing-page roll-up.
//
// Endpoint: GET /api/analytics/summary
// Response: 200 OK with HomeSummary
// Error: 500 Internal Server Error if storage fails
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.Summary(middleware.UserID(r))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute summary", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Backfill handles POST requests to enqueue a history rebuild for the
// caller. Safe to re-invoke; rebuilds are serialized and coalesced.
//
// Endpoint: POST /api/analytics/backfill
// Response: 202 Accepted with status message
func (h *AnalyticsHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	h.queue.Submit(middleware.UserID(r))
	response.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
