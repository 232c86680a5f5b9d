package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/api/handlers"
	custommiddleware "github.com/ameyrk/wealthledger/internal/api/middleware"
	"github.com/ameyrk/wealthledger/internal/config"
	"github.com/ameyrk/wealthledger/internal/repository"
	"github.com/ameyrk/wealthledger/internal/service"
)

// Services bundles the service layer dependencies the router wires into
// handlers.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Analytics   *service.AnalyticsService
	Expense     *service.ExpenseService
	Users       *repository.UserRepository
	Queue       service.BackfillQueue
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace, no user context required
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		userHandler := handlers.NewUserHandler(svc.Users)
		r.Post("/users", userHandler.Create)

		// Everything below requires the X-User-ID header
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireUser)

			r.Route("/portfolio", func(r chi.Router) {
				portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
				assetHandler := handlers.NewAssetHandler(svc.Portfolio)
				transactionHandler := handlers.NewTransactionHandler(svc.Transaction)

				r.Get("/", portfolioHandler.Portfolio)
				r.Get("/assets/search", assetHandler.Search)
				r.Post("/assets/reclassify", assetHandler.Reclassify)
				r.Post("/transactions", transactionHandler.CreateTrade)

				r.Route("/holdings/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", portfolioHandler.HoldingDetail)
				})
				r.Route("/transactions/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Delete("/", transactionHandler.DeleteTrade)
				})
			})

			r.Route("/analytics", func(r chi.Router) {
				analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics, svc.Queue)
				r.Get("/", analyticsHandler.Analytics)
				r.Get("/summary", analyticsHandler.Summary)
				r.Post("/backfill", analyticsHandler.Backfill)
			})

			r.Route("/expenses", func(r chi.Router) {
				expenseHandler := handlers.NewExpenseHandler(svc.Expense)
				r.Get("/", expenseHandler.List)
				r.Post("/", expenseHandler.Create)
				r.Get("/stats", expenseHandler.Stats)
				r.Put("/budget", expenseHandler.UpdateBudget)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Delete("/", expenseHandler.Delete)
				})
			})
		})
	})

	return r
}
