package router

import (
	"database/sql"

	"harcama/internal/handlers"
	"harcama/internal/middleware"
	"harcama/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func SetupRouter(db *sql.DB, logger zerolog.Logger) *mux.Router {
	ledgerService := services.NewLedgerService(db, logger)
	authService := services.NewAuthService(db, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	expenseHandler := handlers.NewExpenseHandler(ledgerService, logger)
	balanceHandler := handlers.NewBalanceHandler(ledgerService, logger)
	healthHandler := handlers.NewHealthHandler(db, logger)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(10), 20)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(rateLimiter.Middleware())
	r.Use(middleware.RequestValidation())

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", healthHandler.Health).Methods("GET")

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	api.HandleFunc("/expenses", expenseHandler.ListExpenses).Methods("GET")
	api.HandleFunc("/expenses", expenseHandler.CreateExpense).Methods("POST")

	api.HandleFunc("/balance", balanceHandler.GetBalance).Methods("GET")
	api.HandleFunc("/balance/deposit", balanceHandler.Deposit).Methods("POST")

	return r
}
