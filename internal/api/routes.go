package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Quotes
	api.HandleFunc("/quotes", handler.ListQuotes).Methods("GET")

	// Accounts and trading
	api.HandleFunc("/accounts/{userID}", handler.GetAccount).Methods("GET")
	api.HandleFunc("/accounts/{userID}/buy", handler.Buy).Methods("POST")
	api.HandleFunc("/accounts/{userID}/sell", handler.Sell).Methods("POST")

	// Watchlist
	api.HandleFunc("/accounts/{userID}/watchlist", handler.AddWatchlistSymbol).Methods("POST")
	api.HandleFunc("/accounts/{userID}/watchlist/{symbol}", handler.RemoveWatchlistSymbol).Methods("DELETE")

	// Limit orders (stored and cancellable only, never executed)
	api.HandleFunc("/accounts/{userID}/orders", handler.AddLimitOrder).Methods("POST")
	api.HandleFunc("/accounts/{userID}/orders/{id}/cancel", handler.CancelLimitOrder).Methods("POST")

	return r
}
