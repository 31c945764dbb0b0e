package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/finaura/paper-trading/internal/database"
	"github.com/finaura/paper-trading/internal/models"
	"github.com/finaura/paper-trading/internal/quotecache"
	"github.com/finaura/paper-trading/internal/trading"
)

// Handler holds dependencies for HTTP handlers. The account id in the
// path is trusted to have been resolved by the identity layer in front
// of this service.
type Handler struct {
	db       *database.DB
	executor *trading.Executor
	cache    *quotecache.Cache
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, executor *trading.Executor, cache *quotecache.Cache) *Handler {
	return &Handler{
		db:       db,
		executor: executor,
		cache:    cache,
	}
}

type tradeRequest struct {
	Symbol string          `json:"symbol"`
	Shares decimal.Decimal `json:"shares"`
	Price  decimal.Decimal `json:"price"`
}

// Buy handles POST /accounts/{userID}/buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.executor.Buy(r.Context(), userID, req.Symbol, req.Shares, req.Price)
	if err != nil {
		respondTradeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Sell handles POST /accounts/{userID}/sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.executor.Sell(r.Context(), userID, req.Symbol, req.Shares, req.Price)
	if err != nil {
		respondTradeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetAccount handles GET /accounts/{userID}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	snapshot, err := h.db.GetAccountSnapshot(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// ListQuotes handles GET /quotes
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes := h.cache.GetAll()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
		"ts":     time.Now().Unix(),
	})
}

// AddWatchlistSymbol handles POST /accounts/{userID}/watchlist
func (h *Handler) AddWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	if err := h.db.AddWatchlistSymbol(userID, symbol); err != nil {
		if errors.Is(err, database.ErrAlreadyWatching) {
			respondError(w, http.StatusBadRequest, "already watching")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"symbol": symbol})
}

// RemoveWatchlistSymbol handles DELETE /accounts/{userID}/watchlist/{symbol}
func (h *Handler) RemoveWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.db.RemoveWatchlistSymbol(vars["userID"], strings.ToUpper(vars["symbol"])); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddLimitOrder handles POST /accounts/{userID}/orders
func (h *Handler) AddLimitOrder(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req struct {
		Symbol      string          `json:"symbol"`
		Type        string          `json:"type"`
		TargetPrice decimal.Decimal `json:"targetPrice"`
		Shares      decimal.Decimal `json:"shares"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	side := strings.ToUpper(strings.TrimSpace(req.Type))
	if side == "" {
		side = models.TradeTypeBuy
	}
	if symbol == "" || req.Shares.Sign() <= 0 || req.TargetPrice.Sign() <= 0 ||
		(side != models.TradeTypeBuy && side != models.TradeTypeSell) {
		respondError(w, http.StatusBadRequest, "invalid parameters")
		return
	}

	order := &models.LimitOrder{
		UserID:      userID,
		Symbol:      symbol,
		Side:        side,
		TargetPrice: req.TargetPrice,
		Shares:      req.Shares,
	}
	if err := h.db.CreateLimitOrder(order); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// CancelLimitOrder handles POST /accounts/{userID}/orders/{id}/cancel
func (h *Handler) CancelLimitOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	orderID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.db.CancelLimitOrder(vars["userID"], orderID); err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": models.OrderStatusCancelled})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondTradeError maps executor and ledger errors onto status codes.
// Business rejections are 400s; anything unrecognized is a 500.
func respondTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trading.ErrInvalidParameters):
		respondError(w, http.StatusBadRequest, "invalid parameters")
	case errors.Is(err, trading.ErrPriceUnavailable):
		respondError(w, http.StatusBadRequest, "price not available")
	case errors.Is(err, database.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, database.ErrInsufficientShares):
		respondError(w, http.StatusBadRequest, "not enough shares")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
