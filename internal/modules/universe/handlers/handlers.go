// Package handlers provides HTTP handlers for stock operations.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/server/respond"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// StockService is the part of universe.StockService the handlers use
type StockService interface {
	Create(ctx context.Context, symbol, exchange string) (*domain.Stock, error)
	Get(ctx context.Context, symbol string) (*domain.Stock, error)
	Sync(ctx context.Context, symbol string) (*domain.Stock, domain.SyncOutcome, error)
	List(ctx context.Context) ([]*domain.Stock, error)
	Prices(ctx context.Context, symbol string, period timeseries.PeriodType) (*timeseries.Series, error)
}

// Handler handles stock HTTP requests
type Handler struct {
	stockService StockService
	log          zerolog.Logger
}

// NewHandler creates a new stock handler
func NewHandler(stockService StockService, log zerolog.Logger) *Handler {
	return &Handler{
		stockService: stockService,
		log:          log.With().Str("handler", "stocks").Logger(),
	}
}

// CreateStockRequest is the body of POST /api/stocks
type CreateStockRequest struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// HandleListStocks handles GET /api/stocks
func (h *Handler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockService.List(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"stocks": stocks,
		"count":  len(stocks),
	})
}

// HandleCreateStock handles POST /api/stocks
func (h *Handler) HandleCreateStock(w http.ResponseWriter, r *http.Request) {
	var req CreateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, "Invalid request body")
		return
	}
	if req.Symbol == "" {
		respond.BadRequest(w, h.log, "symbol is required")
		return
	}

	stock, err := h.stockService.Create(r.Context(), req.Symbol, req.Exchange)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, stock)
}

// HandleGetStock handles GET /api/stocks/{symbol}
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request, symbol string) {
	stock, err := h.stockService.Get(r.Context(), symbol)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, stock)
}

// HandleSyncStock handles POST /api/stocks/{symbol}/sync
func (h *Handler) HandleSyncStock(w http.ResponseWriter, r *http.Request, symbol string) {
	stock, outcome, err := h.stockService.Sync(r.Context(), symbol)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"outcome": outcome,
		"stock":   stock,
	})
}

// HandleGetPrices handles GET /api/stocks/{symbol}/prices/{interval}
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, symbol, interval string) {
	period, err := timeseries.ParsePeriodType(interval)
	if err != nil {
		respond.Error(w, h.log, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	series, err := h.stockService.Prices(r.Context(), symbol, period)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"interval": period.String(),
		"prices":   series.ToMap(),
		"count":    series.Len(),
	})
}
