// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/modules/portfolio"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
	"github.com/aristath/portfolio-analytics/internal/server/respond"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// AddHoldingRequest is the body of POST /api/portfolios/{id}/holdings
type AddHoldingRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

// HandleListPortfolios handles GET /api/portfolios
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.service.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"portfolios": portfolios,
		"count":      len(portfolios),
	})
}

// HandleCreatePortfolio handles POST /api/portfolios
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, "Invalid request body")
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, p)
}

// HandleGetPortfolio handles GET /api/portfolios/{id}
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, p)
}

// HandleDeletePortfolio handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDeletePortfolio(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, map[string]string{"deleted": id})
}

// HandleAddHolding handles POST /api/portfolios/{id}/holdings
func (h *Handler) HandleAddHolding(w http.ResponseWriter, r *http.Request, id string) {
	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, "Invalid request body")
		return
	}
	if req.Symbol == "" {
		respond.BadRequest(w, h.log, "symbol is required")
		return
	}

	p, err := h.service.AddHolding(r.Context(), id, req.Symbol, req.Quantity)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusCreated, p)
}

// HandleRemoveHolding handles DELETE /api/portfolios/{id}/holdings/{holdingID}
func (h *Handler) HandleRemoveHolding(w http.ResponseWriter, r *http.Request, id, holdingID string) {
	p, err := h.service.RemoveHolding(r.Context(), id, holdingID)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, p)
}

// HandleCombinedHoldings handles GET /api/portfolios/{id}/holdings/combined
func (h *Handler) HandleCombinedHoldings(w http.ResponseWriter, r *http.Request, id string) {
	combined, err := h.service.CombinedHoldings(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"holdings": combined,
		"count":    len(combined),
	})
}

// HandleCapital handles GET /api/portfolios/{id}/capital
func (h *Handler) HandleCapital(w http.ResponseWriter, r *http.Request, id string) {
	usage, err := h.service.CapitalUsage(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, usage)
}

// HandleActivity handles GET /api/portfolios/{id}/activity
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request, id string) {
	entries, err := h.service.Activity(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"activity": entries,
		"count":    len(entries),
	})
}

// HandleAllActivity handles GET /api/activity
func (h *Handler) HandleAllActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.AllActivity(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"activity": entries,
		"count":    len(entries),
	})
}

// HandleRebalance handles GET /api/portfolios/{id}/rebalance
func (h *Handler) HandleRebalance(w http.ResponseWriter, r *http.Request, id string) {
	targets, err := h.service.Rebalance(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"targets": targets,
	})
}

// HandleRefresh handles POST /api/portfolios/{id}/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.service.Refresh(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, p)
}

// HandleGetPrices handles GET /api/portfolios/{id}/prices/{interval} and, with change
// set, its percentage-change variant.
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, id, interval string, change bool) {
	period, err := timeseries.ParsePeriodType(interval)
	if err != nil {
		respond.Error(w, h.log, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	series, err := h.service.Prices(r.Context(), id, period)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	if change {
		series = statistics.PercentageChange(series)
	}

	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"portfolio_id": id,
		"interval":     period.String(),
		"prices":       series.ToMap(),
		"count":        series.Len(),
	})
}
