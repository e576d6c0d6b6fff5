// Package domain provides core domain models and types.
package domain

import (
	"time"

	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// Exchanges whose tickers are used without a suffix.
const (
	ExchangeNYSE   = "NYSE"
	ExchangeNASDAQ = "NASDAQ"
)

// Statistics holds the derived return and volatility maps cached on a Stock or Portfolio.
type Statistics struct {
	AnnualReturn               map[int]float64    `json:"annual_return" msgpack:"annual_return"`             // year -> percent
	AnnualizedReturn           map[string]float64 `json:"annualized_return" msgpack:"annualized_return"`     // "<p> Year" -> percent
	AnnualizedVolatilityMonths map[string]float64 `json:"annualized_volatility_months" msgpack:"vol_months"` // window label -> percent
	AnnualizedVolatilityDays   map[string]float64 `json:"annualized_volatility_days" msgpack:"vol_days"`     // window label -> percent
	LatestTradingDay           timeseries.Date    `json:"latest_trading_day" msgpack:"latest_trading_day"`   // max daily date
}

// EmptyStatistics returns statistics with every map allocated and empty.
func EmptyStatistics() Statistics {
	return Statistics{
		AnnualReturn:               map[int]float64{},
		AnnualizedReturn:           map[string]float64{},
		AnnualizedVolatilityMonths: map[string]float64{},
		AnnualizedVolatilityDays:   map[string]float64{},
	}
}

// Stock represents a tracked security and its cached statistics.
// Its price series is stored as a separate document and attached via Prices.
type Stock struct {
	Symbol       string          `json:"symbol" msgpack:"symbol"` // Unique key, exchange-suffixed when needed
	Name         string          `json:"name" msgpack:"name"`
	Description  string          `json:"description" msgpack:"description"`
	Country      string          `json:"country" msgpack:"country"`
	Sector       string          `json:"sector" msgpack:"sector"`
	Industry     string          `json:"industry" msgpack:"industry"`
	Exchange     string          `json:"exchange" msgpack:"exchange"`
	CurrentPrice float64         `json:"current_price" msgpack:"current_price"` // Latest daily close
	LastSyncDate timeseries.Date `json:"last_sync_date" msgpack:"last_sync_date"`
	Statistics   Statistics      `json:"statistics" msgpack:"statistics"`

	Prices *timeseries.HistoricalPriceSeries `json:"-" msgpack:"-"`
}

// Holding is a position inside a Portfolio. Symbol is a lookup key into the stock store.
type Holding struct {
	PurchasedAt     time.Time `json:"purchased_at" msgpack:"purchased_at"`
	ID              string    `json:"id" msgpack:"id"`
	Symbol          string    `json:"symbol" msgpack:"symbol"`
	Quantity        int       `json:"quantity" msgpack:"quantity"`
	PriceAtPurchase float64   `json:"price_at_purchase" msgpack:"price_at_purchase"`
}

// Portfolio is a named collection of holdings with derived allocation and statistics caches.
type Portfolio struct {
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	ID        string    `json:"id" msgpack:"id"`
	Name      string    `json:"name" msgpack:"name"`
	Strategy  string    `json:"strategy" msgpack:"strategy"`
	Owner     string    `json:"owner" msgpack:"owner"`
	Capital   float64   `json:"capital" msgpack:"capital"` // Budget
	Holdings  []Holding `json:"holdings" msgpack:"holdings"`

	SectorAllocated   map[string]float64 `json:"sector_allocated" msgpack:"sector_allocated"`
	CountryAllocated  map[string]float64 `json:"country_allocated" msgpack:"country_allocated"`
	IndustryAllocated map[string]float64 `json:"industry_allocated" msgpack:"industry_allocated"`
	PercentAllocated  map[string]float64 `json:"percent_allocated" msgpack:"percent_allocated"` // symbol -> percent of value
	CapitalAllocated  map[string]float64 `json:"capital_allocated" msgpack:"capital_allocated"` // symbol -> percent of value
	Statistics        Statistics         `json:"statistics" msgpack:"statistics"`

	Prices *timeseries.HistoricalPriceSeries `json:"-" msgpack:"-"`
}

// Symbols returns the distinct symbols held, in first-seen order.
func (p *Portfolio) Symbols() []string {
	seen := make(map[string]bool, len(p.Holdings))
	out := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	return out
}

// HoldingIndex returns the index of the holding with the given id, or -1.
func (p *Portfolio) HoldingIndex(id string) int {
	for i, h := range p.Holdings {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// ActivityAction names a recorded change to a portfolio.
type ActivityAction string

const (
	ActivityCreated        ActivityAction = "created"
	ActivityHoldingAdded   ActivityAction = "holding_added"
	ActivityHoldingRemoved ActivityAction = "holding_removed"
	ActivityDeleted        ActivityAction = "deleted"
)

// ActivityEntry records one change to a portfolio's holdings or lifecycle,
// with the capital budget at that moment.
type ActivityEntry struct {
	Timestamp   time.Time      `json:"timestamp" msgpack:"timestamp"`
	ID          string         `json:"id" msgpack:"id"`
	PortfolioID string         `json:"portfolio_id" msgpack:"portfolio_id"`
	Owner       string         `json:"owner" msgpack:"owner"`
	Action      ActivityAction `json:"action" msgpack:"action"`
	Added       []Holding      `json:"added" msgpack:"added"`
	Removed     []Holding      `json:"removed" msgpack:"removed"`
	Capital     float64        `json:"capital" msgpack:"capital"`
}

// SyncOutcome describes what an incremental sync did.
type SyncOutcome string

const (
	SyncAlreadySynced SyncOutcome = "already_synced" // stamped today, nothing fetched
	SyncDailyCurrent  SyncOutcome = "daily_current"  // provider had nothing newer
	SyncUpdated       SyncOutcome = "updated"
)
