package domain

import (
	"context"
	"time"

	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// CompanyOverview holds the descriptive attributes a provider reports for a symbol.
type CompanyOverview struct {
	Symbol      string
	Name        string
	Description string
	Country     string
	Sector      string
	Industry    string
	Exchange    string
}

// MarketDataProvider supplies price series and descriptive data for symbols.
// Implementations must return errors that match ErrRateLimitExceeded or ErrNoData
// (via errors.Is) for those conditions rather than empty results.
type MarketDataProvider interface {
	// DailySeries returns daily closing prices
	DailySeries(ctx context.Context, symbol string) (*timeseries.Series, error)

	// MonthlySeries returns month-end adjusted closing prices
	MonthlySeries(ctx context.Context, symbol string) (*timeseries.Series, error)

	// CompanyOverview returns name, description and classification attributes
	CompanyOverview(ctx context.Context, symbol string) (*CompanyOverview, error)
}

// Clock supplies the notion of "now" used by freshness checks and timestamps.
type Clock interface {
	Now() time.Time
	Today() timeseries.Date
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock returns a clock for the given location; nil means UTC.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{Location: loc}
}

func (c *SystemClock) Now() time.Time { return time.Now().In(c.Location) }

func (c *SystemClock) Today() timeseries.Date { return timeseries.DateOf(c.Now()) }
