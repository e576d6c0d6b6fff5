package testing

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// MockProvider is an in-memory MarketDataProvider for testing.
// Returned series are clones, so callers can mutate them freely.
type MockProvider struct {
	mu        sync.RWMutex
	daily     map[string]*timeseries.Series
	monthly   map[string]*timeseries.Series
	overviews map[string]*domain.CompanyOverview
	errs      map[string]error // keyed by "daily", "monthly" or "overview"
	calls     map[string]int
}

// NewMockProvider creates an empty mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		daily:     make(map[string]*timeseries.Series),
		monthly:   make(map[string]*timeseries.Series),
		overviews: make(map[string]*domain.CompanyOverview),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

// SetDaily sets the daily series returned for symbol
func (m *MockProvider) SetDaily(symbol string, s *timeseries.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.daily[symbol] = s
}

// SetMonthly sets the monthly series returned for symbol
func (m *MockProvider) SetMonthly(symbol string, s *timeseries.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monthly[symbol] = s
}

// SetOverview sets the company overview returned for symbol
func (m *MockProvider) SetOverview(symbol string, o *domain.CompanyOverview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overviews[symbol] = o
}

// SetError makes every call of the given operation fail with err. A nil err clears it.
func (m *MockProvider) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// Calls returns how often the operation was invoked
func (m *MockProvider) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// TotalCalls returns the number of provider calls of any kind
func (m *MockProvider) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// DailySeries implements domain.MarketDataProvider
func (m *MockProvider) DailySeries(_ context.Context, symbol string) (*timeseries.Series, error) {
	return m.series("daily", symbol, m.daily)
}

// MonthlySeries implements domain.MarketDataProvider
func (m *MockProvider) MonthlySeries(_ context.Context, symbol string) (*timeseries.Series, error) {
	return m.series("monthly", symbol, m.monthly)
}

// CompanyOverview implements domain.MarketDataProvider
func (m *MockProvider) CompanyOverview(_ context.Context, symbol string) (*domain.CompanyOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["overview"]++
	if err := m.errs["overview"]; err != nil {
		return nil, domain.NewProviderError("overview", symbol, err)
	}
	o, ok := m.overviews[symbol]
	if !ok {
		return nil, domain.NewProviderError("overview", symbol, domain.ErrNoData)
	}
	c := *o
	return &c, nil
}

func (m *MockProvider) series(op, symbol string, from map[string]*timeseries.Series) (*timeseries.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if err := m.errs[op]; err != nil {
		return nil, domain.NewProviderError(op, symbol, err)
	}
	s, ok := from[symbol]
	if !ok || s.Len() == 0 {
		return nil, domain.NewProviderError(op, symbol, domain.ErrNoData)
	}
	return s.Clone(), nil
}

// FixedClock is a Clock whose time only moves when told to.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock set to midday UTC of the given date
func NewFixedClock(date string) *FixedClock {
	d := timeseries.MustParseDate(date)
	return &FixedClock{now: time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)}
}

// Now implements domain.Clock
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Today implements domain.Clock
func (c *FixedClock) Today() timeseries.Date {
	return timeseries.DateOf(c.Now())
}

// AdvanceDays moves the clock forward by n days
func (c *FixedClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

// Set moves the clock to midday UTC of the given date
func (c *FixedClock) Set(date string) {
	d := timeseries.MustParseDate(date)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}

var (
	_ domain.MarketDataProvider = (*MockProvider)(nil)
	_ domain.Clock              = (*FixedClock)(nil)
)
