package universe

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-analytics/internal/domain"
	testhelpers "github.com/aristath/portfolio-analytics/internal/testing"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

func TestQualifiedSymbol(t *testing.T) {
	tests := []struct {
		symbol, exchange, expected string
	}{
		{"IBM", "NYSE", "IBM"},
		{"aapl", "NASDAQ", "AAPL"},
		{"SHEL", "LON", "SHEL.LON"},
		{"SHEL.LON", "LON", "SHEL.LON"},
		{"shel", "lon", "SHEL.LON"},
		{"IBM", "", "IBM"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol+"/"+tt.exchange, func(t *testing.T) {
			assert.Equal(t, tt.expected, QualifiedSymbol(tt.symbol, tt.exchange))
		})
	}
}

func TestStockService_Create(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	fixture := testhelpers.NewStockFixtures()[2] // SHEL.LON
	f.provider.SetDaily("SHEL.LON", testhelpers.BusinessDays("2024-03-01", 30, 20, 0.5))
	f.provider.SetMonthly("SHEL.LON", testhelpers.MonthEnds("2024-02-29", 24, 15, 0.25))
	f.provider.SetOverview("SHEL.LON", testhelpers.OverviewFor(fixture))

	stock, err := f.stocks.Create(context.Background(), "shel", "LON")

	require.NoError(t, err)
	assert.Equal(t, "SHEL.LON", stock.Symbol)
	assert.Equal(t, "Shell PLC", stock.Name)
	assert.Equal(t, "Energy", stock.Sector)
	assert.Equal(t, "LON", stock.Exchange)
	assert.Equal(t, timeseries.MustParseDate("2024-03-01"), stock.LastSyncDate)
	assert.InDelta(t, 20+0.5*29, stock.CurrentPrice, 1e-9)
	assert.Contains(t, stock.Statistics.AnnualizedVolatilityDays, "1 month")
	assert.Contains(t, stock.Statistics.AnnualizedReturn, "1 Year")

	loaded, err := f.repo.GetWithPrices(context.Background(), "SHEL.LON")
	require.NoError(t, err)
	assert.Equal(t, 30, loaded.Prices.Daily.Len())
	assert.Equal(t, 24, loaded.Prices.Monthly.Len())
	assert.Equal(t, stock.Statistics.AnnualizedReturn, loaded.Statistics.AnnualizedReturn)
}

func TestStockService_CreateDuplicate(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	f.seedIBM(t)
	calls := f.provider.TotalCalls()

	_, err := f.stocks.Create(context.Background(), "ibm", "NYSE")

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, calls, f.provider.TotalCalls())
}

func TestStockService_CreateFailureStoresNothing(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	f.provider.SetDaily("IBM", series(map[string]float64{"2024-01-02": 11}))
	f.provider.SetMonthly("IBM", series(map[string]float64{"2024-01-02": 10}))
	// no overview configured -> ErrNoData

	_, err := f.stocks.Create(context.Background(), "IBM", "NYSE")

	assert.ErrorIs(t, err, domain.ErrNoData)
	exists, err := f.repo.Exists(context.Background(), "IBM")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStockService_CreateRequiresSymbol(t *testing.T) {
	f := newFixture(t, "2024-01-02")

	_, err := f.stocks.Create(context.Background(), "  ", "LON")

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestStockService_GetServesStoredStockWhenSyncFails(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	f.seedIBM(t)
	f.clock.Set("2024-01-03")
	f.provider.SetError("daily", domain.ErrRateLimitExceeded)

	stock, err := f.stocks.Get(context.Background(), "ibm")

	require.NoError(t, err)
	assert.Equal(t, "IBM", stock.Symbol)
	assert.Equal(t, 2, stock.Prices.Daily.Len())

	_, _, err = f.stocks.Sync(context.Background(), "IBM")
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
}

func TestStockService_GetLogsFailedSyncOnce(t *testing.T) {
	var buf bytes.Buffer
	f := newLoggedFixture(t, "2024-01-02", zerolog.New(&buf).Level(zerolog.WarnLevel))
	f.seedIBM(t)
	f.clock.Set("2024-01-03")
	f.provider.SetError("daily", domain.ErrRateLimitExceeded)

	_, err := f.stocks.Get(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), `"level":"warn"`))
	assert.Contains(t, buf.String(), "Serving stored stock after failed sync")
}

func TestStockService_GetUnknown(t *testing.T) {
	f := newFixture(t, "2024-01-02")

	_, err := f.stocks.Get(context.Background(), "NOPE")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockService_ListAndPrices(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	f.seedIBM(t)

	stocks, err := f.stocks.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "IBM", stocks[0].Symbol)
	assert.Nil(t, stocks[0].Prices)

	monthly, err := f.stocks.Prices(context.Background(), "IBM", timeseries.Monthly)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"2023-12-29": 9, "2024-01-02": 10}, monthly.ToMap())
}

func TestStockService_EnsureExists(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	f.seedIBM(t)
	f.provider.SetDaily("AAPL", series(map[string]float64{"2024-01-02": 185}))
	f.provider.SetMonthly("AAPL", series(map[string]float64{"2024-01-02": 185}))
	f.provider.SetOverview("AAPL", testhelpers.OverviewFor(testhelpers.NewStockFixtures()[1]))

	created := f.stocks.EnsureExists(context.Background(), []string{"IBM", "AAPL", "MISSING"})

	assert.Equal(t, 1, created)
	symbols, err := f.repo.ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "IBM"}, symbols)
}
