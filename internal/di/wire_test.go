package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-analytics/internal/config"
	"github.com/aristath/portfolio-analytics/internal/modules/portfolio"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
	"github.com/aristath/portfolio-analytics/internal/scheduler"
	testhelpers "github.com/aristath/portfolio-analytics/internal/testing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:                t.TempDir(),
		Port:                   8080,
		AlphaVantageBaseURL:    "http://127.0.0.1:0",
		AlphaVantageDailyLimit: 25,
		SyncSchedule:           "0 30 22 * * MON-FRI",
		SyncTimeout:            time.Minute,
		Location:               time.UTC,
		WindowOrder:            statistics.Lexicographic,
	}
}

func TestWire_SQLite(t *testing.T) {
	cfg := testConfig(t)
	sched := scheduler.New(zerolog.Nop())

	container, jobs, err := Wire(context.Background(), cfg, sched, nil, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.SQLiteDB)
	assert.Nil(t, container.PostgresPool)
	assert.NotNil(t, container.AlphaVantageClient)
	assert.NotNil(t, container.StockService)
	assert.NotNil(t, container.PortfolioService)
	assert.NoError(t, container.Health.HealthCheck(context.Background()))

	require.NotNil(t, jobs.CheckWALCheckpoints)
	require.NotNil(t, jobs.VacuumDatabase)
	assert.Len(t, jobs.All(), 3)
}

func TestWire_WithProvider(t *testing.T) {
	cfg := testConfig(t)
	provider := testhelpers.NewMockProvider()

	container, jobs, err := Wire(context.Background(), cfg, scheduler.New(zerolog.Nop()), provider, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Nil(t, container.AlphaVantageClient)

	// The wired services share one store
	p, err := container.PortfolioService.Create(context.Background(), portfolio.CreateRequest{Name: "Core"})
	require.NoError(t, err)
	loaded, err := container.PortfolioRepo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Core", loaded.Name)

	require.NoError(t, jobs.DailySync.Run())
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.SyncSchedule = "nope"

	_, _, err := Wire(context.Background(), cfg, scheduler.New(zerolog.Nop()), nil, zerolog.Nop())
	assert.Error(t, err)
}
