package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolio_Symbols(t *testing.T) {
	p := &Portfolio{Holdings: []Holding{
		{ID: "1", Symbol: "IBM"},
		{ID: "2", Symbol: "AAPL"},
		{ID: "3", Symbol: "IBM"},
	}}

	assert.Equal(t, []string{"IBM", "AAPL"}, p.Symbols())
	assert.Empty(t, (&Portfolio{}).Symbols())
}

func TestPortfolio_HoldingIndex(t *testing.T) {
	p := &Portfolio{Holdings: []Holding{{ID: "a"}, {ID: "b"}}}

	assert.Equal(t, 1, p.HoldingIndex("b"))
	assert.Equal(t, -1, p.HoldingIndex("missing"))
}

func TestEmptyStatistics(t *testing.T) {
	s := EmptyStatistics()
	assert.NotNil(t, s.AnnualReturn)
	assert.NotNil(t, s.AnnualizedReturn)
	assert.NotNil(t, s.AnnualizedVolatilityMonths)
	assert.NotNil(t, s.AnnualizedVolatilityDays)
	assert.True(t, s.LatestTradingDay.IsZero())
}

func TestProviderError(t *testing.T) {
	err := NewProviderError("daily", "IBM", ErrRateLimitExceeded)

	assert.True(t, errors.Is(err, ErrRateLimitExceeded))
	assert.True(t, IsProviderError(err))
	assert.Equal(t, "provider daily IBM: provider rate limit exceeded", err.Error())

	wrapped := fmt.Errorf("sync failed: %w", err)
	assert.True(t, IsProviderError(wrapped))

	// Already-wrapped errors are not wrapped twice
	again := NewProviderError("monthly", "IBM", err)
	var pe *ProviderError
	require.True(t, errors.As(again, &pe))
	assert.Equal(t, "daily", pe.Op)

	assert.False(t, IsProviderError(ErrNotFound))
}

func TestSystemClock(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	c := NewSystemClock(loc)
	assert.Equal(t, loc, c.Now().Location())

	today := c.Today()
	now := time.Now().In(loc)
	assert.Equal(t, now.Year(), today.Year())

	assert.Equal(t, time.UTC, NewSystemClock(nil).Location)
}
