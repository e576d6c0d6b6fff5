package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

func d(s string) timeseries.Date { return timeseries.MustParseDate(s) }

func pair(daily, monthly map[string]float64) *timeseries.HistoricalPriceSeries {
	h := timeseries.NewHistoricalPriceSeries()
	for k, v := range daily {
		h.Daily.Put(d(k), v)
	}
	for k, v := range monthly {
		h.Monthly.Put(d(k), v)
	}
	return h
}

func TestAggregate_DropsDatesMissingFromAnyConstituent(t *testing.T) {
	series := map[string]*timeseries.HistoricalPriceSeries{
		"A": pair(map[string]float64{"2024-01-01": 100, "2024-01-02": 102}, nil),
		"B": pair(map[string]float64{"2024-01-01": 50}, nil),
	}

	result := Aggregate(map[string]float64{"A": 60, "B": 40}, series)

	assert.Equal(t, 1, result.Daily.Len())
	v, ok := result.Daily.Get(d("2024-01-01"))
	assert.True(t, ok)
	assert.InDelta(t, 0.6*100+0.4*50, v, 1e-9)
	assert.False(t, result.Daily.Has(d("2024-01-02")))
	assert.Equal(t, 0, result.Monthly.Len())
}

func TestAggregate_DailyAndMonthly(t *testing.T) {
	series := map[string]*timeseries.HistoricalPriceSeries{
		"A": pair(
			map[string]float64{"2024-01-01": 10, "2024-01-02": 20},
			map[string]float64{"2023-12-29": 9, "2024-01-31": 21},
		),
		"B": pair(
			map[string]float64{"2024-01-01": 30, "2024-01-02": 40},
			map[string]float64{"2023-12-29": 31, "2024-01-31": 41},
		),
	}

	result := Aggregate(map[string]float64{"A": 50, "B": 50}, series)

	assert.Equal(t, 2, result.Daily.Len())
	v, _ := result.Daily.Get(d("2024-01-02"))
	assert.InDelta(t, 30.0, v, 1e-9)
	assert.Equal(t, 2, result.Monthly.Len())
	v, _ = result.Monthly.Get(d("2024-01-31"))
	assert.InDelta(t, 31.0, v, 1e-9)
}

func TestAggregate_ZeroWeightIgnored(t *testing.T) {
	series := map[string]*timeseries.HistoricalPriceSeries{
		"A": pair(map[string]float64{"2024-01-01": 100, "2024-01-02": 102}, nil),
		"B": pair(map[string]float64{"2024-01-01": 50}, nil),
	}

	result := Aggregate(map[string]float64{"A": 100, "B": 0}, series)

	assert.Equal(t, 2, result.Daily.Len())
	v, _ := result.Daily.Get(d("2024-01-02"))
	assert.InDelta(t, 102.0, v, 1e-9)
}

func TestAggregate_MissingConstituentSeries(t *testing.T) {
	series := map[string]*timeseries.HistoricalPriceSeries{
		"A": pair(map[string]float64{"2024-01-01": 100}, nil),
	}

	result := Aggregate(map[string]float64{"A": 50, "B": 50}, series)

	assert.Equal(t, 0, result.Daily.Len())
}

func TestAggregate_NoWeights(t *testing.T) {
	result := Aggregate(map[string]float64{}, nil)

	assert.NotNil(t, result.Daily)
	assert.NotNil(t, result.Monthly)
	assert.Equal(t, 0, result.Daily.Len())
}
