package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-analytics/internal/domain"
)

func testStocks() Stocks {
	return Stocks{
		"A":     {Symbol: "A", Name: "Alpha", Exchange: "NYSE", Sector: "Technology", Country: "USA", Industry: "Software", CurrentPrice: 5},
		"B":     {Symbol: "B", Name: "Beta", Exchange: "NASDAQ", Sector: "Technology", Country: "USA", Industry: "Hardware", CurrentPrice: 10},
		"C.LON": {Symbol: "C.LON", Name: "Gamma", Exchange: "LON", Sector: "Energy", Country: "UK", Industry: "Oil", CurrentPrice: 7},
	}
}

func sum(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func TestByAttribute(t *testing.T) {
	holdings := []domain.Holding{
		{Symbol: "A", Quantity: 10},
		{Symbol: "B", Quantity: 10},
		{Symbol: "C.LON", Quantity: 10},
	}

	sector := ByAttribute(holdings, testStocks(), Sector)
	assert.Equal(t, map[string]float64{"Technology": 66.67, "Energy": 33.33}, sector)

	country := ByAttribute(holdings, testStocks(), Country)
	assert.Equal(t, map[string]float64{"USA": 66.67, "UK": 33.33}, country)

	industry := ByAttribute(holdings, testStocks(), Industry)
	assert.Len(t, industry, 3)
	assert.InDelta(t, 100.0, sum(industry), 0.02)
}

func TestByAttribute_EmptyAndUnknown(t *testing.T) {
	assert.Empty(t, ByAttribute(nil, testStocks(), Sector))
	assert.Empty(t, ByAttribute([]domain.Holding{{Symbol: "A", Quantity: 0}}, testStocks(), Sector))

	result := ByAttribute([]domain.Holding{
		{Symbol: "A", Quantity: 4},
		{Symbol: "UNKNOWN", Quantity: 100},
	}, testStocks(), Sector)
	assert.Equal(t, map[string]float64{"Technology": 100}, result)
}

func TestBySymbolValue(t *testing.T) {
	holdings := []domain.Holding{
		{Symbol: "A", Quantity: 10},
		{Symbol: "B", Quantity: 10},
	}

	result := BySymbolValue(holdings, testStocks())

	assert.Equal(t, map[string]float64{"A": 33.33, "B": 66.67}, result)
}

func TestBySymbolValue_MergesRepeatedSymbols(t *testing.T) {
	holdings := []domain.Holding{
		{Symbol: "A", Quantity: 10},
		{Symbol: "A", Quantity: 10},
		{Symbol: "B", Quantity: 5},
	}

	result := BySymbolValue(holdings, testStocks())

	assert.Equal(t, map[string]float64{"A": 66.67, "B": 33.33}, result)
}

func TestPercentagesSumToHundred(t *testing.T) {
	cases := [][]domain.Holding{
		{{Symbol: "A", Quantity: 1}},
		{{Symbol: "A", Quantity: 1}, {Symbol: "B", Quantity: 2}},
		{{Symbol: "A", Quantity: 7}, {Symbol: "B", Quantity: 3}, {Symbol: "C.LON", Quantity: 11}},
		{{Symbol: "A", Quantity: 1}, {Symbol: "B", Quantity: 1}, {Symbol: "C.LON", Quantity: 1}},
	}

	for _, holdings := range cases {
		p := &domain.Portfolio{Holdings: holdings}
		Apply(p, testStocks())

		assert.InDelta(t, 100.0, sum(p.SectorAllocated), 0.02)
		assert.InDelta(t, 100.0, sum(p.CountryAllocated), 0.02)
		assert.InDelta(t, 100.0, sum(p.IndustryAllocated), 0.02)
		assert.InDelta(t, 100.0, sum(p.PercentAllocated), 0.02)
		assert.Equal(t, p.PercentAllocated, p.CapitalAllocated)
	}
}

func TestRebalance(t *testing.T) {
	holdings := []domain.Holding{
		{Symbol: "A", Quantity: 10},
		{Symbol: "B", Quantity: 10},
	}
	pct := map[string]float64{"A": 33.33, "B": 66.67}

	result := Rebalance(holdings, testStocks(), pct)

	assert.Equal(t, map[string]int{"A": 10, "B": 10}, result)
	assert.Equal(t, 10, holdings[0].Quantity)
}

func TestRebalance_TargetWeights(t *testing.T) {
	holdings := []domain.Holding{
		{Symbol: "A", Quantity: 10}, // 50
		{Symbol: "B", Quantity: 10}, // 100
	}

	result := Rebalance(holdings, testStocks(), map[string]float64{"A": 50, "B": 50, "MISSING": 10})

	assert.Equal(t, map[string]int{"A": 15, "B": 8}, result)
}

func TestCombineHoldings(t *testing.T) {
	holdings := []domain.Holding{
		{Symbol: "B", Quantity: 10, PriceAtPurchase: 10},
		{Symbol: "A", Quantity: 10, PriceAtPurchase: 4},
		{Symbol: "A", Quantity: 20, PriceAtPurchase: 5.5},
	}

	result := CombineHoldings(holdings, testStocks())

	require.Len(t, result, 2)
	assert.Equal(t, "A", result[0].Symbol)
	assert.Equal(t, 30, result[0].Quantity)
	assert.Equal(t, 5.0, result[0].AveragePrice)
	assert.Equal(t, "Alpha", result[0].Name)
	assert.Equal(t, "NYSE", result[0].Exchange)
	assert.Equal(t, "B", result[1].Symbol)
	assert.Equal(t, 10.0, result[1].AveragePrice)
}

func TestUsedCapital(t *testing.T) {
	p := &domain.Portfolio{
		Capital: 1000,
		Holdings: []domain.Holding{
			{Symbol: "A", Quantity: 3, PriceAtPurchase: 0.1},
			{Symbol: "B", Quantity: 10, PriceAtPurchase: 50.25},
		},
	}

	usage := UsedCapital(p)

	assert.Equal(t, 1000.0, usage.Capital)
	assert.Equal(t, 502.8, usage.Used)
	assert.Equal(t, 497.2, usage.Remaining)
}
