// Package allocation groups portfolio holdings into percentage maps and derives
// rebalancing suggestions from them.
package allocation

import (
	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/pkg/formulas"
)

// Attribute extracts the classification a holding is grouped by.
type Attribute func(s *domain.Stock) string

// Classification attributes.
var (
	Sector   Attribute = func(s *domain.Stock) string { return s.Sector }
	Country  Attribute = func(s *domain.Stock) string { return s.Country }
	Industry Attribute = func(s *domain.Stock) string { return s.Industry }
)

// Stocks maps symbol to stock for the holdings being allocated.
type Stocks map[string]*domain.Stock

// ByAttribute sums holding quantities per attribute value and converts each group to a
// percentage of the total quantity, rounded to two decimals.
// Holdings whose stock is unknown are ignored. A zero total yields an empty map.
func ByAttribute(holdings []domain.Holding, stocks Stocks, attr Attribute) map[string]float64 {
	groups := make(map[string]float64)
	total := 0.0
	for _, h := range holdings {
		stock, ok := stocks[h.Symbol]
		if !ok {
			continue
		}
		groups[attr(stock)] += float64(h.Quantity)
		total += float64(h.Quantity)
	}
	return toPercent(groups, total)
}

// BySymbolValue sums qty * currentPrice per symbol and converts each to a percentage
// of the total value, rounded to two decimals.
func BySymbolValue(holdings []domain.Holding, stocks Stocks) map[string]float64 {
	groups := make(map[string]float64)
	total := 0.0
	for _, h := range holdings {
		stock, ok := stocks[h.Symbol]
		if !ok {
			continue
		}
		value := float64(h.Quantity) * stock.CurrentPrice
		groups[h.Symbol] += value
		total += value
	}
	return toPercent(groups, total)
}

// Apply recomputes all five allocation maps of p.
func Apply(p *domain.Portfolio, stocks Stocks) {
	p.SectorAllocated = ByAttribute(p.Holdings, stocks, Sector)
	p.CountryAllocated = ByAttribute(p.Holdings, stocks, Country)
	p.IndustryAllocated = ByAttribute(p.Holdings, stocks, Industry)
	p.PercentAllocated = BySymbolValue(p.Holdings, stocks)
	p.CapitalAllocated = BySymbolValue(p.Holdings, stocks)
}

// TotalValue is the sum of qty * currentPrice over holdings with a known stock.
func TotalValue(holdings []domain.Holding, stocks Stocks) float64 {
	total := 0.0
	for _, h := range holdings {
		if stock, ok := stocks[h.Symbol]; ok {
			total += float64(h.Quantity) * stock.CurrentPrice
		}
	}
	return total
}

func toPercent(groups map[string]float64, total float64) map[string]float64 {
	result := make(map[string]float64, len(groups))
	if total <= 0 {
		return result
	}
	for name, amount := range groups {
		result[name] = formulas.Round2(amount / total * 100)
	}
	return result
}
