package allocation

import (
	"math"

	"github.com/aristath/portfolio-analytics/internal/domain"
)

// Rebalance suggests a target quantity per symbol so that each symbol's value share
// matches percentAllocated at current prices: round(totalValue * pct/100 / price).
// Symbols without a positive current price are omitted. Holdings are not modified.
func Rebalance(holdings []domain.Holding, stocks Stocks, percentAllocated map[string]float64) map[string]int {
	totalValue := TotalValue(holdings, stocks)

	targets := make(map[string]int, len(percentAllocated))
	for symbol, pct := range percentAllocated {
		stock, ok := stocks[symbol]
		if !ok || stock.CurrentPrice <= 0 {
			continue
		}
		targets[symbol] = int(math.Round(totalValue * pct / 100 / stock.CurrentPrice))
	}
	return targets
}
