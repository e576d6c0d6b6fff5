package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aristath/portfolio-analytics/internal/domain"
)

// CombinedHolding is the per-symbol view of a portfolio's holdings.
type CombinedHolding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Exchange     string  `json:"exchange"`
	Quantity     int     `json:"quantity"`
	AveragePrice float64 `json:"average_price"` // Quantity-weighted purchase price
	CurrentPrice float64 `json:"current_price"`
}

// CombineHoldings merges holdings of the same symbol, summing quantities and averaging
// the purchase price weighted by quantity. Results are sorted by symbol.
func CombineHoldings(holdings []domain.Holding, stocks Stocks) []CombinedHolding {
	type acc struct {
		qty  int64
		cost decimal.Decimal
	}
	bySymbol := make(map[string]*acc)
	for _, h := range holdings {
		a, ok := bySymbol[h.Symbol]
		if !ok {
			a = &acc{cost: decimal.Zero}
			bySymbol[h.Symbol] = a
		}
		a.qty += int64(h.Quantity)
		a.cost = a.cost.Add(decimal.NewFromFloat(h.PriceAtPurchase).Mul(decimal.NewFromInt(int64(h.Quantity))))
	}

	result := make([]CombinedHolding, 0, len(bySymbol))
	for symbol, a := range bySymbol {
		ch := CombinedHolding{Symbol: symbol, Quantity: int(a.qty)}
		if a.qty > 0 {
			ch.AveragePrice = a.cost.Div(decimal.NewFromInt(a.qty)).Round(2).InexactFloat64()
		}
		if stock, ok := stocks[symbol]; ok {
			ch.Name = stock.Name
			ch.Exchange = stock.Exchange
			ch.CurrentPrice = stock.CurrentPrice
		}
		result = append(result, ch)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}

// CapitalUsage reports how much of a portfolio's budget has been spent on holdings.
type CapitalUsage struct {
	Capital   float64 `json:"capital"`
	Used      float64 `json:"used"`      // Sum of qty * price at purchase
	Remaining float64 `json:"remaining"` // Capital - Used, may be negative
}

// UsedCapital computes the capital usage of p.
func UsedCapital(p *domain.Portfolio) CapitalUsage {
	used := decimal.Zero
	for _, h := range p.Holdings {
		used = used.Add(decimal.NewFromFloat(h.PriceAtPurchase).Mul(decimal.NewFromInt(int64(h.Quantity))))
	}
	capital := decimal.NewFromFloat(p.Capital)
	return CapitalUsage{
		Capital:   p.Capital,
		Used:      used.Round(2).InexactFloat64(),
		Remaining: capital.Sub(used).Round(2).InexactFloat64(),
	}
}
