package analytics

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// CostLookup maps a variant id to its unit cost in minor units.
type CostLookup map[int]int64

// CostLookupFromProducts collects cost prices of all known variants.
// Variants without a cost price are left out and therefore cost zero.
func CostLookupFromProducts(products []entity.ProductDetail) CostLookup {
	costs := make(CostLookup)
	for _, p := range products {
		for _, v := range p.Variants {
			if v.CostPrice.Valid {
				costs[v.ID] = nonNegative(minorUnits(v.CostPrice.Decimal))
			}
		}
	}
	return costs
}

// UnitCost returns the unit cost of a line, zero when unknown.
func (c CostLookup) UnitCost(l entity.OrderLine) int64 {
	if !l.HasVariant {
		return 0
	}
	return c[l.VariantID]
}

// AggregateRevenue sums realized revenue, cost and units over orders.
// Callers pass revenue-recognized orders only. Summation is order
// independent, so repeated calls over the same orders give the same result.
func AggregateRevenue(orders []entity.Order, costs CostLookup) entity.RevenueSummary {
	var s entity.RevenueSummary
	for _, o := range orders {
		s.Orders++
		for _, l := range o.Lines {
			qty := int64(l.Quantity)
			s.GrossRevenue += ResolveUnitPrice(l) * qty
			s.TotalCost += costs.UnitCost(l) * qty
			s.UnitsSold += l.Quantity
		}
	}
	s.Profit = s.GrossRevenue - s.TotalCost
	s.AvgSellPrice = perUnit(s.GrossRevenue, s.UnitsSold)
	s.AvgCost = perUnit(s.TotalCost, s.UnitsSold)
	return s
}

func perUnit(total int64, units int) decimal.Decimal {
	if units == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(units))).Round(2)
}

func sumTotals(orders []entity.Order) int64 {
	var total int64
	for _, o := range orders {
		total += o.Total
	}
	return total
}
