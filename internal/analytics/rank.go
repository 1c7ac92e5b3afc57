package analytics

import (
	"sort"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// RankProducts accumulates revenue and units per product, sorts by revenue
// descending and keeps the first limit entries. Ties keep accumulation
// order. Stock labels come from the inventory rollup, products missing from
// it get an empty label.
func RankProducts(orders []entity.Order, limit int, stock map[int]entity.StockStatus) []entity.ProductRevenue {
	var out []entity.ProductRevenue
	idx := make(map[int]int)

	for _, o := range orders {
		for _, l := range o.Lines {
			i, ok := idx[l.ProductID]
			if !ok {
				i = len(out)
				idx[l.ProductID] = i
				out = append(out, entity.ProductRevenue{
					ProductID:   l.ProductID,
					ProductName: l.ProductName,
					StockStatus: stock[l.ProductID],
				})
			}
			out[i].Revenue += LineRevenue(l)
			out[i].UnitsSold += l.Quantity
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return truncate(out, limit)
}

// RankCategories ranks reconciled category revenue and attaches the units
// sold per category.
func RankCategories(categories []entity.CategoryRevenue, orders []entity.Order, limit int) []entity.CategoryRanking {
	units := make(map[string]int)
	for _, o := range orders {
		for _, l := range o.Lines {
			units[l.Category] += l.Quantity
		}
	}

	out := make([]entity.CategoryRanking, 0, len(categories))
	for _, c := range categories {
		out = append(out, entity.CategoryRanking{
			Category:  c.Category,
			Revenue:   c.Revenue,
			UnitsSold: units[c.Category],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return truncate(out, limit)
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
