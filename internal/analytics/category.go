package analytics

import (
	"sort"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// ReconcileCategories attributes order revenue to categories so that the
// category totals add up exactly to the sum of authoritative order totals.
//
// Within an order, line revenue is grouped by category. When the group sum
// differs from the order total, the difference is booked onto the largest
// group (the first one on ties). An order without any line revenue books
// its whole total as Uncategorized. The result is sorted by revenue, ties
// keep first-seen order.
func ReconcileCategories(orders []entity.Order) []entity.CategoryRevenue {
	var out []entity.CategoryRevenue
	idx := make(map[string]int)

	for _, o := range orders {
		for _, e := range reconcileOrder(o) {
			i, ok := idx[e.Category]
			if !ok {
				i = len(out)
				idx[e.Category] = i
				out = append(out, entity.CategoryRevenue{Category: e.Category})
			}
			out[i].Revenue += e.Revenue
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

func reconcileOrder(o entity.Order) []entity.CategoryRevenue {
	var entries []entity.CategoryRevenue
	idx := make(map[string]int)
	var sum int64

	for _, l := range o.Lines {
		rev := LineRevenue(l)
		if rev == 0 {
			continue
		}
		i, ok := idx[l.Category]
		if !ok {
			i = len(entries)
			idx[l.Category] = i
			entries = append(entries, entity.CategoryRevenue{Category: l.Category})
		}
		entries[i].Revenue += rev
		sum += rev
	}

	if len(entries) == 0 {
		if o.Total == 0 {
			return nil
		}
		return []entity.CategoryRevenue{{Category: UncategorizedCategory, Revenue: o.Total}}
	}

	if diff := o.Total - sum; diff != 0 {
		largest := 0
		for i := 1; i < len(entries); i++ {
			if entries[i].Revenue > entries[largest].Revenue {
				largest = i
			}
		}
		entries[largest].Revenue += diff
	}
	return entries
}
