package analytics

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// ClassifyTier maps cumulative spend to a tier. Thresholds are inclusive
// lower bounds, spend below the first threshold still gets the first tier.
func ClassifyTier(spend int64, tiers []TierThreshold) entity.Tier {
	if len(tiers) == 0 {
		return entity.TierBronze
	}
	tier := tiers[0].Tier
	for _, t := range tiers[1:] {
		if spend < t.MinSpend {
			break
		}
		tier = t.Tier
	}
	return tier
}

// BuildCustomers derives customers from all orders. Spend counts
// revenue-recognized orders only, the first order timestamp counts every
// order. Orders without a user reference are guest orders and skipped.
func BuildCustomers(orders []entity.Order, recognized func(entity.OrderStatus) bool, tiers []TierThreshold) []entity.Customer {
	var customers []entity.Customer
	idx := make(map[string]int)

	for _, o := range orders {
		if o.CustomerID == "" {
			continue
		}
		i, ok := idx[o.CustomerID]
		if !ok {
			i = len(customers)
			idx[o.CustomerID] = i
			customers = append(customers, entity.Customer{ID: o.CustomerID, FirstOrderAt: o.CreatedAt})
		}
		c := &customers[i]
		c.Orders++
		if o.CreatedAt.Before(c.FirstOrderAt) {
			c.FirstOrderAt = o.CreatedAt
		}
		// Spend is the authoritative order total, not the sum of line
		// revenue, so orders whose detail fetch failed still count.
		if recognized(o.Status) {
			c.Spend += o.Total
		}
	}

	for i := range customers {
		customers[i].Tier = ClassifyTier(customers[i].Spend, tiers)
	}
	return customers
}

// CountTiers counts customers per tier in threshold order.
func CountTiers(customers []entity.Customer, tiers []TierThreshold) []entity.TierCount {
	counts := make([]entity.TierCount, len(tiers))
	idx := make(map[entity.Tier]int, len(tiers))
	for i, t := range tiers {
		counts[i].Tier = t.Tier
		idx[t.Tier] = i
	}
	for _, c := range customers {
		if i, ok := idx[c.Tier]; ok {
			counts[i].Customers++
		}
	}
	return counts
}

// CountNewCustomers counts customers whose first ever order is inside r.
func CountNewCustomers(customers []entity.Customer, r entity.TimeRange) int {
	n := 0
	for _, c := range customers {
		if inRange(c.FirstOrderAt, r) {
			n++
		}
	}
	return n
}

// CountReturningCustomers counts distinct customers with an order inside r
// whose first ever order was placed before r.
func CountReturningCustomers(customers []entity.Customer, ordersInRange []entity.Order, r entity.TimeRange) int {
	first := make(map[string]bool, len(customers))
	for _, c := range customers {
		first[c.ID] = c.FirstOrderAt.Before(r.From)
	}
	seen := make(map[string]struct{})
	for _, o := range ordersInRange {
		if o.CustomerID == "" || !first[o.CustomerID] {
			continue
		}
		seen[o.CustomerID] = struct{}{}
	}
	return len(seen)
}
