package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// BuildInput is everything one snapshot is computed from.
type BuildInput struct {
	Window entity.TimeWindow
	// Now is the reference instant for the live aggregate.
	Now time.Time
	// TopN overrides the configured ranking size when positive.
	TopN int
	// Orders are canonical orders over all time.
	Orders   []entity.Order
	Products []entity.ProductDetail
	Failures entity.FetchFailures
}

// Builder assembles metrics snapshots. It is immutable after construction
// and safe for concurrent use.
type Builder struct {
	c          Config
	recognized map[entity.OrderStatus]struct{}
}

// NewBuilder validates the configuration and returns a Builder.
func NewBuilder(c Config) (*Builder, error) {
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analytics config: %w", err)
	}
	rec := make(map[entity.OrderStatus]struct{}, len(c.RecognizedStatuses))
	for _, st := range c.RecognizedStatuses {
		rec[st] = struct{}{}
	}
	c.Tiers = append([]TierThreshold(nil), c.Tiers...)
	return &Builder{c: c, recognized: rec}, nil
}

// Config returns a copy of the effective configuration.
func (b *Builder) Config() Config {
	c := b.c
	c.Tiers = append([]TierThreshold(nil), b.c.Tiers...)
	c.RecognizedStatuses = append([]entity.OrderStatus(nil), b.c.RecognizedStatuses...)
	return c
}

// IsRecognized reports whether orders in status st count as revenue.
func (b *Builder) IsRecognized(st entity.OrderStatus) bool {
	_, ok := b.recognized[st]
	return ok
}

// Inventory aggregates stock health with the configured thresholds.
func (b *Builder) Inventory(products []entity.ProductDetail) entity.InventorySummary {
	return AggregateInventory(products, b.c.CriticalStock, b.c.LowStock)
}

// Build computes the snapshot for in.Window and its comparison window.
func (b *Builder) Build(in BuildInput) *entity.MetricsSnapshot {
	topN := b.c.TopN
	if in.TopN > 0 {
		topN = in.TopN
	}

	recognized := b.filterRecognized(in.Orders)
	inventory := b.Inventory(in.Products)
	stock := StockByProduct(inventory)
	costs := CostLookupFromProducts(in.Products)
	customers := BuildCustomers(in.Orders, b.IsRecognized, b.c.Tiers)
	g := GranularityFor(in.Window.Period)

	wc := windowContext{
		all:        in.Orders,
		recognized: recognized,
		costs:      costs,
		stock:      stock,
		customers:  customers,
		topN:       topN,
		g:          g,
	}
	cur := wc.metrics(in.Window.Current())
	prev := wc.metrics(in.Window.Previous())

	return &entity.MetricsSnapshot{
		ID:          uuid.NewString(),
		GeneratedAt: in.Now,
		Window:      in.Window,

		Revenue:       compareInt(cur.Revenue, prev.Revenue),
		GrossRevenue:  compareInt(cur.Sales.GrossRevenue, prev.Sales.GrossRevenue),
		Cost:          compareInt(cur.Sales.TotalCost, prev.Sales.TotalCost),
		Profit:        compareInt(cur.Sales.Profit, prev.Sales.Profit),
		UnitsSold:     compareInt(int64(cur.Sales.UnitsSold), int64(prev.Sales.UnitsSold)),
		OrdersCount:   compareInt(int64(cur.RecognizedOrders), int64(prev.RecognizedOrders)),
		AvgOrderValue: Compare(cur.AvgOrderValue, prev.AvgOrderValue),
		NewCustomers:  compareInt(int64(cur.NewCustomers), int64(prev.NewCustomers)),

		Current:  cur,
		Previous: prev,

		Live: AggregateRevenue(liveOrders(recognized, in.Now, b.c.LiveWindow), costs),

		Customers: entity.CustomerSummary{
			Total: len(customers),
			Tiers: CountTiers(customers, b.c.Tiers),
		},
		Inventory: inventory,

		FetchFailures: entity.FetchFailures{
			Orders:   append([]int(nil), in.Failures.Orders...),
			Products: append([]int(nil), in.Failures.Products...),
		},
	}
}

type windowContext struct {
	all        []entity.Order
	recognized []entity.Order
	costs      CostLookup
	stock      map[int]entity.StockStatus
	customers  []entity.Customer
	topN       int
	g          entity.MetricsGranularity
}

func (wc windowContext) metrics(r entity.TimeRange) entity.WindowMetrics {
	all := ordersIn(wc.all, r)
	rec := ordersIn(wc.recognized, r)
	categories := ReconcileCategories(rec)

	m := entity.WindowMetrics{
		Range:              r,
		Revenue:            sumTotals(rec),
		RecognizedOrders:   len(rec),
		Sales:              AggregateRevenue(rec, wc.costs),
		RevenueByCategory:  categories,
		TopProducts:        RankProducts(rec, wc.topN, wc.stock),
		TopCategories:      RankCategories(categories, rec, wc.topN),
		OrdersByStatus:     countStatuses(all),
		RevenueSeries:      RevenueSeries(rec, r, wc.g),
		NewCustomers:       CountNewCustomers(wc.customers, r),
		ReturningCustomers: CountReturningCustomers(wc.customers, all, r),
	}
	m.AvgOrderValue = decimal.Zero
	if m.RecognizedOrders > 0 {
		m.AvgOrderValue = decimal.NewFromInt(m.Revenue).Div(decimal.NewFromInt(int64(m.RecognizedOrders))).Round(2)
	}
	return m
}

func (b *Builder) filterRecognized(orders []entity.Order) []entity.Order {
	out := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if b.IsRecognized(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

func ordersIn(orders []entity.Order, r entity.TimeRange) []entity.Order {
	var out []entity.Order
	for _, o := range orders {
		if inRange(o.CreatedAt, r) {
			out = append(out, o)
		}
	}
	return out
}

// liveOrders keeps orders created in (now - window, now].
func liveOrders(orders []entity.Order, now time.Time, window time.Duration) []entity.Order {
	from := now.Add(-window)
	var out []entity.Order
	for _, o := range orders {
		if o.CreatedAt.After(from) && !o.CreatedAt.After(now) {
			out = append(out, o)
		}
	}
	return out
}

// countStatuses counts orders per status, known statuses first in funnel
// order, unknown ones after them in first-seen order.
func countStatuses(orders []entity.Order) []entity.StatusCount {
	out := make([]entity.StatusCount, len(entity.KnownOrderStatuses))
	idx := make(map[entity.OrderStatus]int, len(out))
	for i, st := range entity.KnownOrderStatuses {
		out[i].Status = st
		idx[st] = i
	}
	for _, o := range orders {
		i, ok := idx[o.Status]
		if !ok {
			i = len(out)
			idx[o.Status] = i
			out = append(out, entity.StatusCount{Status: o.Status})
		}
		out[i].Count++
	}
	return out
}
