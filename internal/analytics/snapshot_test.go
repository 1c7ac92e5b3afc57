package analytics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(DefaultConfig())
	require.NoError(t, err)
	return b
}

func TestBuild_MayScenario(t *testing.T) {
	b := mustBuilder(t)
	now := time.Date(2024, time.May, 31, 12, 0, 0, 0, time.UTC)
	src := &entity.SourceData{
		Orders: []entity.RawOrder{
			{ID: 1, CreatedAt: "2024-05-01", Status: "completed", TotalPrice: decimal.NewFromInt(100000)},
		},
		Details: map[int]entity.OrderDetail{
			1: {OrderID: 1, Items: []entity.RawOrderLine{{
				OrderID:       1,
				ProductID:     3,
				ProductName:   "Oxford",
				CategoryName:  sql.NullString{String: "Shirts", Valid: true},
				Quantity:      1,
				PriceSnapshot: nd(100000),
				ProductPrice:  nd(100000),
				DiscountPct:   nd(0),
			}}},
		},
	}

	snap := b.Build(BuildInput{
		Window: ResolveWindow(entity.PeriodMonth, time.Time{}, time.Time{}, now),
		Now:    now,
		Orders: NormalizeOrders(src),
	})

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "May 2024", snap.Window.Label)
	assert.Equal(t, []entity.CategoryRevenue{{Category: "Shirts", Revenue: 100000}}, snap.Current.RevenueByCategory)
	assert.Equal(t, int64(100000), snap.Current.Sales.GrossRevenue)
	assert.Equal(t, 1, snap.Current.Sales.UnitsSold)
	assert.Equal(t, int64(100000), snap.Current.Revenue)
	assert.True(t, decimal.NewFromInt(100).Equal(snap.Revenue.ChangePct))
	assert.Equal(t, 1, snap.Current.RecognizedOrders)
	assert.Len(t, snap.Current.RevenueSeries, 31)
	assert.Empty(t, snap.Previous.RevenueByCategory)
}

func TestBuild_ComparisonAndFunnel(t *testing.T) {
	b := mustBuilder(t)
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	at := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 10, 0, 0, 0, time.UTC) }

	orders := []entity.Order{
		{ID: 1, CustomerID: "u1", Status: entity.OrderStatusPaid, Total: 2000, CreatedAt: at(time.April, 5),
			Lines: []entity.OrderLine{{ProductID: 1, Category: "Shirts", ProductPrice: nd(2000), Quantity: 1}}},
		{ID: 2, CustomerID: "u1", Status: entity.OrderStatusShipped, Total: 3000, CreatedAt: at(time.May, 2),
			Lines: []entity.OrderLine{{ProductID: 1, Category: "Shirts", ProductPrice: nd(1500), Quantity: 2}}},
		{ID: 3, CustomerID: "u2", Status: entity.OrderStatusCompleted, Total: 1000, CreatedAt: at(time.May, 3), DetailMissing: true},
		{ID: 4, CustomerID: "u3", Status: entity.OrderStatusPending, Total: 9999, CreatedAt: at(time.May, 4)},
		{ID: 5, Status: entity.OrderStatusCancelled, Total: 500, CreatedAt: at(time.May, 5)},
		{ID: 6, Status: entity.OrderStatus("refunded"), Total: 500, CreatedAt: at(time.May, 6)},
		{ID: 7, CustomerID: "u2", Status: entity.OrderStatusPaid, Total: 400, CreatedAt: now.Add(-10 * time.Minute),
			Lines: []entity.OrderLine{{ProductID: 2, Category: "Hats", ProductPrice: nd(400), Quantity: 1}}},
	}

	snap := b.Build(BuildInput{
		Window:   ResolveWindow(entity.PeriodMonth, time.Time{}, time.Time{}, now),
		Now:      now,
		TopN:     1,
		Orders:   orders,
		Failures: entity.FetchFailures{Orders: []int{3}},
	})

	cur := snap.Current
	assert.Equal(t, int64(4400), cur.Revenue)
	assert.Equal(t, 3, cur.RecognizedOrders)
	assert.Equal(t, int64(4400), sumCategories(cur.RevenueByCategory))
	assert.Equal(t, []entity.CategoryRevenue{
		{Category: "Shirts", Revenue: 3000},
		{Category: UncategorizedCategory, Revenue: 1000},
		{Category: "Hats", Revenue: 400},
	}, cur.RevenueByCategory)
	require.Len(t, cur.TopProducts, 1)
	assert.Equal(t, 1, cur.TopProducts[0].ProductID)
	require.Len(t, cur.TopCategories, 1)
	assert.Equal(t, "Shirts", cur.TopCategories[0].Category)

	assert.Equal(t, []entity.StatusCount{
		{Status: entity.OrderStatusPending, Count: 1},
		{Status: entity.OrderStatusPaid, Count: 1},
		{Status: entity.OrderStatusShipped, Count: 1},
		{Status: entity.OrderStatusCompleted, Count: 1},
		{Status: entity.OrderStatusCancelled, Count: 1},
		{Status: entity.OrderStatus("refunded"), Count: 1},
	}, cur.OrdersByStatus)

	assert.Equal(t, int64(2000), snap.Previous.Revenue)
	assert.True(t, decimal.NewFromInt(120).Equal(snap.Revenue.ChangePct), snap.Revenue.ChangePct.String())

	assert.Equal(t, 2, cur.NewCustomers)
	assert.Equal(t, 1, cur.ReturningCustomers)
	assert.Equal(t, 3, snap.Customers.Total)

	assert.Equal(t, int64(400), snap.Live.GrossRevenue)
	assert.Equal(t, 1, snap.Live.Orders)

	assert.Equal(t, []int{3}, snap.FetchFailures.Orders)
}

func TestBuild_Idempotent(t *testing.T) {
	b := mustBuilder(t)
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	orders := []entity.Order{
		{ID: 1, Status: entity.OrderStatusPaid, Total: 999, CreatedAt: now.Add(-time.Hour),
			Lines: []entity.OrderLine{{ProductID: 1, Category: "A", ProductPrice: nd(333), Quantity: 3}}},
	}
	in := BuildInput{Window: ResolveWindow(entity.PeriodWeek, time.Time{}, time.Time{}, now), Now: now, Orders: orders}

	a, c := b.Build(in), b.Build(in)
	assert.NotEqual(t, a.ID, c.ID)
	c.ID = a.ID
	assert.Equal(t, a, c)
}
