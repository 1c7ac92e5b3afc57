package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertEntitySnapshotToDto(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := &entity.MetricsSnapshot{
		ID:          "snap-1",
		GeneratedAt: start.Add(48 * time.Hour),
		Window: entity.TimeWindow{
			Period: entity.PeriodMonth,
			Start:  start,
			End:    start.AddDate(0, 1, 0).Add(-time.Nanosecond),
			Label:  "May 2024",
		},
		Revenue: entity.MetricWithComparison{
			Value:        decimal.NewFromInt(2200),
			CompareValue: decimal.NewFromInt(1000),
			ChangePct:    decimal.NewFromInt(120),
		},
		Current: entity.WindowMetrics{
			Revenue:        2200,
			OrdersByStatus: []entity.StatusCount{{Status: entity.OrderStatusPaid, Count: 2}},
			TopProducts: []entity.ProductRevenue{
				{ProductID: 7, ProductName: "Coat", Revenue: 2200, UnitsSold: 2, StockStatus: entity.StockLow},
			},
		},
		Customers: entity.CustomerSummary{
			Total: 1,
			Tiers: []entity.TierCount{{Tier: entity.TierBronze, Customers: 1}},
		},
		Inventory: entity.InventorySummary{
			TotalVariants: 1,
			TotalStock:    3,
			Buckets:       []entity.StockBucketCount{{Status: entity.StockLow, Variants: 1}},
		},
		FetchFailures: entity.FetchFailures{Orders: []int{4}},
	}

	got := ConvertEntitySnapshotToDto(s)
	require.NotNil(t, got)

	assert.Equal(t, "month", got.Window.Period)
	assert.Equal(t, "May 2024", got.Window.Label)
	assert.True(t, got.Revenue.ChangePct.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, []StatusCount{{Status: "paid", Count: 2}}, got.Current.OrdersByStatus)
	assert.Equal(t, "Low Stock", got.Current.TopProducts[0].StockStatus)
	assert.Equal(t, []TierCount{{Tier: "Bronze", Customers: 1}}, got.Customers.Tiers)
	assert.Equal(t, []int{4}, got.FetchFailures.Orders)
	assert.Equal(t, []int{}, got.FetchFailures.Products)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "fetch_failures")
	assert.Contains(t, raw, "avg_order_value")

	cur := raw["current"].(map[string]any)
	assert.Equal(t, []any{}, cur["revenue_series"])
}

func TestConvertEntitySnapshotToDto_Nil(t *testing.T) {
	assert.Nil(t, ConvertEntitySnapshotToDto(nil))
}

func TestConvertEntityInventoryToDto(t *testing.T) {
	inv := entity.InventorySummary{
		TotalVariants: 2,
		TotalStock:    12,
		Buckets: []entity.StockBucketCount{
			{Status: entity.StockOutOfStock, Variants: 1},
			{Status: entity.StockIn, Variants: 1},
		},
		Products: []entity.ProductStock{{
			ProductID:   1,
			ProductName: "Tee",
			TotalStock:  12,
			Variants:    2,
			Status:      entity.StockIn,
			Buckets:     []entity.StockBucketCount{{Status: entity.StockIn, Variants: 1}},
		}},
	}

	got := ConvertEntityInventoryToDto(inv)
	assert.Equal(t, 12, got.TotalStock)
	assert.Equal(t, "Out of Stock", got.Buckets[0].Status)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "In Stock", got.Products[0].Status)
}
