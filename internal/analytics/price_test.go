package analytics

import (
	"testing"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestResolveUnitPrice(t *testing.T) {
	tests := []struct {
		name string
		line entity.OrderLine
		want int64
	}{
		{
			name: "snapshot differs from product price, discount ignored",
			line: entity.OrderLine{VariantPrice: nd(100), PriceSnapshot: nd(90), ProductPrice: nd(120), DiscountPct: nd(10), Quantity: 1},
			want: 90,
		},
		{
			name: "variant price wins when line references a variant",
			line: entity.OrderLine{HasVariant: true, VariantID: 7, VariantPrice: nd(100), PriceSnapshot: nd(90), ProductPrice: nd(120), DiscountPct: nd(10), Quantity: 1},
			want: 100,
		},
		{
			name: "snapshot equal to product price gets discounted",
			line: entity.OrderLine{PriceSnapshot: nd(1000), ProductPrice: nd(1000), DiscountPct: nd(25), Quantity: 1},
			want: 750,
		},
		{
			name: "no snapshot falls back to discounted product price",
			line: entity.OrderLine{ProductPrice: nd(999), DiscountPct: nd(10), Quantity: 1},
			want: 899,
		},
		{
			name: "no snapshot and no discount",
			line: entity.OrderLine{ProductPrice: nd(500), Quantity: 1},
			want: 500,
		},
		{
			name: "discount above 100 floors at zero",
			line: entity.OrderLine{ProductPrice: nd(500), DiscountPct: nd(150), Quantity: 1},
			want: 0,
		},
		{
			name: "no candidates",
			line: entity.OrderLine{Quantity: 3},
			want: 0,
		},
		{
			name: "negative snapshot is clamped",
			line: entity.OrderLine{PriceSnapshot: nd(-10), Quantity: 1},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveUnitPrice(tt.line))
		})
	}
}

func TestLineRevenue(t *testing.T) {
	l := entity.OrderLine{PriceSnapshot: nd(2500), ProductPrice: nd(3000), Quantity: 4}
	assert.Equal(t, int64(10000), LineRevenue(l))
}

func TestAggregateRevenue(t *testing.T) {
	orders := []entity.Order{
		{ID: 1, Total: 3000, Lines: []entity.OrderLine{
			{HasVariant: true, VariantID: 10, ProductPrice: nd(1000), Quantity: 2},
			{HasVariant: true, VariantID: 11, ProductPrice: nd(1000), Quantity: 1},
		}},
		{ID: 2, Total: 500, Lines: []entity.OrderLine{
			{ProductPrice: nd(500), Quantity: 1},
		}},
	}
	costs := CostLookup{10: 400}

	s := AggregateRevenue(orders, costs)
	assert.Equal(t, int64(3500), s.GrossRevenue)
	assert.Equal(t, int64(800), s.TotalCost)
	assert.Equal(t, int64(2700), s.Profit)
	assert.Equal(t, 4, s.UnitsSold)
	assert.Equal(t, 2, s.Orders)
	assert.True(t, decimal.NewFromInt(875).Equal(s.AvgSellPrice), s.AvgSellPrice.String())
	assert.True(t, decimal.NewFromInt(200).Equal(s.AvgCost), s.AvgCost.String())

	again := AggregateRevenue(orders, costs)
	assert.Equal(t, s.GrossRevenue, again.GrossRevenue)
	assert.Equal(t, s.TotalCost, again.TotalCost)
	assert.Equal(t, s.UnitsSold, again.UnitsSold)
}

func TestAggregateRevenue_Empty(t *testing.T) {
	s := AggregateRevenue(nil, nil)
	assert.Zero(t, s.GrossRevenue)
	assert.True(t, s.AvgSellPrice.IsZero())
	assert.True(t, s.AvgCost.IsZero())
}

func TestCostLookupFromProducts(t *testing.T) {
	products := []entity.ProductDetail{{
		Product: entity.Product{ID: 1},
		Variants: []entity.Variant{
			{ID: 10, ProductID: 1, CostPrice: nd(400)},
			{ID: 11, ProductID: 1},
		},
	}}
	costs := CostLookupFromProducts(products)
	assert.Equal(t, int64(400), costs.UnitCost(entity.OrderLine{HasVariant: true, VariantID: 10}))
	assert.Zero(t, costs.UnitCost(entity.OrderLine{HasVariant: true, VariantID: 11}))
	assert.Zero(t, costs.UnitCost(entity.OrderLine{VariantID: 10}))
}
