package analytics

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ResolveUnitPrice returns the realized unit price of a line in minor units.
//
// Candidates are tried in order: the variant price (only for lines that
// reference a variant), the price snapshot taken at order time, the current
// product price. A snapshot is discounted only when it still equals the
// product price, otherwise it already is the discounted figure. Zero means
// the line contributes nothing.
func ResolveUnitPrice(l entity.OrderLine) int64 {
	if l.HasVariant && l.VariantPrice.Valid {
		return nonNegative(minorUnits(l.VariantPrice.Decimal))
	}

	if l.PriceSnapshot.Valid {
		snapshot := l.PriceSnapshot.Decimal
		if hasDiscount(l) && l.ProductPrice.Valid && snapshot.Equal(l.ProductPrice.Decimal) {
			return applyDiscount(snapshot, l.DiscountPct.Decimal)
		}
		return nonNegative(minorUnits(snapshot))
	}

	if l.ProductPrice.Valid {
		if hasDiscount(l) {
			return applyDiscount(l.ProductPrice.Decimal, l.DiscountPct.Decimal)
		}
		return nonNegative(minorUnits(l.ProductPrice.Decimal))
	}

	return 0
}

// LineRevenue is the realized unit price times quantity.
func LineRevenue(l entity.OrderLine) int64 {
	return ResolveUnitPrice(l) * int64(l.Quantity)
}

func hasDiscount(l entity.OrderLine) bool {
	return l.DiscountPct.Valid && l.DiscountPct.Decimal.IsPositive()
}

// applyDiscount computes round(price * (100 - pct) / 100), floored at zero.
func applyDiscount(price, pct decimal.Decimal) int64 {
	return nonNegative(minorUnits(price.Mul(hundred.Sub(pct)).Div(hundred)))
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
