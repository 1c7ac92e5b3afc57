package analytics

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// ChangePct returns the percentage change from previous to current.
// A zero previous value yields 0 when current is zero too, and +100 or
// -100 otherwise so new activity still shows up. Negative previous values
// (profit) are divided by their magnitude to keep the sign meaningful.
func ChangePct(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		switch {
		case current.IsPositive():
			return hundred
		case current.IsNegative():
			return hundred.Neg()
		default:
			return decimal.Zero
		}
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2)
}

// Compare builds a metric with its previous value and change.
func Compare(current, previous decimal.Decimal) entity.MetricWithComparison {
	return entity.MetricWithComparison{
		Value:        current,
		CompareValue: previous,
		ChangePct:    ChangePct(current, previous),
	}
}

func compareInt(current, previous int64) entity.MetricWithComparison {
	return Compare(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}
