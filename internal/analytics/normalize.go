package analytics

import (
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

const UncategorizedCategory = "Uncategorized"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var statusAliases = map[string]entity.OrderStatus{
	"canceled": entity.OrderStatusCancelled,
}

// ParseTimestamp parses an order timestamp. Layouts without a zone are UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeStatus lower-cases and trims a free-form status.
func NormalizeStatus(s string) entity.OrderStatus {
	st := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := statusAliases[st]; ok {
		return alias
	}
	return entity.OrderStatus(st)
}

// NormalizeOrder converts a raw record without its lines. The second return
// value is false when the timestamp is unusable.
func NormalizeOrder(raw entity.RawOrder) (entity.Order, bool) {
	created, ok := ParseTimestamp(raw.CreatedAt)
	if !ok {
		return entity.Order{}, false
	}
	return entity.Order{
		ID:         raw.ID,
		CreatedAt:  created,
		Status:     NormalizeStatus(raw.Status),
		CustomerID: strings.TrimSpace(raw.UserID),
		Total:      minorUnits(raw.TotalPrice),
	}, true
}

// NormalizeLines drops lines without a positive quantity.
func NormalizeLines(items []entity.RawOrderLine) []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		l := entity.OrderLine{
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Category:      UncategorizedCategory,
			Quantity:      it.Quantity,
			VariantPrice:  it.VariantPrice,
			PriceSnapshot: it.PriceSnapshot,
			ProductPrice:  it.ProductPrice,
			DiscountPct:   it.DiscountPct,
		}
		if it.VariantID.Valid {
			l.VariantID = int(it.VariantID.Int64)
			l.HasVariant = true
		}
		if it.CategoryName.Valid && strings.TrimSpace(it.CategoryName.String) != "" {
			l.Category = strings.TrimSpace(it.CategoryName.String)
		}
		lines = append(lines, l)
	}
	return lines
}

// NormalizeOrders produces canonical orders from fetched source data.
// Orders with unparseable timestamps are dropped.
func NormalizeOrders(src *entity.SourceData) []entity.Order {
	if src == nil {
		return nil
	}
	failed := make(map[int]struct{}, len(src.FailedOrders))
	for _, id := range src.FailedOrders {
		failed[id] = struct{}{}
	}

	orders := make([]entity.Order, 0, len(src.Orders))
	for _, raw := range src.Orders {
		o, ok := NormalizeOrder(raw)
		if !ok {
			continue
		}
		if _, ok := failed[o.ID]; ok {
			o.DetailMissing = true
		} else if d, ok := src.Details[o.ID]; ok {
			o.Lines = NormalizeLines(d.Items)
		}
		orders = append(orders, o)
	}
	return orders
}

func minorUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
