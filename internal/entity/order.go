package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the canonical lower-cased order status.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// KnownOrderStatuses lists statuses in funnel order.
var KnownOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// RawOrder is an order record as the order service hands it over.
type RawOrder struct {
	ID         int             `db:"id"`
	CreatedAt  string          `db:"created_at"`
	Status     string          `db:"status"`
	TotalPrice decimal.Decimal `db:"total_price"`
	UserID     string          `db:"user_id"`
}

// RawOrderLine is a single order_item row with every price candidate the
// order service knows about. Any candidate may be missing.
type RawOrderLine struct {
	OrderID       int                 `db:"order_id"`
	ProductID     int                 `db:"product_id"`
	ProductName   string              `db:"product_name"`
	VariantID     sql.NullInt64       `db:"variant_id"`
	CategoryID    sql.NullInt64       `db:"category_id"`
	CategoryName  sql.NullString      `db:"category_name"`
	Quantity      int                 `db:"quantity"`
	VariantPrice  decimal.NullDecimal `db:"variant_price"`
	PriceSnapshot decimal.NullDecimal `db:"price_snapshot"`
	ProductPrice  decimal.NullDecimal `db:"product_price"`
	DiscountPct   decimal.NullDecimal `db:"discount_percentage"`
}

// OrderDetail is the lazily loaded part of an order.
type OrderDetail struct {
	OrderID int
	Items   []RawOrderLine
}

// Order is the canonical order used by every aggregation step.
type Order struct {
	ID         int
	CreatedAt  time.Time
	Status     OrderStatus
	CustomerID string
	// Total is the authoritative server computed total in minor units.
	Total int64
	Lines []OrderLine
	// DetailMissing is set when the line items could not be fetched.
	DetailMissing bool
}

// OrderLine is a canonical order line. Price candidates keep their
// optionality, the price resolver decides which one is realized.
type OrderLine struct {
	ProductID     int
	ProductName   string
	VariantID     int
	HasVariant    bool
	Category      string
	Quantity      int
	VariantPrice  decimal.NullDecimal
	PriceSnapshot decimal.NullDecimal
	ProductPrice  decimal.NullDecimal
	DiscountPct   decimal.NullDecimal
}
