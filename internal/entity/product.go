package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product row.
type Product struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	CategoryID   sql.NullInt64  `db:"category_id"`
	CategoryName sql.NullString `db:"category_name"`
}

// Variant represents the product_variant table.
type Variant struct {
	ID        int                 `db:"id"`
	ProductID int                 `db:"product_id"`
	SKU       string              `db:"sku"`
	Stock     int                 `db:"stock"`
	Price     decimal.NullDecimal `db:"price"`
	CostPrice decimal.NullDecimal `db:"cost_price"`
}

// ProductDetail is a product together with its variants.
type ProductDetail struct {
	Product  Product
	Variants []Variant
}

// StockStatus is the stock-health bucket of a variant or a product.
type StockStatus string

const (
	StockOutOfStock StockStatus = "Out of Stock"
	StockCritical   StockStatus = "Critical"
	StockLow        StockStatus = "Low Stock"
	StockIn         StockStatus = "In Stock"
)

// StockStatuses lists buckets from worst to best.
var StockStatuses = []StockStatus{
	StockOutOfStock,
	StockCritical,
	StockLow,
	StockIn,
}
