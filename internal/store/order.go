package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

type orderStore struct {
	*MYSQLStore
}

// Orders returns an object implementing the orders interface
func (ms *MYSQLStore) Orders() dependency.Orders {
	return &orderStore{
		MYSQLStore: ms,
	}
}

// ListOrders returns every order as stored. Status and timestamp are handed
// over untouched, normalization happens downstream.
func (ms *orderStore) ListOrders(ctx context.Context) ([]entity.RawOrder, error) {
	query := `
	SELECT
		co.id,
		co.created_at,
		co.status,
		co.total_price,
		COALESCE(co.user_id, '') AS user_id
	FROM customer_order co
	ORDER BY co.created_at, co.id`

	orders, err := QueryListNamed[entity.RawOrder](ctx, ms.db, query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get orders: %w", err)
	}
	return orders, nil
}

// GetOrderDetail returns the line items of an order joined with every price
// candidate: the variant price, the snapshot taken at checkout and the
// current product price with its discount.
func (ms *orderStore) GetOrderDetail(ctx context.Context, orderID int) (*entity.OrderDetail, error) {
	query := `
	SELECT
		oi.order_id,
		oi.product_id,
		p.name AS product_name,
		oi.product_variant_id AS variant_id,
		p.category_id,
		c.name AS category_name,
		oi.quantity,
		pv.price AS variant_price,
		oi.price_snapshot,
		p.price AS product_price,
		p.discount_percentage
	FROM order_item oi
	JOIN product p ON p.id = oi.product_id
	LEFT JOIN product_variant pv ON pv.id = oi.product_variant_id
	LEFT JOIN category c ON c.id = p.category_id
	WHERE oi.order_id = :orderId
	ORDER BY oi.id`

	items, err := QueryListNamed[entity.RawOrderLine](ctx, ms.db, query, map[string]any{
		"orderId": orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get order items: %w", err)
	}
	return &entity.OrderDetail{
		OrderID: orderID,
		Items:   items,
	}, nil
}
