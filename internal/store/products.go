package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

type productStore struct {
	*MYSQLStore
}

// Products returns an object implementing the products interface
func (ms *MYSQLStore) Products() dependency.Products {
	return &productStore{
		MYSQLStore: ms,
	}
}

const productColumns = `
		p.id,
		p.name,
		p.category_id,
		c.name AS category_name
	FROM product p
	LEFT JOIN category c ON c.id = p.category_id`

func (ms *productStore) ListProducts(ctx context.Context) ([]entity.Product, error) {
	query := `SELECT` + productColumns + `
	ORDER BY p.id`

	prds, err := QueryListNamed[entity.Product](ctx, ms.db, query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get products: %w", err)
	}
	return prds, nil
}

func (ms *productStore) GetProductDetail(ctx context.Context, productID int) (*entity.ProductDetail, error) {
	query := `SELECT` + productColumns + `
	WHERE p.id = :id`

	prd, err := QueryNamedOne[entity.Product](ctx, ms.db, query, map[string]any{
		"id": productID,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get product by id: %w", err)
	}

	query = `
	SELECT
		pv.id,
		pv.product_id,
		pv.sku,
		pv.stock,
		pv.price,
		pv.cost_price
	FROM product_variant pv
	WHERE pv.product_id = :id
	ORDER BY pv.id`

	variants, err := QueryListNamed[entity.Variant](ctx, ms.db, query, map[string]any{
		"id": productID,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get variants: %w", err)
	}

	return &entity.ProductDetail{
		Product:  prd,
		Variants: variants,
	}, nil
}
