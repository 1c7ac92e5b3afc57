// Package fetch gathers everything a snapshot needs from the order and
// product collaborators. Reads fan out concurrently and are joined before
// anything is returned.
package fetch

import (
	"context"
	"fmt"
	"sort"

	"log/slog"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the gatherer.
type Config struct {
	// Concurrency caps in-flight detail reads.
	Concurrency int `mapstructure:"concurrency"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		Concurrency: 16,
	}
}

// Gatherer fetches source data for one snapshot. It keeps no state between
// calls and is safe for concurrent use.
type Gatherer struct {
	orders   dependency.Orders
	products dependency.Products
	c        *Config
}

// New creates a new gatherer.
func New(c *Config, orders dependency.Orders, products dependency.Products) *Gatherer {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConfig().Concurrency
	}
	return &Gatherer{
		orders:   orders,
		products: products,
		c:        c,
	}
}

// Gather lists orders and products, then fetches details for the orders
// selected by needDetail (all when nil) and for every product. A failed
// detail read is recorded and logged, it does not fail the gather. A failed
// list read does. If ctx is cancelled before everything is joined, only the
// context error is returned.
func (g *Gatherer) Gather(ctx context.Context, needDetail func(entity.RawOrder) bool) (*entity.SourceData, error) {
	var (
		orders   []entity.RawOrder
		products []entity.Product
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		orders, err = g.orders.ListOrders(egCtx)
		if err != nil {
			return fmt.Errorf("can't list orders: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		products, err = g.products.ListProducts(egCtx)
		if err != nil {
			return fmt.Errorf("can't list products: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	var ids []int
	for _, o := range orders {
		if needDetail == nil || needDetail(o) {
			ids = append(ids, o.ID)
		}
	}

	details, failedOrders, productDetails, failedProducts := g.fetchDetails(ctx, ids, products)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := &entity.SourceData{
		Orders:         orders,
		Details:        make(map[int]entity.OrderDetail, len(details)),
		FailedOrders:   failedOrders,
		Products:       productDetails,
		FailedProducts: failedProducts,
	}
	for _, d := range details {
		src.Details[d.OrderID] = d
	}
	return src, nil
}

// GatherProducts lists products and fetches all of their variants.
func (g *Gatherer) GatherProducts(ctx context.Context) ([]entity.ProductDetail, []int, error) {
	products, err := g.products.ListProducts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("can't list products: %w", err)
	}
	_, _, details, failed := g.fetchDetails(ctx, nil, products)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return details, failed, nil
}

// fetchDetails runs every detail read under one bounded group. Each task
// owns its slot in the result slices.
func (g *Gatherer) fetchDetails(ctx context.Context, orderIDs []int, products []entity.Product) ([]entity.OrderDetail, []int, []entity.ProductDetail, []int) {
	orderSlots := make([]*entity.OrderDetail, len(orderIDs))
	productSlots := make([]*entity.ProductDetail, len(products))

	var eg errgroup.Group
	eg.SetLimit(g.c.Concurrency)

	for i, id := range orderIDs {
		i, id := i, id
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			d, err := g.orders.GetOrderDetail(ctx, id)
			if err != nil {
				if ctx.Err() == nil {
					slog.Default().WarnContext(ctx, "can't get order detail",
						slog.String("err", err.Error()),
						slog.Int("order_id", id),
					)
				}
				return nil
			}
			if d != nil {
				od := *d
				od.OrderID = id
				orderSlots[i] = &od
			}
			return nil
		})
	}

	for i, p := range products {
		i, p := i, p
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			d, err := g.products.GetProductDetail(ctx, p.ID)
			if err != nil {
				if ctx.Err() == nil {
					slog.Default().WarnContext(ctx, "can't get product detail",
						slog.String("err", err.Error()),
						slog.Int("product_id", p.ID),
					)
				}
				return nil
			}
			productSlots[i] = d
			return nil
		})
	}

	// tasks never return errors
	_ = eg.Wait()

	var (
		details        []entity.OrderDetail
		failedOrders   []int
		productDetails []entity.ProductDetail
		failedProducts []int
	)
	for i, d := range orderSlots {
		if d == nil {
			failedOrders = append(failedOrders, orderIDs[i])
			continue
		}
		details = append(details, *d)
	}
	for i, d := range productSlots {
		if d == nil {
			failedProducts = append(failedProducts, products[i].ID)
			continue
		}
		productDetails = append(productDetails, *d)
	}
	sort.Ints(failedOrders)
	sort.Ints(failedProducts)
	return details, failedOrders, productDetails, failedProducts
}
