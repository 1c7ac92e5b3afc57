package analytics

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// ClassifyStock maps a stock count to exactly one bucket.
func ClassifyStock(stock, critical, low int) entity.StockStatus {
	switch {
	case stock <= 0:
		return entity.StockOutOfStock
	case stock < critical:
		return entity.StockCritical
	case stock < low:
		return entity.StockLow
	default:
		return entity.StockIn
	}
}

// AggregateInventory buckets every variant of every product. Inventory is a
// point-in-time view, no window applies.
func AggregateInventory(products []entity.ProductDetail, critical, low int) entity.InventorySummary {
	s := entity.InventorySummary{
		Buckets:  emptyBuckets(),
		Products: make([]entity.ProductStock, 0, len(products)),
	}

	for _, p := range products {
		ps := entity.ProductStock{
			ProductID:   p.Product.ID,
			ProductName: p.Product.Name,
			Variants:    len(p.Variants),
			Buckets:     emptyBuckets(),
		}
		for _, v := range p.Variants {
			stock := v.Stock
			if stock < 0 {
				stock = 0
			}
			status := ClassifyStock(v.Stock, critical, low)
			addBucket(s.Buckets, status)
			addBucket(ps.Buckets, status)
			ps.TotalStock += stock
			s.TotalVariants++
			s.TotalStock += stock
		}
		ps.Status = ClassifyStock(ps.TotalStock, critical, low)
		s.Products = append(s.Products, ps)
	}
	return s
}

// StockByProduct indexes the per-product rollup by product id.
func StockByProduct(s entity.InventorySummary) map[int]entity.StockStatus {
	m := make(map[int]entity.StockStatus, len(s.Products))
	for _, p := range s.Products {
		m[p.ProductID] = p.Status
	}
	return m
}

func emptyBuckets() []entity.StockBucketCount {
	b := make([]entity.StockBucketCount, len(entity.StockStatuses))
	for i, st := range entity.StockStatuses {
		b[i].Status = st
	}
	return b
}

func addBucket(b []entity.StockBucketCount, st entity.StockStatus) {
	for i := range b {
		if b[i].Status == st {
			b[i].Variants++
			return
		}
	}
}
