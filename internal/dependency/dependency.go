package dependency

import (
	"context"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jmoiron/sqlx"
)

type (
	// Orders reads the order service's records.
	Orders interface {
		// ListOrders returns every order, raw and unvalidated.
		ListOrders(ctx context.Context) ([]entity.RawOrder, error)
		// GetOrderDetail returns the line items of a single order.
		GetOrderDetail(ctx context.Context, orderID int) (*entity.OrderDetail, error)
	}

	// Products reads the catalog.
	Products interface {
		ListProducts(ctx context.Context) ([]entity.Product, error)
		// GetProductDetail returns a product with all of its variants.
		GetProductDetail(ctx context.Context, productID int) (*entity.ProductDetail, error)
	}

	// Repository is the read model the snapshot is computed from.
	Repository interface {
		Orders() Orders
		Products() Products
		Ping(ctx context.Context) error
		Now() time.Time
		Close()
	}

	// DB is the read-only sqlx surface the store queries through.
	DB interface {
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	}

	// SnapshotCache stores built snapshots between requests.
	SnapshotCache interface {
		// Get returns gerr.ErrSnapshotNotCached on a miss.
		Get(ctx context.Context, key string) (*entity.MetricsSnapshot, error)
		Set(ctx context.Context, key string, snap *entity.MetricsSnapshot) error
		Close() error
	}

	// Dashboard serves snapshots to presentation layers.
	Dashboard interface {
		Snapshot(ctx context.Context, req entity.SnapshotRequest) (*entity.MetricsSnapshot, error)
		// Refresh rebuilds the snapshot and overwrites any cached copy.
		Refresh(ctx context.Context, req entity.SnapshotRequest) (*entity.MetricsSnapshot, error)
		Inventory(ctx context.Context) (*entity.InventorySummary, error)
	}
)
