package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/jekabolt/grbpwr-analytics/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 31, 12, 0, 0, 0, time.UTC)

type fakeGatherer struct {
	src      *entity.SourceData
	products []entity.ProductDetail
	err      error

	mu       sync.Mutex
	calls    int
	selected []int
}

func (f *fakeGatherer) Gather(ctx context.Context, needDetail func(entity.RawOrder) bool) (*entity.SourceData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.selected = nil
	for _, o := range f.src.Orders {
		if needDetail(o) {
			f.selected = append(f.selected, o.ID)
		}
	}
	return f.src, nil
}

func (f *fakeGatherer) GatherProducts(ctx context.Context) ([]entity.ProductDetail, []int, error) {
	return f.products, []int{99}, f.err
}

type mapCache struct {
	mu   sync.Mutex
	m    map[string]*entity.MetricsSnapshot
	sets int
}

func (c *mapCache) Get(ctx context.Context, key string) (*entity.MetricsSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.m[key]
	if !ok {
		return nil, gerr.ErrSnapshotNotCached
	}
	return s, nil
}

func (c *mapCache) Set(ctx context.Context, key string, snap *entity.MetricsSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]*entity.MetricsSnapshot)
	}
	c.m[key] = snap
	c.sets++
	return nil
}

func (c *mapCache) Close() error { return nil }

func maySource() *entity.SourceData {
	return &entity.SourceData{
		Orders: []entity.RawOrder{
			{ID: 1, CreatedAt: "2024-05-01", Status: "completed", TotalPrice: decimal.NewFromInt(100000), UserID: "u1"},
			{ID: 2, CreatedAt: "2024-05-03", Status: "pending", TotalPrice: decimal.NewFromInt(5000)},
			{ID: 3, CreatedAt: "2023-01-03", Status: "paid", TotalPrice: decimal.NewFromInt(7000), UserID: "u1"},
			{ID: 4, CreatedAt: "garbage", Status: "paid", TotalPrice: decimal.NewFromInt(7000)},
		},
		Details: map[int]entity.OrderDetail{
			1: {OrderID: 1, Items: []entity.RawOrderLine{{
				OrderID:       1,
				ProductID:     3,
				CategoryName:  sql.NullString{String: "Shirts", Valid: true},
				Quantity:      1,
				PriceSnapshot: decimal.NewNullDecimal(decimal.NewFromInt(100000)),
				ProductPrice:  decimal.NewNullDecimal(decimal.NewFromInt(100000)),
			}}},
		},
		Products: []entity.ProductDetail{{
			Product:  entity.Product{ID: 3, Name: "Oxford"},
			Variants: []entity.Variant{{ID: 30, ProductID: 3, Stock: 2}},
		}},
		FailedProducts: []int{8},
	}
}

func newTestService(t *testing.T, g Gatherer, c *mapCache) (*Service, *telemetry.Metrics) {
	t.Helper()
	b, err := analytics.NewBuilder(analytics.DefaultConfig())
	require.NoError(t, err)
	m := telemetry.New()
	var s *Service
	if c == nil {
		s = New(g, b, nil, m, WithClock(func() time.Time { return testNow }))
	} else {
		s = New(g, b, c, m, WithClock(func() time.Time { return testNow }))
	}
	return s, m
}

func TestSnapshot_BuildsAndCaches(t *testing.T) {
	g := &fakeGatherer{src: maySource()}
	c := &mapCache{}
	s, m := newTestService(t, g, c)
	ctx := context.Background()

	snap, err := s.Snapshot(ctx, entity.SnapshotRequest{Period: entity.PeriodMonth})
	require.NoError(t, err)
	assert.Equal(t, []entity.CategoryRevenue{{Category: "Shirts", Revenue: 100000}}, snap.Current.RevenueByCategory)
	assert.Equal(t, int64(100000), snap.Current.Sales.GrossRevenue)
	assert.Equal(t, 1, snap.Current.Sales.UnitsSold)
	assert.Equal(t, []int{8}, snap.FetchFailures.Products)
	assert.Equal(t, []int{1}, g.selected)

	again, err := s.Snapshot(ctx, entity.SnapshotRequest{Period: entity.PeriodMonth})
	require.NoError(t, err)
	assert.Equal(t, snap.ID, again.ID)
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, 1, c.sets)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues(telemetry.CacheHit)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues(telemetry.CacheMiss)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SnapshotsBuilt.WithLabelValues("month", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchFailures.WithLabelValues(telemetry.FailureProductDetail)))
}

func TestSnapshot_TopNIsPartOfKey(t *testing.T) {
	g := &fakeGatherer{src: maySource()}
	s, _ := newTestService(t, g, &mapCache{})
	ctx := context.Background()

	_, err := s.Snapshot(ctx, entity.SnapshotRequest{Period: entity.PeriodMonth, TopN: 3})
	require.NoError(t, err)
	_, err = s.Snapshot(ctx, entity.SnapshotRequest{Period: entity.PeriodMonth, TopN: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, g.calls)
}

func TestRefresh_BypassesCache(t *testing.T) {
	g := &fakeGatherer{src: maySource()}
	c := &mapCache{}
	s, _ := newTestService(t, g, c)
	ctx := context.Background()

	first, err := s.Snapshot(ctx, entity.SnapshotRequest{Period: entity.PeriodWeek})
	require.NoError(t, err)
	second, err := s.Refresh(ctx, entity.SnapshotRequest{Period: entity.PeriodWeek})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, g.calls)
	assert.Equal(t, 2, c.sets)
}

func TestSnapshot_NoCache(t *testing.T) {
	g := &fakeGatherer{src: maySource()}
	s, _ := newTestService(t, g, nil)

	for i := 0; i < 2; i++ {
		_, err := s.Snapshot(context.Background(), entity.SnapshotRequest{Period: entity.PeriodDay})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, g.calls)
}

func TestSnapshot_InvalidRequest(t *testing.T) {
	s, _ := newTestService(t, &fakeGatherer{src: maySource()}, nil)
	_, err := s.Snapshot(context.Background(), entity.SnapshotRequest{Period: entity.PeriodMonth, TopN: 1000})
	assert.ErrorIs(t, err, gerr.ErrInvalidRequest)
}

func TestSnapshot_CustomSpanLimit(t *testing.T) {
	g := &fakeGatherer{src: maySource()}
	s, _ := newTestService(t, g, nil)

	_, err := s.Snapshot(context.Background(), entity.SnapshotRequest{
		Period: entity.PeriodCustom,
		From:   time.Date(1, time.January, 2, 0, 0, 0, 0, time.UTC),
		To:     time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, gerr.ErrInvalidRequest)
	assert.Zero(t, g.calls)

	limit := analytics.DefaultConfig().MaxCustomDays
	from := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.Snapshot(context.Background(), entity.SnapshotRequest{
		Period: entity.PeriodCustom,
		From:   from,
		To:     from.AddDate(0, 0, limit-1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, g.calls)
}

func TestSnapshot_GatherError(t *testing.T) {
	g := &fakeGatherer{err: errors.New("order service down")}
	s, m := newTestService(t, g, &mapCache{})

	_, err := s.Snapshot(context.Background(), entity.SnapshotRequest{Period: entity.PeriodMonth})
	assert.ErrorContains(t, err, "order service down")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SnapshotsBuilt.WithLabelValues("month", "error")))
}

func TestNeedDetail(t *testing.T) {
	s, _ := newTestService(t, &fakeGatherer{}, nil)
	w := analytics.ResolveWindow(entity.PeriodMonth, time.Time{}, time.Time{}, testNow)
	need := s.needDetail(w, testNow)

	assert.True(t, need(entity.RawOrder{CreatedAt: "2024-05-10", Status: "paid"}))
	assert.True(t, need(entity.RawOrder{CreatedAt: "2024-04-10", Status: "Shipped"}))
	assert.False(t, need(entity.RawOrder{CreatedAt: "2024-03-10", Status: "paid"}))
	assert.False(t, need(entity.RawOrder{CreatedAt: "2024-05-10", Status: "cancelled"}))
	assert.False(t, need(entity.RawOrder{CreatedAt: "", Status: "paid"}))

	custom := analytics.ResolveWindow(entity.PeriodCustom,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), testNow)
	needCustom := s.needDetail(custom, testNow)
	assert.True(t, needCustom(entity.RawOrder{CreatedAt: "2024-05-31T11:30:00Z", Status: "paid"}))
	assert.False(t, needCustom(entity.RawOrder{CreatedAt: "2024-05-31T10:30:00Z", Status: "paid"}))
}

func TestInventory(t *testing.T) {
	g := &fakeGatherer{products: maySource().Products}
	s, m := newTestService(t, g, nil)

	inv, err := s.Inventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inv.TotalVariants)
	require.Len(t, inv.Products, 1)
	assert.Equal(t, entity.StockCritical, inv.Products[0].Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchFailures.WithLabelValues(telemetry.FailureProductDetail)))
}
