// Package dashboard serves metrics snapshots: it resolves the window, checks
// the cache, gathers source data, runs the analytics builder and caches the
// result.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/jekabolt/grbpwr-analytics/internal/telemetry"
)

// Gatherer fetches the raw inputs of a snapshot.
type Gatherer interface {
	Gather(ctx context.Context, needDetail func(entity.RawOrder) bool) (*entity.SourceData, error)
	GatherProducts(ctx context.Context) ([]entity.ProductDetail, []int, error)
}

// Service implements dependency.Dashboard.
type Service struct {
	gatherer Gatherer
	builder  *analytics.Builder
	cache    dependency.SnapshotCache
	metrics  *telemetry.Metrics
	now      func() time.Time
}

var _ dependency.Dashboard = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the reference instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a dashboard service. A nil cache disables caching.
func New(g Gatherer, b *analytics.Builder, c dependency.SnapshotCache, m *telemetry.Metrics, opts ...Option) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if m == nil {
		m = telemetry.New()
	}
	s := &Service{
		gatherer: g,
		builder:  b,
		cache:    c,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the snapshot for req, from cache when possible.
func (s *Service) Snapshot(ctx context.Context, req entity.SnapshotRequest) (*entity.MetricsSnapshot, error) {
	return s.snapshot(ctx, req, true)
}

// Refresh always rebuilds and overwrites the cached snapshot.
func (s *Service) Refresh(ctx context.Context, req entity.SnapshotRequest) (*entity.MetricsSnapshot, error) {
	return s.snapshot(ctx, req, false)
}

// Inventory returns the current stock rollup. It is never cached.
func (s *Service) Inventory(ctx context.Context) (*entity.InventorySummary, error) {
	products, failed, err := s.gatherer.GatherProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't gather products: %w", err)
	}
	s.metrics.RecordFetchFailures(telemetry.FailureProductDetail, len(failed))
	inv := s.builder.Inventory(products)
	return &inv, nil
}

func (s *Service) snapshot(ctx context.Context, req entity.SnapshotRequest, useCache bool) (*entity.MetricsSnapshot, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", gerr.ErrInvalidRequest, err)
	}
	if err := s.checkCustomSpan(req); err != nil {
		return nil, err
	}

	now := s.now()
	w := analytics.ResolveWindow(req.Period, req.From, req.To, now)
	topN := req.TopN
	if topN == 0 {
		topN = s.builder.Config().TopN
	}
	key := cache.SnapshotKey(w, topN)

	if useCache {
		snap, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.metrics.RecordCacheLookup(telemetry.CacheHit)
			return snap, nil
		case errors.Is(err, gerr.ErrSnapshotNotCached):
			s.metrics.RecordCacheLookup(telemetry.CacheMiss)
		default:
			s.metrics.RecordCacheLookup(telemetry.CacheError)
			slog.Default().WarnContext(ctx, "can't read cached snapshot",
				slog.String("err", err.Error()),
				slog.String("key", key),
			)
		}
	}

	start := time.Now()
	snap, err := s.build(ctx, w, now, topN)
	if err != nil {
		s.metrics.RecordSnapshot(string(w.Period), "error", time.Since(start))
		return nil, err
	}
	s.metrics.RecordSnapshot(string(w.Period), "ok", time.Since(start))

	if err := s.cache.Set(ctx, key, snap); err != nil {
		slog.Default().WarnContext(ctx, "can't cache snapshot",
			slog.String("err", err.Error()),
			slog.String("key", key),
		)
	}
	return snap, nil
}

func (s *Service) build(ctx context.Context, w entity.TimeWindow, now time.Time, topN int) (*entity.MetricsSnapshot, error) {
	src, err := s.gatherer.Gather(ctx, s.needDetail(w, now))
	if err != nil {
		return nil, fmt.Errorf("can't gather source data: %w", err)
	}
	s.metrics.RecordFetchFailures(telemetry.FailureOrderDetail, len(src.FailedOrders))
	s.metrics.RecordFetchFailures(telemetry.FailureProductDetail, len(src.FailedProducts))

	snap := s.builder.Build(analytics.BuildInput{
		Window:   w,
		Now:      now,
		TopN:     topN,
		Orders:   analytics.NormalizeOrders(src),
		Products: src.Products,
		Failures: entity.FetchFailures{
			Orders:   src.FailedOrders,
			Products: src.FailedProducts,
		},
	})

	slog.Default().InfoContext(ctx, "snapshot built",
		slog.String("snapshot_id", snap.ID),
		slog.String("period", string(w.Period)),
		slog.String("window", w.Label),
		slog.Int("orders", len(src.Orders)),
		slog.Int("failed_orders", len(src.FailedOrders)),
		slog.Int("failed_products", len(src.FailedProducts)),
	)
	return snap, nil
}

// needDetail selects the orders whose lines feed a snapshot: recognized
// orders inside the current or previous window, or inside the live window.
func (s *Service) needDetail(w entity.TimeWindow, now time.Time) func(entity.RawOrder) bool {
	liveFrom := now.Add(-s.builder.Config().LiveWindow)
	return func(o entity.RawOrder) bool {
		if !s.builder.IsRecognized(analytics.NormalizeStatus(o.Status)) {
			return false
		}
		t, ok := analytics.ParseTimestamp(o.CreatedAt)
		if !ok {
			return false
		}
		if w.Contains(t) || w.ContainsPrev(t) {
			return true
		}
		return t.After(liveFrom) && !t.After(now)
	}
}

func (s *Service) checkCustomSpan(req entity.SnapshotRequest) error {
	if req.Period != entity.PeriodCustom || req.From.IsZero() || req.To.IsZero() {
		return nil
	}
	limit := s.builder.Config().MaxCustomDays
	if days := analytics.CustomSpanDays(req.From, req.To); days > limit {
		return fmt.Errorf("%w: custom range spans %d days, limit is %d", gerr.ErrInvalidRequest, days, limit)
	}
	return nil
}
