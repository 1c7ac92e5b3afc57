package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jekabolt/grbpwr-analytics/config"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	httpapi "github.com/jekabolt/grbpwr-analytics/internal/api/http"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/dashboard"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/fetch"
	"github.com/jekabolt/grbpwr-analytics/internal/ratelimit"
	"github.com/jekabolt/grbpwr-analytics/internal/snapshotwarm"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
	"github.com/jekabolt/grbpwr-analytics/internal/telemetry"
)

// App is the main application
type App struct {
	hs      *httpapi.Server
	db      dependency.Repository
	cache   dependency.SnapshotCache
	warmer  *snapshotwarm.Worker
	limiter *ratelimit.Limiter
	c       *config.Config
	done    chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting analytics")

	db, err := store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql", slog.String("err", err.Error()))
		return err
	}
	a.db = db

	sc, err := NewCache(ctx, a.c.Cache)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to redis", slog.String("err", err.Error()))
		return err
	}
	a.cache = sc

	m := telemetry.New()
	d, err := NewDashboard(a.c, a.db, a.cache, m)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't create dashboard", slog.String("err", err.Error()))
		return err
	}

	if a.c.SnapshotWarm.Enabled {
		a.warmer = snapshotwarm.New(&a.c.SnapshotWarm, d, m)
		if err = a.warmer.Start(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "cannot start snapshot warmer", slog.String("err", err.Error()))
			return err
		}
	}

	a.limiter = ratelimit.NewLimiter(a.c.RateLimit)

	a.hs = httpapi.New(&a.c.HTTP, d, a.db, m, a.limiter)
	if err = a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server", slog.String("err", err.Error()))
		return err
	}

	go func() {
		<-a.hs.Done()
		close(a.done)
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown", slog.String("err", err.Error()))
		}
	}
	if a.warmer != nil {
		if err := a.warmer.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "snapshot warmer stop", slog.String("err", err.Error()))
		}
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}

// NewCache connects to redis when caching is enabled and returns a no-op
// cache otherwise.
func NewCache(ctx context.Context, c cache.Config) (dependency.SnapshotCache, error) {
	if !c.Enabled {
		return cache.Nop{}, nil
	}
	r, err := cache.New(c)
	if err != nil {
		return nil, err
	}
	if err := r.Ping(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return r, nil
}

// NewDashboard wires the gatherer, the analytics builder and the cache.
func NewDashboard(c *config.Config, repo dependency.Repository, sc dependency.SnapshotCache, m *telemetry.Metrics) (*dashboard.Service, error) {
	b, err := analytics.NewBuilder(c.Analytics)
	if err != nil {
		return nil, err
	}
	g := fetch.New(&c.Fetch, repo.Orders(), repo.Products())
	return dashboard.New(g, b, sc, m, dashboard.WithClock(repo.Now)), nil
}
