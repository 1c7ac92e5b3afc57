package snapshotwarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jekabolt/grbpwr-analytics/internal/telemetry"
)

// Config holds configuration for the snapshot warmer.
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	WorkerInterval time.Duration `mapstructure:"worker_interval"`
	// Periods are the presets rebuilt on every tick.
	Periods []entity.Period `mapstructure:"periods"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		WorkerInterval: 4 * time.Minute,
		Periods:        entity.PresetPeriods,
	}
}

// Worker keeps preset snapshots fresh in the cache so dashboard loads
// rarely pay for a full build.
type Worker struct {
	dashboard dependency.Dashboard
	metrics   *telemetry.Metrics
	c         *Config
	ctx       context.Context
	stop      context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a new snapshot warmer.
func New(c *Config, d dependency.Dashboard, m *telemetry.Metrics) *Worker {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	if c.WorkerInterval == 0 {
		c.WorkerInterval = DefaultConfig().WorkerInterval
	}
	if len(c.Periods) == 0 {
		c.Periods = DefaultConfig().Periods
	}
	if m == nil {
		m = telemetry.New()
	}
	return &Worker{
		dashboard: d,
		metrics:   m,
		c:         c,
	}
}

// Start warms once right away and then on every interval.
func (w *Worker) Start(ctx context.Context) error {
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("snapshot warmer already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.worker(w.ctx)
	}()
	return nil
}

// Stop stops the worker and waits for an in-flight run to finish.
func (w *Worker) Stop() error {
	if w.stop == nil {
		return fmt.Errorf("snapshot warmer already stopped or not started")
	}
	w.stop()
	w.stop = nil
	w.wg.Wait()
	return nil
}
