// Package cache keeps built snapshots in Redis so repeated dashboard loads
// skip the fetch and aggregation work.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/redis/go-redis/v9"
)

// Config holds configuration for the snapshot cache.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// URL has the form redis://[:password@]host[:port][/database].
	URL    string        `mapstructure:"url"`
	TTL    time.Duration `mapstructure:"ttl"`
	Prefix string        `mapstructure:"prefix"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		URL:    "redis://localhost:6379/0",
		TTL:    5 * time.Minute,
		Prefix: "grbpwr-analytics",
	}
}

// Redis stores snapshots as JSON under a TTL.
type Redis struct {
	client *redis.Client
	c      Config
}

// New creates a Redis snapshot cache. It does not dial, the first command
// does.
func New(c Config) (*Redis, error) {
	d := DefaultConfig()
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.Prefix == "" {
		c.Prefix = d.Prefix
	}
	if c.URL == "" {
		c.URL = d.URL
	}
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Redis{client: redis.NewClient(opts), c: c}, nil
}

// Get returns the cached snapshot or gerr.ErrSnapshotNotCached.
func (r *Redis) Get(ctx context.Context, key string) (*entity.MetricsSnapshot, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gerr.ErrSnapshotNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	var snap entity.MetricsSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return &snap, nil
}

// Set stores snap under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, snap *entity.MetricsSnapshot) error {
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), val, r.c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.c.Prefix + ":" + k
}

// Nop is used when caching is disabled. Every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) (*entity.MetricsSnapshot, error) {
	return nil, gerr.ErrSnapshotNotCached
}

func (Nop) Set(context.Context, string, *entity.MetricsSnapshot) error { return nil }

func (Nop) Close() error { return nil }

// SnapshotKey identifies a snapshot by its window and ranking size. Preset
// windows are keyed by their start so every request within the same period
// shares an entry until it expires. Custom windows include the end.
func SnapshotKey(w entity.TimeWindow, topN int) string {
	parts := []string{
		"snapshot",
		string(w.Period),
		strconv.FormatInt(w.Start.Unix(), 10),
	}
	if w.Period == entity.PeriodCustom {
		parts = append(parts, strconv.FormatInt(w.End.Unix(), 10))
	}
	parts = append(parts, "top"+strconv.Itoa(topN))
	return strings.Join(parts, ":")
}
