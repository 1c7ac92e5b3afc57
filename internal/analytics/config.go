// Package analytics turns canonical orders, order lines and variants into
// time-windowed business metrics. Everything here is pure: no I/O, no clock
// reads, no state carried between calls.
package analytics

import (
	"fmt"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// TierThreshold is the inclusive lower spend bound of a tier, in minor units.
type TierThreshold struct {
	Tier     entity.Tier `mapstructure:"tier"`
	MinSpend int64       `mapstructure:"min_spend"`
}

// Config holds the thresholds used by the classifiers.
type Config struct {
	// RecognizedStatuses is the fixed set of statuses counted as revenue.
	// It is not read from the config file.
	RecognizedStatuses []entity.OrderStatus `mapstructure:"-"`
	// Tiers must be sorted ascending by MinSpend.
	Tiers         []TierThreshold `mapstructure:"tiers"`
	CriticalStock int             `mapstructure:"critical_stock"`
	LowStock      int             `mapstructure:"low_stock"`
	TopN          int             `mapstructure:"top_n"`
	LiveWindow    time.Duration   `mapstructure:"live_window"`
	// MaxCustomDays bounds the length of a custom range.
	MaxCustomDays int             `mapstructure:"max_custom_days"`
}

// RecognizedStatuses are the paid-equivalent statuses.
var RecognizedStatuses = []entity.OrderStatus{
	entity.OrderStatusPaid,
	entity.OrderStatusShipped,
	entity.OrderStatusCompleted,
}

// DefaultTiers are the loyalty tiers used when none are configured.
func DefaultTiers() []TierThreshold {
	return []TierThreshold{
		{Tier: entity.TierBronze, MinSpend: 0},
		{Tier: entity.TierSilver, MinSpend: 2_000_000},
		{Tier: entity.TierGold, MinSpend: 5_000_000},
		{Tier: entity.TierDiamond, MinSpend: 10_000_000},
	}
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		RecognizedStatuses: RecognizedStatuses,
		Tiers:              DefaultTiers(),
		CriticalStock:      3,
		LowStock:           10,
		TopN:               5,
		LiveWindow:         time.Hour,
		MaxCustomDays:      3660,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.RecognizedStatuses) == 0 {
		c.RecognizedStatuses = d.RecognizedStatuses
	}
	if len(c.Tiers) == 0 {
		c.Tiers = d.Tiers
	}
	if c.CriticalStock == 0 {
		c.CriticalStock = d.CriticalStock
	}
	if c.LowStock == 0 {
		c.LowStock = d.LowStock
	}
	if c.TopN == 0 {
		c.TopN = d.TopN
	}
	if c.LiveWindow == 0 {
		c.LiveWindow = d.LiveWindow
	}
	if c.MaxCustomDays == 0 {
		c.MaxCustomDays = d.MaxCustomDays
	}
	return c
}

// Validate checks that thresholds are usable.
func (c Config) Validate() error {
	if c.CriticalStock < 1 {
		return fmt.Errorf("critical stock threshold must be positive, got %d", c.CriticalStock)
	}
	if c.LowStock < c.CriticalStock {
		return fmt.Errorf("low stock threshold %d is below critical threshold %d", c.LowStock, c.CriticalStock)
	}
	if c.MaxCustomDays < 0 {
		return fmt.Errorf("max custom days must not be negative, got %d", c.MaxCustomDays)
	}
	if c.TopN < 0 {
		return fmt.Errorf("top n must not be negative, got %d", c.TopN)
	}
	for i := 1; i < len(c.Tiers); i++ {
		if c.Tiers[i].MinSpend <= c.Tiers[i-1].MinSpend {
			return fmt.Errorf("tier %s threshold %d is not above tier %s threshold %d",
				c.Tiers[i].Tier, c.Tiers[i].MinSpend, c.Tiers[i-1].Tier, c.Tiers[i-1].MinSpend)
		}
	}
	return nil
}
