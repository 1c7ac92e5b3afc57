package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	httpapi "github.com/jekabolt/grbpwr-analytics/internal/api/http"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/fetch"
	"github.com/jekabolt/grbpwr-analytics/internal/ratelimit"
	"github.com/jekabolt/grbpwr-analytics/internal/snapshotwarm"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
	"github.com/jekabolt/grbpwr-analytics/log"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	DB           store.Config        `mapstructure:"mysql"`
	Logger       log.Config          `mapstructure:"logger"`
	HTTP         httpapi.Config      `mapstructure:"http"`
	Cache        cache.Config        `mapstructure:"cache"`
	Analytics    analytics.Config    `mapstructure:"analytics"`
	Fetch        fetch.Config        `mapstructure:"fetch"`
	SnapshotWarm snapshotwarm.Config `mapstructure:"snapshot_warm"`
	RateLimit    ratelimit.Config    `mapstructure:"rate_limit"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g., MYSQL__DSN for mysql.dsn
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	setDefaults(v)
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/grbpwr-analytics")
		v.AddConfigPath("/etc/grbpwr-analytics")
		// Try to read config, but don't fail if it doesn't exist
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	if config.DB.DSN == "" {
		config.DB.DSN = dsnFromEnv()
	}

	return &config, nil
}

// dsnFromEnv builds a MySQL DSN from DigitalOcean's db.* env vars or the
// MYSQL_* ones. It returns an empty string when the set is incomplete.
func dsnFromEnv() string {
	var host, port, user, password, database string
	if dbHost := os.Getenv("db.HOSTNAME"); dbHost != "" {
		host = dbHost
		port = os.Getenv("db.PORT")
		user = os.Getenv("db.USERNAME")
		password = os.Getenv("db.PASSWORD")
		database = os.Getenv("db.DATABASE")
	} else {
		host = os.Getenv("MYSQL_HOST")
		port = os.Getenv("MYSQL_PORT")
		user = os.Getenv("MYSQL_USER")
		password = os.Getenv("MYSQL_PASSWORD")
		database = os.Getenv("MYSQL_DATABASE")
	}
	if host == "" || user == "" || password == "" || database == "" {
		return ""
	}
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8&parseTime=true&tls=custom",
		user, password, host, port, database)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8081")
	v.SetDefault("http.address", "0.0.0.0")

	c := cache.DefaultConfig()
	v.SetDefault("cache.url", c.URL)
	v.SetDefault("cache.ttl", c.TTL)
	v.SetDefault("cache.prefix", c.Prefix)

	a := analytics.DefaultConfig()
	v.SetDefault("analytics.critical_stock", a.CriticalStock)
	v.SetDefault("analytics.low_stock", a.LowStock)
	v.SetDefault("analytics.top_n", a.TopN)
	v.SetDefault("analytics.live_window", a.LiveWindow)
	v.SetDefault("analytics.max_custom_days", a.MaxCustomDays)

	v.SetDefault("fetch.concurrency", fetch.DefaultConfig().Concurrency)

	w := snapshotwarm.DefaultConfig()
	v.SetDefault("snapshot_warm.worker_interval", w.WorkerInterval)

	r := ratelimit.DefaultConfig()
	v.SetDefault("rate_limit.requests_per_second", r.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", r.Burst)
	v.SetDefault("rate_limit.idle_ttl", r.IdleTTL)
}

// bindEnvVars binds environment variables to config keys
// This allows using both nested keys (MYSQL__DSN) and flat keys (MYSQL_DSN)
func bindEnvVars(v *viper.Viper) {
	// MySQL
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	v.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	v.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")
	v.BindEnv("mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.request_timeout", "HTTP_REQUEST_TIMEOUT")

	// Snapshot cache
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("cache.url", "CACHE_URL", "REDIS_URL")
	v.BindEnv("cache.ttl", "CACHE_TTL")
	v.BindEnv("cache.prefix", "CACHE_PREFIX")

	// Analytics thresholds
	v.BindEnv("analytics.critical_stock", "ANALYTICS_CRITICAL_STOCK")
	v.BindEnv("analytics.low_stock", "ANALYTICS_LOW_STOCK")
	v.BindEnv("analytics.top_n", "ANALYTICS_TOP_N")
	v.BindEnv("analytics.live_window", "ANALYTICS_LIVE_WINDOW")
	v.BindEnv("analytics.max_custom_days", "ANALYTICS_MAX_CUSTOM_DAYS")

	// Fetch
	v.BindEnv("fetch.concurrency", "FETCH_CONCURRENCY")

	// Snapshot warmer
	v.BindEnv("snapshot_warm.enabled", "SNAPSHOT_WARM_ENABLED")
	v.BindEnv("snapshot_warm.worker_interval", "SNAPSHOT_WARM_WORKER_INTERVAL")

	// Rate limit
	v.BindEnv("rate_limit.requests_per_second", "RATE_LIMIT_REQUESTS_PER_SECOND")
	v.BindEnv("rate_limit.burst", "RATE_LIMIT_BURST")
	v.BindEnv("rate_limit.idle_ttl", "RATE_LIMIT_IDLE_TTL")
}
