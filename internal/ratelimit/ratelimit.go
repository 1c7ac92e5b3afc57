package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds per-client limits for the dashboard API.
type Config struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// IdleTTL is how long an unused client entry is kept.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		Burst:             10,
		IdleTTL:           10 * time.Minute,
	}
}

// Limiter keeps one token bucket per key
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a new keyed limiter and starts its cleanup loop.
func NewLimiter(c Config) *Limiter {
	d := DefaultConfig()
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = d.IdleTTL
	}
	l := &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(c.RequestsPerSecond),
		burst:   c.Burst,
		idleTTL: c.IdleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow checks if a request for the given key is allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(key).limiter.AllowN(l.now(), 1)
}

// Remaining returns the whole tokens left for the given key
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		return l.burst
	}
	n := int(c.limiter.TokensAt(l.now()))
	if n < 0 {
		return 0
	}
	return n
}

// Stop ends the cleanup loop.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) get(key string) *client {
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = l.now()
	return c
}

// cleanup periodically removes idle clients
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idleTTL)
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
