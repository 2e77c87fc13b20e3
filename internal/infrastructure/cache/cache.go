// Package cache provides the response cache used by the read paths. The
// cache is never authoritative: every failure is logged and reported as a
// miss, so callers always fall back to computing from the ledgers.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/metrics"
)

// Store is the raw key-value backend.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	DeleteByPattern(pattern string) (int, error)
}

type Cache struct {
	store     Store
	breaker   *gobreaker.CircuitBreaker[[]byte]
	opTimeout time.Duration
	logger    *zap.Logger
}

var errTimeout = errors.New("cache operation timed out")

func New(store Store, cfg config.CacheConfig, logger *zap.Logger) *Cache {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	const name = "cache"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Cache{
		store:     store,
		breaker:   breaker,
		opTimeout: cfg.OpTimeout,
		logger:    logger,
	}
}

// GetJSON decodes the value under key into dst and reports whether it was
// found.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	var found bool
	raw, err := c.execute(ctx, func() ([]byte, error) {
		v, ok, err := c.store.Get(key)
		found = ok
		return v, err
	})
	if err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("cache value undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	_, err = c.execute(ctx, func() ([]byte, error) {
		return nil, c.store.Set(key, raw, ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Delete(ctx context.Context, key string) {
	_, err := c.execute(ctx, func() ([]byte, error) {
		return nil, c.store.Delete(key)
	})
	if err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes exact keys and glob patterns alike.
func (c *Cache) Invalidate(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		var removed int
		_, err := c.execute(ctx, func() ([]byte, error) {
			n, err := c.store.DeleteByPattern(pattern)
			removed = n
			return nil, err
		})
		if err != nil {
			c.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		metrics.CacheInvalidations.WithLabelValues(pattern).Add(float64(removed))
		c.logger.Debug("cache invalidated", zap.String("pattern", pattern), zap.Int("removed", removed))
	}
}

func (c *Cache) execute(ctx context.Context, op func() ([]byte, error)) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		return c.withTimeout(ctx, op)
	})
}

func (c *Cache) withTimeout(ctx context.Context, op func() ([]byte, error)) ([]byte, error) {
	if c.opTimeout <= 0 {
		return op()
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	type result struct {
		value []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := op()
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, errTimeout
	}
}

// JSONCache is the subset of Cache the read paths need.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
}

// GetOrLoad is the cache-aside read: a hit is returned as is, a miss runs
// load and stores its result. computed reports whether load ran.
func GetOrLoad[T any](ctx context.Context, c JSONCache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (value T, computed bool, err error) {
	if c.GetJSON(ctx, key, &value) {
		return value, false, nil
	}

	value, err = load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	c.SetJSON(ctx, key, value, ttl)
	return value, true, nil
}
