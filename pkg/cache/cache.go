package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/h2h-sim/internal/metrics"
)

const (
	KindMatchup      = "matchup"
	KindOptimization = "optimization"
	KindTrade        = "trade"
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// ErrUnavailable is returned while the breaker is open after repeated
// Redis failures
var ErrUnavailable = errors.New("cache unavailable")

// ResultCacheService caches simulation, optimization and trade responses
// in Redis as JSON. Reads and writes go through a circuit breaker so a Redis
// outage costs one failed call per breaker timeout rather than one per
// request.
type ResultCacheService struct {
	client  *redis.Client
	logger  *logrus.Logger
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewResultCacheService creates a cache with the given default expiration
func NewResultCacheService(client *redis.Client, logger *logrus.Logger, ttl time.Duration) *ResultCacheService {
	settings := gobreaker.Settings{
		Name:        "redis-result-cache",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &ResultCacheService{
		client:  client,
		logger:  logger,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// execute runs fn behind the breaker
func (c *ResultCacheService) execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return out, err
}

// BreakerState reports the circuit breaker state
func (c *ResultCacheService) BreakerState() string {
	return c.breaker.State().String()
}

// Key derives a stable cache key from any JSON-encodable request
func Key(request interface{}) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Set stores a result under kind:key
func (c *ResultCacheService) Set(ctx context.Context, kind, key string, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal %s result: %w", kind, err)
	}

	fullKey := fmt.Sprintf("%s:%s", kind, key)
	_, err = c.execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, fullKey, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set %s result in cache: %w", kind, err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": c.ttl,
		"bytes":      len(data),
	}).Debug("Cached result")
	return nil
}

// Get loads the result stored under kind:key into dest. A missing key
// returns ErrMiss.
func (c *ResultCacheService) Get(ctx context.Context, kind, key string, dest interface{}) error {
	fullKey := fmt.Sprintf("%s:%s", kind, key)
	out, err := c.execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			// a miss is a healthy answer
			return []byte(nil), nil
		}
		return data, err
	})
	if err != nil {
		return fmt.Errorf("failed to get %s result from cache: %w", kind, err)
	}
	data := out.([]byte)
	if data == nil {
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return ErrMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", kind, err)
	}
	metrics.CacheHits.WithLabelValues(kind).Inc()

	c.logger.WithField("cache_key", fullKey).Debug("Retrieved result from cache")
	return nil
}

// Delete removes one cached result
func (c *ResultCacheService) Delete(ctx context.Context, kind, key string) error {
	fullKey := fmt.Sprintf("%s:%s", kind, key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete %s result from cache: %w", kind, err)
	}
	return nil
}

// Flush clears every cached result of one kind
func (c *ResultCacheService) Flush(ctx context.Context, kind string) (int, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, kind+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan %s keys: %w", kind, err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return 0, fmt.Errorf("failed to delete %s keys: %w", kind, err)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"kind":         kind,
		"deleted_keys": len(keys),
	}).Info("Flushed result cache")
	return len(keys), nil
}

// Ping checks the Redis connection
func (c *ResultCacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetStatus returns cache statistics
func (c *ResultCacheService) GetStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service":   "result-cache",
		"timestamp": time.Now(),
		"connected": c.Ping(ctx) == nil,
		"ttl":       c.ttl.String(),
		"breaker":   c.BreakerState(),
	}

	if dbSize, err := c.client.DBSize(ctx).Result(); err == nil {
		status["db_size"] = dbSize
	}
	for _, kind := range []string{KindMatchup, KindOptimization, KindTrade} {
		keys, err := c.client.Keys(ctx, kind+":*").Result()
		if err == nil {
			status[kind+"_keys"] = len(keys)
		}
	}
	return status
}
