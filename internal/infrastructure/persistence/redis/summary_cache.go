package redis

import (
	"context"
	"errors"

	"github.com/learnhub/progress-hub/internal/application/query"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/circuitbreaker"
	"github.com/learnhub/progress-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY CACHE
// Implements query.SummaryCache. Transient Redis errors are retried with
// backoff; a cache miss is returned immediately. A circuit breaker sits in
// front of the retrier so that a dead Redis is skipped quickly instead of
// costing every request a full retry cycle.
// ══════════════════════════════════════════════════════════════════════════════

// SummaryCache caches progress summaries in Redis.
type SummaryCache struct {
	cache   *Cache
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(cache *Cache) *SummaryCache {
	return &SummaryCache{
		cache:   cache,
		retrier: retry.RedisRetrier(),
		breaker: circuitbreaker.CacheBreaker(nil, circuitbreaker.WithIsFailure(func(err error) bool {
			// Misses and bad payloads say nothing about Redis health.
			return !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheSerialization)
		})),
	}
}

// Get returns the cached summary or shared.ErrNotFound on a miss.
func (c *SummaryCache) Get(ctx context.Context, userID, courseID string) (*query.ProgressSummary, error) {
	key := SummaryKey(userID, courseID)

	var summary query.ProgressSummary
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			err := c.cache.Get(ctx, key, &summary)
			if errors.Is(err, ErrCacheMiss) || errors.Is(err, ErrCacheSerialization) {
				return retry.Permanent(err)
			}
			return err
		})
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	return &summary, nil
}

// Set stores the summary under its user and course key.
func (c *SummaryCache) Set(ctx context.Context, summary *query.ProgressSummary) error {
	key := SummaryKey(summary.UserID, summary.CourseID)

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.cache.Set(ctx, key, summary, TTLSummaryCache)
		})
	})
}

// Invalidate drops the cached summary for the user and course.
func (c *SummaryCache) Invalidate(ctx context.Context, userID, courseID string) error {
	key := SummaryKey(userID, courseID)

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.cache.Delete(ctx, key)
		})
	})
}

// InvalidateUser drops every cached summary of one user.
func (c *SummaryCache) InvalidateUser(ctx context.Context, userID string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.cache.DeleteByPattern(ctx, UserSummaryPattern(userID))
		})
	})
}
