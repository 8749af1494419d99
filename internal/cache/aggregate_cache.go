// Package cache holds the redis-backed projection cache for month
// aggregates. Only derived data lives here; entries and lock decisions are
// never cached.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"timesheet.service/internal/core/model"
)

const (
	monthKeyPrefix = "ts:agg:" // ts:agg:{consultant_id}:{yyyy-mm}
	monthTTL       = 5 * time.Minute
)

// AggregateCache caches MonthAggregate projections per consultant-month.
// Every entry mutation invalidates the affected key, the TTL is only a
// backstop.
type AggregateCache struct {
	client *redis.Client
}

func NewAggregateCache(client *redis.Client) *AggregateCache {
	return &AggregateCache{client: client}
}

func monthKey(consultantID string, year int, month time.Month) string {
	return fmt.Sprintf("%s%s:%04d-%02d", monthKeyPrefix, consultantID, year, month)
}

// GetMonth returns the cached aggregate and whether it was present.
func (c *AggregateCache) GetMonth(ctx context.Context, consultantID string, year int, month time.Month) (model.MonthAggregate, bool) {
	data, err := c.client.Get(ctx, monthKey(consultantID, year, month)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Aggregate cache read failed")
		return nil, false
	}

	var agg model.MonthAggregate
	if err := json.Unmarshal([]byte(data), &agg); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Aggregate cache entry corrupt, dropping")
		return nil, false
	}
	return agg, true
}

// SetMonth stores the aggregate. Cache errors are logged and swallowed; the
// projection is recomputable.
func (c *AggregateCache) SetMonth(ctx context.Context, consultantID string, year int, month time.Month, agg model.MonthAggregate) {
	data, err := json.Marshal(agg)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Aggregate cache encode failed")
		return
	}
	if err := c.client.Set(ctx, monthKey(consultantID, year, month), data, monthTTL).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Aggregate cache write failed")
	}
}

// InvalidateMonth drops the cached aggregate for a consultant-month after a
// mutation touched one of its entries.
func (c *AggregateCache) InvalidateMonth(ctx context.Context, consultantID string, year int, month time.Month) {
	if err := c.client.Del(ctx, monthKey(consultantID, year, month)).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Aggregate cache invalidation failed")
	}
}
