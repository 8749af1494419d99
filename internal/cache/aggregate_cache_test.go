package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"timesheet.service/internal/cache"
	"timesheet.service/internal/core/model"
)

func setupCache(t *testing.T) (*cache.AggregateCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewAggregateCache(client), mr
}

func sampleAggregate() model.MonthAggregate {
	return model.MonthAggregate{
		"2026-08-12": {model.StatusOpen: 7.5, model.StatusApproved: 4},
		"2026-08-13": {model.StatusSubmitted: 8},
	}
}

func TestAggregateCacheRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, ok := c.GetMonth(ctx, "consultant-1", 2026, time.August)
	require.False(t, ok)

	want := sampleAggregate()
	c.SetMonth(ctx, "consultant-1", 2026, time.August, want)

	got, ok := c.GetMonth(ctx, "consultant-1", 2026, time.August)
	require.True(t, ok)
	require.Equal(t, want, got)

	// Other consultants and months are isolated.
	_, ok = c.GetMonth(ctx, "consultant-2", 2026, time.August)
	require.False(t, ok)
	_, ok = c.GetMonth(ctx, "consultant-1", 2026, time.July)
	require.False(t, ok)
}

func TestAggregateCacheInvalidate(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	c.SetMonth(ctx, "consultant-1", 2026, time.August, sampleAggregate())
	c.InvalidateMonth(ctx, "consultant-1", 2026, time.August)

	_, ok := c.GetMonth(ctx, "consultant-1", 2026, time.August)
	require.False(t, ok)
}

func TestAggregateCacheExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.SetMonth(ctx, "consultant-1", 2026, time.August, sampleAggregate())
	mr.FastForward(6 * time.Minute)

	_, ok := c.GetMonth(ctx, "consultant-1", 2026, time.August)
	require.False(t, ok)
}

func TestAggregateCacheCorruptEntryDropped(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("ts:agg:consultant-1:2026-08", "not json"))

	_, ok := c.GetMonth(ctx, "consultant-1", 2026, time.August)
	require.False(t, ok)
}
