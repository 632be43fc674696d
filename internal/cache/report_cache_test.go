package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeys(t *testing.T) {
	base := domain.HeatmapFilter{Brand: domain.BrandMLB, NWeeks: 25}

	key := buildHeatmapKey(base)
	assert.True(t, strings.HasPrefix(key, "stock_weeks:heatmap:"))

	all := base
	all.Category = "all"
	assert.Equal(t, key, buildHeatmapKey(all), "empty and ALL category share an entry")

	shoes := base
	shoes.Category = "Shoes"
	assert.NotEqual(t, key, buildHeatmapKey(shoes))

	other := base
	other.NWeeks = 26
	assert.NotEqual(t, key, buildHeatmapKey(other))

	kids := base
	kids.Brand = domain.BrandMLBKids
	assert.NotEqual(t, key, buildHeatmapKey(kids))

	jan := buildSummaryKey(domain.SummaryFilter{Brand: domain.BrandMLB, Month: 1, NWeeks: 25})
	feb := buildSummaryKey(domain.SummaryFilter{Brand: domain.BrandMLB, Month: 2, NWeeks: 25})
	assert.NotEqual(t, jan, feb)
	assert.True(t, strings.HasPrefix(jan, "stock_weeks:summary:"))

	monthly := buildMonthlyKey(domain.MonthlyFilter{Brand: domain.BrandMLB, NWeeks: 25})
	assert.True(t, strings.HasPrefix(monthly, "stock_weeks:monthly:"))
}

func TestNoopReportCache(t *testing.T) {
	c, err := NewReportCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.SetHeatmap(ctx, domain.HeatmapFilter{}, &domain.Heatmap{}))
	got, ok, err := c.GetHeatmap(ctx, domain.HeatmapFilter{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	_, ok, _ = c.GetSummary(ctx, domain.SummaryFilter{})
	assert.False(t, ok)
	_, ok, _ = c.GetMonthly(ctx, domain.MonthlyFilter{})
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.internal:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, cacheTTL(config.CacheConfig{}))
	assert.Equal(t, 90.0, cacheTTL(config.CacheConfig{ReportTTLSeconds: 90}).Seconds())
}
