package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reportKeyPrefix  = "stock_weeks:"
	heatmapKeyPrefix = reportKeyPrefix + "heatmap"
	summaryKeyPrefix = reportKeyPrefix + "summary"
	monthlyKeyPrefix = reportKeyPrefix + "monthly"
	reportScanBatch  = 100
)

// ReportCache stores built reports keyed by their filter.
type ReportCache interface {
	GetHeatmap(ctx context.Context, filter domain.HeatmapFilter) (*domain.Heatmap, bool, error)
	SetHeatmap(ctx context.Context, filter domain.HeatmapFilter, report *domain.Heatmap) error
	GetSummary(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryReport, bool, error)
	SetSummary(ctx context.Context, filter domain.SummaryFilter, report *domain.SummaryReport) error
	GetMonthly(ctx context.Context, filter domain.MonthlyFilter) (*domain.MonthlyReport, bool, error)
	SetMonthly(ctx context.Context, filter domain.MonthlyFilter, report *domain.MonthlyReport) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetHeatmap(ctx context.Context, filter domain.HeatmapFilter) (*domain.Heatmap, bool, error) {
	var report domain.Heatmap
	ok, err := getJSON(ctx, c.client, buildHeatmapKey(filter), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetHeatmap(ctx context.Context, filter domain.HeatmapFilter, report *domain.Heatmap) error {
	return setJSON(ctx, c.client, buildHeatmapKey(filter), report, c.ttl)
}

func (c *redisReportCache) GetSummary(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryReport, bool, error) {
	var report domain.SummaryReport
	ok, err := getJSON(ctx, c.client, buildSummaryKey(filter), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetSummary(ctx context.Context, filter domain.SummaryFilter, report *domain.SummaryReport) error {
	return setJSON(ctx, c.client, buildSummaryKey(filter), report, c.ttl)
}

func (c *redisReportCache) GetMonthly(ctx context.Context, filter domain.MonthlyFilter) (*domain.MonthlyReport, bool, error) {
	var report domain.MonthlyReport
	ok, err := getJSON(ctx, c.client, buildMonthlyKey(filter), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetMonthly(ctx context.Context, filter domain.MonthlyFilter, report *domain.MonthlyReport) error {
	return setJSON(ctx, c.client, buildMonthlyKey(filter), report, c.ttl)
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	n, err := deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatch)
	if err != nil {
		return err
	}
	log.Debug().Int("keys", n).Msg("report cache invalidated")
	return nil
}

func (n *noopReportCache) GetHeatmap(ctx context.Context, filter domain.HeatmapFilter) (*domain.Heatmap, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetHeatmap(ctx context.Context, filter domain.HeatmapFilter, report *domain.Heatmap) error {
	return nil
}

func (n *noopReportCache) GetSummary(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetSummary(ctx context.Context, filter domain.SummaryFilter, report *domain.SummaryReport) error {
	return nil
}

func (n *noopReportCache) GetMonthly(ctx context.Context, filter domain.MonthlyFilter) (*domain.MonthlyReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetMonthly(ctx context.Context, filter domain.MonthlyFilter, report *domain.MonthlyReport) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildHeatmapKey(filter domain.HeatmapFilter) string {
	return fmt.Sprintf("%s:%s", heatmapKeyPrefix, filterHash(
		"brand="+string(filter.Brand),
		"category="+normalizeCategory(filter.Category),
		nWeeksPart(filter.NWeeks),
	))
}

func buildSummaryKey(filter domain.SummaryFilter) string {
	return fmt.Sprintf("%s:%s", summaryKeyPrefix, filterHash(
		"brand="+string(filter.Brand),
		fmt.Sprintf("month=%d", filter.Month),
		nWeeksPart(filter.NWeeks),
	))
}

func buildMonthlyKey(filter domain.MonthlyFilter) string {
	return fmt.Sprintf("%s:%s", monthlyKeyPrefix, filterHash(
		"brand="+string(filter.Brand),
		"category="+normalizeCategory(filter.Category),
		nWeeksPart(filter.NWeeks),
	))
}

// Empty and "all" select the same report.
func normalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" || strings.EqualFold(c, domain.CategoryAll) {
		return domain.CategoryAll
	}
	return c
}

func nWeeksPart(n float64) string {
	return fmt.Sprintf("n_weeks=%.4f", n)
}

func filterHash(parts ...string) string {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}
