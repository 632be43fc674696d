package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockweeks/internal/cache"
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
	"github.com/rs/zerolog/log"
)

var (
	ErrBrandNotLoaded  = errors.New("brand has no loaded feed")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrNoData          = errors.New("no data for the selected period")

	ErrOperationsNotLoaded = errors.New("brand has no loaded operation feed")
)

// Recorder receives report and reload observations.
type Recorder interface {
	RecordReport(report string, cacheHit bool, duration time.Duration)
	RecordReload(success bool, brands int)
}

type nopRecorder struct{}

func (nopRecorder) RecordReport(string, bool, time.Duration) {}
func (nopRecorder) RecordReload(bool, int)                   {}

// Reloader refreshes a feed store.
type Reloader interface {
	Reload(ctx context.Context, store *feed.Store) (int, error)
}

type ReportService struct {
	store         *feed.Store
	loader        Reloader
	cache         cache.ReportCache
	recorder      Recorder
	defaultNWeeks float64
}

type Option func(*ReportService)

func WithCache(c cache.ReportCache) Option {
	return func(s *ReportService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *ReportService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithDefaultNWeeks sets the sell-through weeks used when a request gives none.
func WithDefaultNWeeks(n float64) Option {
	return func(s *ReportService) { s.defaultNWeeks = n }
}

func NewReportService(store *feed.Store, loader Reloader, opts ...Option) *ReportService {
	s := &ReportService{
		store:         store,
		loader:        loader,
		cache:         cache.NewNoopReportCache(),
		recorder:      nopRecorder{},
		defaultNWeeks: stockweeks.DefaultDirectSellThroughWeeks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) DefaultNWeeks() float64 {
	return s.defaultNWeeks
}

// Brands lists the brands with a loaded feed.
func (s *ReportService) Brands(ctx context.Context) []domain.Brand {
	return s.store.Brands()
}

// Years lists the years of a brand's feed, newest first.
func (s *ReportService) Years(ctx context.Context, brand domain.Brand) ([]int, error) {
	f, err := s.feed(brand)
	if err != nil {
		return nil, err
	}
	return f.Years(), nil
}

func (s *ReportService) Heatmap(ctx context.Context, filter domain.HeatmapFilter) (*domain.Heatmap, error) {
	if err := stockweeks.ValidateSellThroughWeeks(filter.NWeeks); err != nil {
		return nil, err
	}
	f, err := s.feed(filter.Brand)
	if err != nil {
		return nil, err
	}
	filter.Category = normalizeCategory(filter.Category)

	if report, ok, err := s.cache.GetHeatmap(ctx, filter); err == nil && ok {
		s.recorder.RecordReport("heatmap", true, 0)
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache get heatmap failed")
	}

	start := time.Now()
	report, err := buildHeatmap(f, filter)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordReport("heatmap", false, time.Since(start))

	if err := s.cache.SetHeatmap(ctx, filter, report); err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache set heatmap failed")
	}
	return report, nil
}

func (s *ReportService) ItemSummary(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryReport, error) {
	if err := stockweeks.ValidateSellThroughWeeks(filter.NWeeks); err != nil {
		return nil, err
	}
	if filter.Month < 0 || filter.Month > 12 {
		return nil, ErrInvalidMonth
	}
	f, err := s.feed(filter.Brand)
	if err != nil {
		return nil, err
	}

	if report, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		s.recorder.RecordReport("summary", true, 0)
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache get summary failed")
	}

	start := time.Now()
	report, err := buildSummary(f, filter)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordReport("summary", false, time.Since(start))

	if err := s.cache.SetSummary(ctx, filter, report); err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache set summary failed")
	}
	return report, nil
}

func (s *ReportService) MonthlySummary(ctx context.Context, filter domain.MonthlyFilter) (*domain.MonthlyReport, error) {
	if err := stockweeks.ValidateSellThroughWeeks(filter.NWeeks); err != nil {
		return nil, err
	}
	f, err := s.feed(filter.Brand)
	if err != nil {
		return nil, err
	}
	filter.Category = normalizeCategory(filter.Category)

	if report, ok, err := s.cache.GetMonthly(ctx, filter); err == nil && ok {
		s.recorder.RecordReport("monthly", true, 0)
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache get monthly failed")
	}

	start := time.Now()
	report, err := buildMonthly(f, filter)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordReport("monthly", false, time.Since(start))

	if err := s.cache.SetMonthly(ctx, filter, report); err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache set monthly failed")
	}
	return report, nil
}

// OperationHeatmap compares each operation basis of a brand across its two
// newest years. Operation feeds are small and pre-computed, so the report is
// not cached.
func (s *ReportService) OperationHeatmap(ctx context.Context, filter domain.OperationHeatmapFilter) (*domain.OperationHeatmap, error) {
	f, ok := s.store.Operations(filter.Brand)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperationsNotLoaded, filter.Brand)
	}
	filter.Category = normalizeCategory(filter.Category)

	start := time.Now()
	report, err := buildOperationHeatmap(f, filter)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordReport("operations", false, time.Since(start))
	return report, nil
}

// Compute evaluates one channel metric for ad-hoc figures. Nil figures give
// Unavailable.
func (s *ReportService) Compute(base *domain.BaseFigures, channel stockweeks.Channel, n float64) (domain.WeeksMetric, error) {
	if err := stockweeks.ValidateSellThroughWeeks(n); err != nil {
		return domain.WeeksMetric{}, err
	}
	return stockweeks.ComputeWeeks(base, channel, n), nil
}

// Reload refreshes every feed and drops cached reports.
func (s *ReportService) Reload(ctx context.Context) (int, error) {
	if s.loader == nil {
		return 0, errors.New("no feed loader configured")
	}

	n, err := s.loader.Reload(ctx, s.store)
	s.recorder.RecordReload(err == nil, n)
	if err != nil {
		return 0, fmt.Errorf("reload feeds: %w", err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("stock weeks: cache invalidation failed")
	}
	return n, nil
}

func (s *ReportService) feed(brand domain.Brand) (*domain.BrandFeed, error) {
	f, ok := s.store.Get(brand)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBrandNotLoaded, brand)
	}
	return f, nil
}

func isAllCategories(category string) bool {
	c := strings.TrimSpace(category)
	return c == "" || strings.EqualFold(c, domain.CategoryAll)
}

func normalizeCategory(category string) string {
	if isAllCategories(category) {
		return domain.CategoryAll
	}
	return strings.TrimSpace(category)
}
