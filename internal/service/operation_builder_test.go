package service

import (
	"context"
	"testing"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeksPtr(v float64) *float64 { return &v }

func fixtureOperations() *domain.OperationFeed {
	f := domain.NewOperationFeed(domain.BrandMLB)
	f.Categories["Bag"] = map[string]domain.OperationSeries{
		"Core": {
			2025: {
				1: {StockWeeks: weeksPtr(12), TotalStock: 1200, TotalSales: 400},
				2: {TotalStock: 900},
				3: {StockWeeks: weeksPtr(104), TotalStock: 5200, TotalSales: 200},
			},
			2024: {
				1: {StockWeeks: weeksPtr(15.5), TotalStock: 1550, TotalSales: 400},
				2: {StockWeeks: weeksPtr(8), TotalStock: 800, TotalSales: 400},
				3: {},
			},
		},
	}
	f.Categories["Shoes"] = map[string]domain.OperationSeries{
		"Season": {2025: {1: {StockWeeks: weeksPtr(40), IsOutlier: true, TotalStock: 10, TotalSales: 1}}},
		"Core":   {2024: {1: {StockWeeks: weeksPtr(3), TotalStock: 3, TotalSales: 7}}},
	}
	return f
}

func newOperationService(rec Recorder) *ReportService {
	store := feed.NewStore()
	store.ReplaceOperations(map[domain.Brand]*domain.OperationFeed{domain.BrandMLB: fixtureOperations()})
	return NewReportService(store, nil, WithRecorder(rec))
}

func TestOperationHeatmap(t *testing.T) {
	rec := &countingRecorder{}
	svc := newOperationService(rec)

	hm, err := svc.OperationHeatmap(context.Background(), domain.OperationHeatmapFilter{Brand: domain.BrandMLB})
	require.NoError(t, err)
	assert.Equal(t, 2025, hm.CurrentYear)
	assert.Equal(t, 2024, hm.PreviousYear)
	assert.Equal(t, 1, rec.misses)

	require.Len(t, hm.Rows, 3)
	var order []string
	for _, row := range hm.Rows {
		order = append(order, row.Category+"/"+row.Operation)
		assert.Len(t, row.Current, 12)
		assert.Len(t, row.Previous, 12)
		assert.Len(t, row.YOY, 12)
	}
	assert.Equal(t, []string{"Shoes/Core", "Shoes/Season", "Bag/Core"}, order)

	bag := hm.Rows[2]
	assert.Equal(t, domain.CategoryName("Bag"), bag.Name)

	tests := []struct {
		name        string
		month       int
		wantCurrent domain.WeeksMetric
		wantDelta   *float64
		wantOutlier bool
	}{
		{"both years", 1, domain.Weeks(12), weeksPtr(-3.5), false},
		{"no sales has no delta", 2, domain.NoSales(), nil, false},
		{"padding has no delta", 3, domain.Weeks(104), nil, true},
		{"absent month", 4, domain.Unavailable(), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := bag.Current[tt.month-1]
			assert.Equal(t, tt.month, cell.Month)
			assert.Equal(t, tt.wantCurrent, cell.Weeks)
			assert.Equal(t, tt.wantOutlier, cell.Outlier)
			if tt.wantDelta == nil {
				assert.Nil(t, bag.YOY[tt.month-1].Weeks)
			} else {
				require.NotNil(t, bag.YOY[tt.month-1].Weeks)
				assert.InDelta(t, *tt.wantDelta, *bag.YOY[tt.month-1].Weeks, 1e-9)
			}
		})
	}
	assert.Equal(t, 900.0, bag.Current[1].TotalStock)
	assert.True(t, bag.Previous[2].Weeks.IsUnavailable())

	season := hm.Rows[1]
	assert.True(t, season.Current[0].Outlier, "exporter outlier flag is kept")
	assert.True(t, season.Previous[0].Weeks.IsUnavailable())
}

func TestOperationHeatmap_Filters(t *testing.T) {
	svc := newOperationService(nil)

	hm, err := svc.OperationHeatmap(context.Background(), domain.OperationHeatmapFilter{Brand: domain.BrandMLB, Category: " Bag "})
	require.NoError(t, err)
	require.Len(t, hm.Rows, 1)
	assert.Equal(t, "Core", hm.Rows[0].Operation)

	hm, err = svc.OperationHeatmap(context.Background(), domain.OperationHeatmapFilter{Brand: domain.BrandMLB, Category: "all"})
	require.NoError(t, err)
	assert.Len(t, hm.Rows, 3)

	tests := []struct {
		name   string
		filter domain.OperationHeatmapFilter
		want   error
	}{
		{"unknown category", domain.OperationHeatmapFilter{Brand: domain.BrandMLB, Category: "Gloves"}, ErrUnknownCategory},
		{"not loaded", domain.OperationHeatmapFilter{Brand: domain.BrandDiscovery}, ErrOperationsNotLoaded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.OperationHeatmap(context.Background(), tt.filter)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
