package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operationFeed = `{
  "Shoes": {
    "Core": {
      "2024": {
        "1": {"stock_weeks": 20.5, "is_outlier_100wks": false, "total_stock": 41000, "total_sales": 8600},
        "2": {"stock_weeks": null, "is_outlier_100wks": false, "total_stock": 0, "total_sales": 0}
      },
      "2025": {
        "1": {"stock_weeks": 18, "is_outlier_100wks": false, "total_stock": 36000, "total_sales": 8680},
        "2": {"stock_weeks": null, "is_outlier_100wks": false, "total_stock": 1200, "total_sales": 0},
        "3": null
      }
    },
    "운영기준없음": {
      "2025": {"1": {"stock_weeks": 130, "is_outlier_100wks": true, "total_stock": 5000, "total_sales": 170}}
    }
  },
  "Bag": {"Carry": {"2023": {"5": {"stock_weeks": 4, "is_outlier_100wks": false, "total_stock": 10, "total_sales": 20}}}}
}`

func TestOperationFileName(t *testing.T) {
	assert.Equal(t, "stock_weeks_MLB_operation.json", OperationFileName(domain.BrandMLB))
	assert.Equal(t, "stock_weeks_MLB_KIDS_operation.json", OperationFileName(domain.BrandMLBKids))
}

func TestDecodeOperations(t *testing.T) {
	feed, err := DecodeOperations(strings.NewReader(operationFeed), domain.BrandMLB)
	require.NoError(t, err)

	assert.Equal(t, domain.BrandMLB, feed.Brand)
	assert.Equal(t, []string{"Shoes", "Bag"}, feed.OrderedCategories())
	assert.Equal(t, []string{"Core", "운영기준없음"}, feed.Operations("Shoes"))
	assert.Equal(t, []int{2025, 2024, 2023}, feed.Years())

	tests := []struct {
		name      string
		operation string
		year      int
		month     int
		want      domain.WeeksMetric
	}{
		{"value", "Core", 2025, 1, domain.Weeks(18)},
		{"stock without sales", "Core", 2025, 2, domain.NoSales()},
		{"padding entry", "Core", 2024, 2, domain.Unavailable()},
		{"null month", "Core", 2025, 3, domain.Unavailable()},
		{"absent month", "Core", 2025, 4, domain.Unavailable()},
		{"outlier", "운영기준없음", 2025, 1, domain.Weeks(130)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, feed.Month("Shoes", tt.operation, tt.year, tt.month).Weeks())
		})
	}

	month, ok := feed.Categories["Shoes"]["Core"][2025][3]
	assert.True(t, ok, "null month keeps its key")
	assert.Nil(t, month)
	assert.True(t, feed.Month("Shoes", "운영기준없음", 2025, 1).IsOutlier)
}

func TestDecodeOperations_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"month key out of range", `{"Shoes": {"Core": {"2025": {"13": null}}}}`},
		{"non-numeric month", `{"Shoes": {"Core": {"2025": {"jan": null}}}}`},
		{"wrong shape", `{"Shoes": ["Core"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOperations(strings.NewReader(tt.doc), domain.BrandMLB)
			assert.Error(t, err)
		})
	}
}

func TestFilter_ApplyOperations(t *testing.T) {
	feed, err := DecodeOperations(strings.NewReader(operationFeed), domain.BrandMLB)
	require.NoError(t, err)

	out := Filter{ExcludedYears: []int{2023}, FillMissingMonths: true}.ApplyOperations(feed)
	assert.Equal(t, []int{2025, 2024}, out.Years())
	assert.Empty(t, out.Categories["Bag"]["Carry"])
	assert.Len(t, out.Categories["Shoes"]["Core"][2025], 3, "months are not filled")

	out.Month("Shoes", "Core", 2025, 1).TotalStock = 1
	assert.Equal(t, 36000.0, feed.Month("Shoes", "Core", 2025, 1).TotalStock, "input is not modified")

	assert.Nil(t, Filter{}.ApplyOperations(nil))
}

func TestOperationSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stock_weeks_MLB_operation.json"), []byte(operationFeed), 0o644))

	tests := []struct {
		name string
		src  OperationSource
	}{
		{"file", FileSource{Dir: dir}},
		{"object", ObjectSource{
			Storage: &fakeStorage{objects: map[string]string{"exports/stock_weeks_MLB_operation.json": operationFeed}},
			Prefix:  "exports",
		}},
		{"drive", DriveSource{Files: &fakeDrive{files: map[string]string{"stock_weeks_MLB_operation.json": operationFeed}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := tt.src.LoadOperations(context.Background(), domain.BrandMLB)
			require.NoError(t, err)
			assert.Equal(t, domain.Weeks(18), feed.Month("Shoes", "Core", 2025, 1).Weeks())

			_, err = tt.src.LoadOperations(context.Background(), domain.BrandDiscovery)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	var src Source = PostgresSource{}
	_, ok := src.(OperationSource)
	assert.False(t, ok)
}

type funcOperationSource struct {
	funcSource
	operations func(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error)
}

func (f funcOperationSource) LoadOperations(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
	return f.operations(ctx, brand)
}

func operationFeedWithYears(brand domain.Brand, years ...int) *domain.OperationFeed {
	feed := domain.NewOperationFeed(brand)
	series := make(domain.OperationSeries)
	for _, y := range years {
		series[y] = map[int]*domain.OperationMonth{1: {TotalStock: 10}}
	}
	feed.Categories["Shoes"] = map[string]domain.OperationSeries{"Core": series}
	return feed
}

func TestLoadAllOperations(t *testing.T) {
	boom := errors.New("bucket unreachable")

	tests := []struct {
		name    string
		load    func(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error)
		want    int
		wantErr error
	}{
		{
			name: "skips missing brands",
			load: func(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
				if brand == domain.BrandDiscovery {
					return nil, ErrNotFound
				}
				return operationFeedWithYears(brand, 2023, 2025), nil
			},
			want: 2,
		},
		{
			name: "aborts on error",
			load: func(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
				return nil, boom
			},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := funcOperationSource{operations: tt.load}
			feeds, err := LoadAllOperations(context.Background(), src, domain.Brands, Filter{ExcludedYears: []int{2023}})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, feeds, tt.want)
			assert.Equal(t, []int{2025}, feeds[domain.BrandMLB].Years())
		})
	}
}

func TestLoader_ReloadsOperations(t *testing.T) {
	store := NewStore()
	_, ok := store.Operations(domain.BrandMLB)
	assert.False(t, ok)

	src := funcOperationSource{
		funcSource: func(ctx context.Context, brand domain.Brand) (*domain.BrandFeed, error) {
			return feedWithYears(brand, 2025), nil
		},
		operations: func(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
			if brand != domain.BrandMLB {
				return nil, ErrNotFound
			}
			return operationFeedWithYears(brand, 2024, 2025), nil
		},
	}
	n, err := (&Loader{Source: src}).Reload(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, len(domain.Brands), n)

	ops, ok := store.Operations(domain.BrandMLB)
	require.True(t, ok)
	assert.Equal(t, []int{2025, 2024}, ops.Years())
	_, ok = store.Operations(domain.BrandMLBKids)
	assert.False(t, ok)

	src.operations = func(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
		return nil, errors.New("down")
	}
	_, err = (&Loader{Source: src}).Reload(context.Background(), store)
	require.Error(t, err)
	_, ok = store.Operations(domain.BrandMLB)
	assert.True(t, ok, "failed reload keeps the snapshot")

	// A base-figures-only source clears operation feeds.
	_, err = (&Loader{Source: src.funcSource}).Reload(context.Background(), store)
	require.NoError(t, err)
	_, ok = store.Operations(domain.BrandMLB)
	assert.False(t, ok)
}
