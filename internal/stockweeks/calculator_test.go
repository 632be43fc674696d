package stockweeks

import (
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFigures() *domain.BaseFigures {
	return &domain.BaseFigures{
		DaysInMonth:      30,
		TotalStockValue:  900000,
		TotalSalesValue:  210000,
		DirectStockValue: 900000,
		DirectSalesValue: 210000,
	}
}

func requireValue(t *testing.T, m domain.WeeksMetric) float64 {
	t.Helper()
	v, ok := m.Value()
	require.True(t, ok, "expected a value metric, got %s", m)
	return v
}

func TestComputeWeeks_Total(t *testing.T) {
	got := requireValue(t, ComputeWeeks(sampleFigures(), ChannelTotal, 25))
	assert.InDelta(t, 900000.0/49000.0, got, 1e-9)
	assert.InDelta(t, 18.367, got, 1e-3)
}

func TestComputeWeeks_WarehouseNegativeIsNotClamped(t *testing.T) {
	got := requireValue(t, ComputeWeeks(sampleFigures(), ChannelWarehouse, 25))
	assert.InDelta(t, -325000.0/49000.0, got, 1e-9)
	assert.InDelta(t, -6.633, got, 1e-3)
}

func TestComputeWeeks_Wholesale(t *testing.T) {
	base := &domain.BaseFigures{
		DaysInMonth:         28,
		WholesaleStockValue: 400000,
		WholesaleSalesValue: 80000,
		TotalSalesValue:     80000,
	}
	got := requireValue(t, ComputeWeeks(base, ChannelWholesale, 25))
	// weekly = 80000 / 28 * 7 = 20000
	assert.InDelta(t, 20.0, got, 1e-9)
}

func TestComputeWeeks_NoSales(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *domain.BaseFigures)
		channel Channel
	}{
		{"total with zero total sales", func(b *domain.BaseFigures) { b.TotalSalesValue = 0 }, ChannelTotal},
		{"wholesale with zero wholesale sales", func(b *domain.BaseFigures) {}, ChannelWholesale},
		{"warehouse with zero total sales", func(b *domain.BaseFigures) { b.TotalSalesValue = 0 }, ChannelWarehouse},
		{"total with NaN sales", func(b *domain.BaseFigures) { b.TotalSalesValue = math.NaN() }, ChannelTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := sampleFigures()
			tt.mutate(base)
			m := ComputeWeeks(base, tt.channel, 25)
			assert.True(t, m.IsNoSales(), "got %s", m)
			_, ok := m.Value()
			assert.False(t, ok)
		})
	}
}

func TestComputeWeeks_ZeroDaysYieldsNoSalesOnEveryChannel(t *testing.T) {
	for _, sales := range []float64{0, 210000} {
		base := sampleFigures()
		base.DaysInMonth = 0
		base.TotalSalesValue = sales
		base.WholesaleSalesValue = sales
		for _, ch := range Channels {
			m := ComputeWeeks(base, ch, 25)
			assert.True(t, m.IsNoSales(), "sales=%v channel=%s got %s", sales, ch, m)
		}
	}
}

func TestComputeWeeks_UnavailableForMissingRecord(t *testing.T) {
	for _, ch := range Channels {
		for _, n := range []float64{0, 25, 52, -3} {
			assert.True(t, ComputeWeeks(nil, ch, n).IsUnavailable())
		}
	}
}

// The warehouse channel is gated on total sales, so it still produces a value
// when the direct channel itself sold nothing.
func TestComputeWeeks_WarehouseGatesOnTotalSales(t *testing.T) {
	base := &domain.BaseFigures{
		DaysInMonth:         30,
		TotalSalesValue:     210000,
		WholesaleSalesValue: 210000,
		DirectStockValue:    490000,
		DirectSalesValue:    0,
	}
	got := requireValue(t, ComputeWeeks(base, ChannelWarehouse, 25))
	assert.InDelta(t, 10.0, got, 1e-9)

	base.TotalSalesValue = 0
	base.DirectSalesValue = 210000
	assert.True(t, ComputeWeeks(base, ChannelWarehouse, 25).IsNoSales())
}

func TestComputeWeeks_WarehouseDecreasesWithSellThroughWeeks(t *testing.T) {
	base := sampleFigures()
	prev := math.Inf(1)
	for n := 0.0; n <= 60; n += 5 {
		got := requireValue(t, ComputeWeeks(base, ChannelWarehouse, n))
		assert.LessOrEqual(t, got, prev, "n=%v", n)
		prev = got
	}
}

func TestComputeWeeks_ToleratesInconsistentTotals(t *testing.T) {
	base := &domain.BaseFigures{
		DaysInMonth:         31,
		TotalStockValue:     100,
		WholesaleStockValue: 5000,
		DirectStockValue:    5000,
		TotalSalesValue:     310,
		WholesaleSalesValue: 1,
		DirectSalesValue:    1,
	}
	for _, ch := range Channels {
		m := ComputeWeeks(base, ch, 25)
		assert.Equal(t, domain.MetricValue, m.Kind(), "channel %s", ch)
	}
}

func TestAggregate(t *testing.T) {
	t.Run("empty input is all zero", func(t *testing.T) {
		agg, err := Aggregate()
		require.NoError(t, err)
		assert.Equal(t, AggregatedFigures{}, agg)
		assert.True(t, ComputeWeeks(&agg.BaseFigures, ChannelTotal, 25).IsNoSales())
	})

	t.Run("sums fields and keeps first non-zero day count", func(t *testing.T) {
		period := PeriodKey{Year: 2025, Month: 2}
		agg, err := Aggregate(
			PeriodFigures{Period: period, Figures: &domain.BaseFigures{DaysInMonth: 0, TotalStockValue: 1}},
			PeriodFigures{Period: period},
			PeriodFigures{Period: period, Figures: &domain.BaseFigures{DaysInMonth: 28, TotalStockValue: 10, TotalSalesValue: 7, DirectSalesValue: math.NaN()}},
			PeriodFigures{Period: period, Figures: &domain.BaseFigures{DaysInMonth: 31, TotalStockValue: 100, WholesaleStockValue: 5, DirectStockValue: 6, TotalSalesValue: 3, WholesaleSalesValue: 2, DirectSalesValue: 1}},
		)
		require.NoError(t, err)
		assert.Equal(t, period, agg.Period)
		assert.Equal(t, 28, agg.DaysInMonth)
		assert.Equal(t, 111.0, agg.TotalStockValue)
		assert.Equal(t, 5.0, agg.WholesaleStockValue)
		assert.Equal(t, 6.0, agg.DirectStockValue)
		assert.Equal(t, 10.0, agg.TotalSalesValue)
		assert.Equal(t, 2.0, agg.WholesaleSalesValue)
		assert.Equal(t, 1.0, agg.DirectSalesValue)
	})

	t.Run("rejects records from different months", func(t *testing.T) {
		_, err := Aggregate(
			PeriodFigures{Period: PeriodKey{Year: 2025, Month: 1}, Figures: sampleFigures()},
			PeriodFigures{Period: PeriodKey{Year: 2025, Month: 2}, Figures: sampleFigures()},
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPeriodMismatch))
	})
}

func TestYearOverYearDelta(t *testing.T) {
	a, b := domain.Weeks(18.5), domain.Weeks(20)

	d, ok := YearOverYearDelta(a, b)
	require.True(t, ok)
	assert.InDelta(t, -1.5, d, 1e-12)

	rev, ok := YearOverYearDelta(b, a)
	require.True(t, ok)
	assert.Equal(t, -d, rev)

	for _, other := range []domain.WeeksMetric{domain.NoSales(), domain.Unavailable()} {
		_, ok := YearOverYearDelta(a, other)
		assert.False(t, ok)
		_, ok = YearOverYearDelta(other, a)
		assert.False(t, ok)
	}
}

func TestYOYRatioPercent(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		want      float64
		defined   bool
	}{
		{"growth", 120, 100, 120, true},
		{"decline", 50, 200, 25, true},
		{"zero current", 0, 10, 0, true},
		{"zero previous", 10, 0, 0, false},
		{"negative previous", 10, -5, 0, false},
		{"NaN previous", 10, math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := YOYRatioPercent(tt.cur, tt.prev)
			assert.Equal(t, tt.defined, ok)
			if tt.defined {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsOutlier(t *testing.T) {
	assert.True(t, IsOutlier(domain.Weeks(100)))
	assert.True(t, IsOutlier(domain.Weeks(250.4)))
	assert.False(t, IsOutlier(domain.Weeks(99.99)))
	assert.False(t, IsOutlier(domain.NoSales()))
	assert.False(t, IsOutlier(domain.Unavailable()))
}

func TestValidateSellThroughWeeks(t *testing.T) {
	assert.NoError(t, ValidateSellThroughWeeks(0))
	assert.NoError(t, ValidateSellThroughWeeks(25))
	for _, n := range []float64{-1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, ValidateSellThroughWeeks(n), ErrInvalidSellThroughWeeks)
	}
}

func TestParseChannel(t *testing.T) {
	tests := map[string]Channel{
		"total":      ChannelTotal,
		"":           ChannelTotal,
		"Wholesale":  ChannelWholesale,
		"agency":     ChannelWholesale,
		" warehouse": ChannelWarehouse,
	}
	for raw, want := range tests {
		got, err := ParseChannel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseChannel("direct")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2025, 1))
	assert.Equal(t, 28, DaysInMonth(2025, 2))
	assert.Equal(t, 29, DaysInMonth(2024, 2))
	assert.Equal(t, 30, DaysInMonth(2024, 11))
	assert.Equal(t, 31, DaysInMonth(2024, 12))
}
