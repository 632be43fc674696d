package stockweeks

import (
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/stockweeks/internal/domain"
)

const (
	// DefaultDirectSellThroughWeeks is the number of weeks of direct sales
	// presumed reserved out of direct stock.
	DefaultDirectSellThroughWeeks = 25

	// OutlierWeeks is the threshold at and above which a value is flagged.
	OutlierWeeks = 100

	daysPerWeek = 7
)

// ComputeWeeks computes the weeks-of-stock metric of base for one channel.
//
// Each channel's weekly sales average is (sales / daysInMonth) * 7. A zero or
// non-finite average yields NoSales. The warehouse channel is gated on the
// total average, not the direct one, and its result may be negative.
func ComputeWeeks(base *domain.BaseFigures, channel Channel, directSellThroughWeeks float64) domain.WeeksMetric {
	if base == nil {
		return domain.Unavailable()
	}

	days := float64(base.DaysInMonth)
	totalWeekly := weeklyAverage(base.TotalSalesValue, days)

	switch channel {
	case ChannelTotal:
		if !hasSales(totalWeekly) {
			return domain.NoSales()
		}
		return domain.Weeks(base.TotalStockValue / totalWeekly)

	case ChannelWholesale:
		wholesaleWeekly := weeklyAverage(base.WholesaleSalesValue, days)
		if !hasSales(wholesaleWeekly) {
			return domain.NoSales()
		}
		return domain.Weeks(base.WholesaleStockValue / wholesaleWeekly)

	case ChannelWarehouse:
		if !hasSales(totalWeekly) {
			return domain.NoSales()
		}
		directWeekly := weeklyAverage(base.DirectSalesValue, days)
		reserved := directWeekly * directSellThroughWeeks
		warehouseStock := base.DirectStockValue - reserved
		return domain.Weeks(warehouseStock / totalWeekly)
	}

	return domain.Unavailable()
}

// Aggregate sums the value fields of records that all describe the same
// period. DaysInMonth is taken from the first record with a non-zero day
// count. Nil figures are skipped and non-finite fields count as zero.
func Aggregate(records ...PeriodFigures) (AggregatedFigures, error) {
	var agg AggregatedFigures
	if len(records) == 0 {
		return agg, nil
	}

	agg.Period = records[0].Period
	for _, rec := range records {
		if rec.Period != agg.Period {
			return AggregatedFigures{}, fmt.Errorf("%w: %s and %s", ErrPeriodMismatch, agg.Period, rec.Period)
		}
		if rec.Figures == nil {
			continue
		}

		f := rec.Figures
		if agg.DaysInMonth == 0 && f.DaysInMonth > 0 {
			agg.DaysInMonth = f.DaysInMonth
		}
		agg.TotalStockValue += finiteOrZero(f.TotalStockValue)
		agg.WholesaleStockValue += finiteOrZero(f.WholesaleStockValue)
		agg.DirectStockValue += finiteOrZero(f.DirectStockValue)
		agg.TotalSalesValue += finiteOrZero(f.TotalSalesValue)
		agg.WholesaleSalesValue += finiteOrZero(f.WholesaleSalesValue)
		agg.DirectSalesValue += finiteOrZero(f.DirectSalesValue)
	}

	return agg, nil
}

// YearOverYearDelta returns current - previous when both metrics hold values.
// A negative delta is an improvement (fewer weeks of stock).
func YearOverYearDelta(current, previous domain.WeeksMetric) (float64, bool) {
	cur, ok := current.Value()
	if !ok {
		return 0, false
	}
	prev, ok := previous.Value()
	if !ok {
		return 0, false
	}
	return cur - prev, true
}

// YOYRatioPercent returns current as a percentage of previous. It is
// undefined when previous is not positive.
func YOYRatioPercent(current, previous float64) (float64, bool) {
	if !(previous > 0) || math.IsInf(previous, 0) {
		return 0, false
	}
	ratio := current / previous * 100
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, false
	}
	return ratio, true
}

// IsOutlier reports whether m holds a value of at least OutlierWeeks.
func IsOutlier(m domain.WeeksMetric) bool {
	v, ok := m.Value()
	return ok && v >= OutlierWeeks
}

// ValidateSellThroughWeeks rejects negative or non-finite sell-through weeks.
func ValidateSellThroughWeeks(n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSellThroughWeeks, n)
	}
	return nil
}

// DaysInMonth returns the number of calendar days in month of year.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func weeklyAverage(sales, days float64) float64 {
	return sales / days * daysPerWeek
}

func hasSales(weekly float64) bool {
	return weekly != 0 && !math.IsNaN(weekly) && !math.IsInf(weekly, 0)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
