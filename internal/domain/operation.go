package domain

import "sort"

// OperationMonth is one month of an operation-basis series. StockWeeks is
// pre-computed by the exporter and is null when the month had no sales.
type OperationMonth struct {
	StockWeeks *float64 `json:"stock_weeks"`
	IsOutlier  bool     `json:"is_outlier_100wks"`
	TotalStock float64  `json:"total_stock"`
	TotalSales float64  `json:"total_sales"`
}

// Weeks converts the exported figure to a WeeksMetric. The exporter pads
// every year to twelve months with empty entries; those, like a missing
// month, are Unavailable. A null figure with stock or sales is NoSales.
func (m *OperationMonth) Weeks() WeeksMetric {
	if m == nil {
		return Unavailable()
	}
	if m.StockWeeks == nil {
		if m.TotalStock == 0 && m.TotalSales == 0 {
			return Unavailable()
		}
		return NoSales()
	}
	return Weeks(*m.StockWeeks)
}

// OperationSeries maps year to month (1..12) to that month's entry.
type OperationSeries map[int]map[int]*OperationMonth

// OperationFeed is the weeks-of-stock breakdown by operation basis for one
// brand: category, then operation, then year and month.
type OperationFeed struct {
	Brand      Brand                                 `json:"brand"`
	Categories map[string]map[string]OperationSeries `json:"categories"`
}

func NewOperationFeed(brand Brand) *OperationFeed {
	return &OperationFeed{Brand: brand, Categories: make(map[string]map[string]OperationSeries)}
}

// Month returns the entry for one operation and month, or nil.
func (f *OperationFeed) Month(category, operation string, year, month int) *OperationMonth {
	if f == nil {
		return nil
	}
	return f.Categories[category][operation][year][month]
}

// Years returns every year present in any operation, newest first.
func (f *OperationFeed) Years() []int {
	if f == nil {
		return nil
	}
	seen := make(map[int]struct{})
	for _, ops := range f.Categories {
		for _, series := range ops {
			for year := range series {
				seen[year] = struct{}{}
			}
		}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// OrderedCategories returns the categories in display order; unknown
// categories follow alphabetically.
func (f *OperationFeed) OrderedCategories() []string {
	if f == nil {
		return nil
	}
	known := make(map[string]bool, len(CategoryOrder))
	result := make([]string, 0, len(f.Categories))
	for _, key := range CategoryOrder {
		known[key] = true
		if _, ok := f.Categories[key]; ok {
			result = append(result, key)
		}
	}
	var extra []string
	for key := range f.Categories {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(result, extra...)
}

// Operations returns the sorted operation keys of a category.
func (f *OperationFeed) Operations(category string) []string {
	if f == nil {
		return nil
	}
	ops := f.Categories[category]
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
