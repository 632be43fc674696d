package service

import (
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
)

// currentAndPrevious picks the two newest years of a feed. previous is 0 when
// the feed holds a single year.
func currentAndPrevious(feed *domain.BrandFeed) (current, previous int) {
	years := feed.Years()
	if len(years) > 0 {
		current = years[0]
	}
	if len(years) > 1 {
		previous = years[1]
	}
	return current, previous
}

// selectCategories resolves a category filter against the feed.
func selectCategories(feed *domain.BrandFeed, category string) ([]string, error) {
	if isAllCategories(category) {
		return feed.OrderedCategories(), nil
	}
	if _, ok := feed.Categories[category]; !ok {
		return nil, ErrUnknownCategory
	}
	return []string{category}, nil
}

// aggregateMonth sums the category figures of one month. It returns nil when
// none of the categories has figures for that month.
func aggregateMonth(feed *domain.BrandFeed, categories []string, year, month int) (*domain.BaseFigures, error) {
	period := stockweeks.PeriodKey{Year: year, Month: month}
	records := make([]stockweeks.PeriodFigures, 0, len(categories))
	found := false
	for _, category := range categories {
		figures := feed.Figures(category, "", year, month)
		if figures != nil {
			found = true
		}
		records = append(records, stockweeks.PeriodFigures{Period: period, Figures: figures})
	}
	if !found {
		return nil, nil
	}

	agg, err := stockweeks.Aggregate(records...)
	if err != nil {
		return nil, err
	}
	return &agg.BaseFigures, nil
}

func buildHeatmap(feed *domain.BrandFeed, filter domain.HeatmapFilter) (*domain.Heatmap, error) {
	categories, err := selectCategories(feed, filter.Category)
	if err != nil {
		return nil, err
	}

	years := feed.Years()
	current, previous := currentAndPrevious(feed)
	report := &domain.Heatmap{
		Brand:        feed.Brand,
		NWeeks:       filter.NWeeks,
		CurrentYear:  current,
		PreviousYear: previous,
		Rows:         make([]domain.HeatmapRow, 0, len(categories)+1),
	}

	if isAllCategories(filter.Category) && len(categories) > 0 {
		lookup := func(year, month int) (*domain.BaseFigures, error) {
			return aggregateMonth(feed, categories, year, month)
		}
		row, err := heatmapRow(domain.CategoryAll, domain.CategoryAll, "", years, current, previous, filter.NWeeks, lookup)
		if err != nil {
			return nil, err
		}
		report.Rows = append(report.Rows, row)
	}

	for _, category := range categories {
		category := category
		lookup := func(year, month int) (*domain.BaseFigures, error) {
			return feed.Figures(category, "", year, month), nil
		}
		row, err := heatmapRow(category, domain.CategoryName(category), "", years, current, previous, filter.NWeeks, lookup)
		if err != nil {
			return nil, err
		}

		cat := feed.Categories[category]
		for _, sub := range cat.SubCategoryNames() {
			sub := sub
			subLookup := func(year, month int) (*domain.BaseFigures, error) {
				return feed.Figures(category, sub, year, month), nil
			}
			subRow, err := heatmapRow(category, sub, sub, years, current, previous, filter.NWeeks, subLookup)
			if err != nil {
				return nil, err
			}
			row.SubRows = append(row.SubRows, subRow)
		}

		report.Rows = append(report.Rows, row)
	}

	return report, nil
}

type figuresLookup func(year, month int) (*domain.BaseFigures, error)

func heatmapRow(category, name, sub string, years []int, current, previous int, n float64, lookup figuresLookup) (domain.HeatmapRow, error) {
	row := domain.HeatmapRow{
		Category:    category,
		Name:        name,
		SubCategory: sub,
		Years:       make([]domain.HeatmapYear, 0, len(years)),
	}

	byYear := make(map[int][]domain.HeatmapMonth, len(years))
	for _, year := range years {
		months := make([]domain.HeatmapMonth, 0, 12)
		for month := 1; month <= 12; month++ {
			figures, err := lookup(year, month)
			if err != nil {
				return domain.HeatmapRow{}, err
			}
			months = append(months, heatmapMonth(month, figures, n))
		}
		byYear[year] = months
		row.Years = append(row.Years, domain.HeatmapYear{Year: year, Months: months})
	}

	if previous != 0 {
		cur, prev := byYear[current], byYear[previous]
		row.YOY = make([]domain.HeatmapDelta, 0, 12)
		for i := range cur {
			row.YOY = append(row.YOY, domain.HeatmapDelta{
				Month:     cur[i].Month,
				Total:     delta(cur[i].Total, prev[i].Total),
				Wholesale: delta(cur[i].Wholesale, prev[i].Wholesale),
				Warehouse: delta(cur[i].Warehouse, prev[i].Warehouse),
			})
		}
	}

	return row, nil
}

func heatmapMonth(month int, figures *domain.BaseFigures, n float64) domain.HeatmapMonth {
	total := stockweeks.ComputeWeeks(figures, stockweeks.ChannelTotal, n)
	return domain.HeatmapMonth{
		Month:     month,
		Total:     total,
		Wholesale: stockweeks.ComputeWeeks(figures, stockweeks.ChannelWholesale, n),
		Warehouse: stockweeks.ComputeWeeks(figures, stockweeks.ChannelWarehouse, n),
		Outlier:   stockweeks.IsOutlier(total),
	}
}

func buildSummary(feed *domain.BrandFeed, filter domain.SummaryFilter) (*domain.SummaryReport, error) {
	current, previous := currentAndPrevious(feed)
	month := filter.Month
	if month == 0 {
		if month = latestMonth(feed, current); month == 0 {
			return nil, ErrNoData
		}
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	categories := feed.OrderedCategories()
	report := &domain.SummaryReport{
		Brand:        feed.Brand,
		Month:        month,
		NWeeks:       filter.NWeeks,
		CurrentYear:  current,
		PreviousYear: previous,
		Items:        make([]domain.ItemSummary, 0, len(categories)),
	}

	for _, category := range categories {
		cur := feed.Figures(category, "", current, month)
		var prev *domain.BaseFigures
		if previous != 0 {
			prev = feed.Figures(category, "", previous, month)
		}
		report.Items = append(report.Items, itemSummary(category, domain.CategoryName(category), cur, prev, filter.NWeeks))
	}

	cur, err := aggregateMonth(feed, categories, current, month)
	if err != nil {
		return nil, err
	}
	var prev *domain.BaseFigures
	if previous != 0 {
		if prev, err = aggregateMonth(feed, categories, previous, month); err != nil {
			return nil, err
		}
	}
	report.All = itemSummary(domain.CategoryAll, domain.CategoryAll, cur, prev, filter.NWeeks)

	return report, nil
}

func itemSummary(category, name string, cur, prev *domain.BaseFigures, n float64) domain.ItemSummary {
	item := domain.ItemSummary{
		Category:      category,
		Name:          name,
		CurrentWeeks:  stockweeks.ComputeWeeks(cur, stockweeks.ChannelTotal, n),
		PreviousWeeks: stockweeks.ComputeWeeks(prev, stockweeks.ChannelTotal, n),
	}
	item.WeeksDelta = delta(item.CurrentWeeks, item.PreviousWeeks)

	if cur != nil {
		item.CurrentEndingStock = cur.TotalStockValue
		item.CurrentSales = cur.TotalSalesValue
	}
	if prev != nil {
		item.PreviousEndingStock = prev.TotalStockValue
		item.PreviousSales = prev.TotalSalesValue
	}
	item.StockYOY = ratio(item.CurrentEndingStock, item.PreviousEndingStock)
	item.SalesYOY = ratio(item.CurrentSales, item.PreviousSales)
	return item
}

func buildMonthly(feed *domain.BrandFeed, filter domain.MonthlyFilter) (*domain.MonthlyReport, error) {
	categories, err := selectCategories(feed, filter.Category)
	if err != nil {
		return nil, err
	}

	current, previous := currentAndPrevious(feed)
	category := filter.Category
	if isAllCategories(category) {
		category = domain.CategoryAll
	}

	report := &domain.MonthlyReport{
		Brand:        feed.Brand,
		Category:     category,
		NWeeks:       filter.NWeeks,
		CurrentYear:  current,
		PreviousYear: previous,
		Months:       make([]domain.MonthlySummaryRow, 0, 12),
	}

	for month := 1; month <= 12; month++ {
		cur, err := aggregateMonth(feed, categories, current, month)
		if err != nil {
			return nil, err
		}
		var prev *domain.BaseFigures
		if previous != 0 {
			if prev, err = aggregateMonth(feed, categories, previous, month); err != nil {
				return nil, err
			}
		}
		if !hasData(cur) && !hasData(prev) {
			continue
		}

		row := domain.MonthlySummaryRow{
			Month:        month,
			CurrentWeeks: stockweeks.ComputeWeeks(cur, stockweeks.ChannelTotal, filter.NWeeks),
		}
		if cur != nil {
			row.CurrentStock = cur.TotalStockValue
			row.CurrentSales = cur.TotalSalesValue
		}
		if prev != nil {
			row.PreviousStock = prev.TotalStockValue
			row.PreviousSales = prev.TotalSalesValue
		}
		row.StockYOY = ratio(row.CurrentStock, row.PreviousStock)
		row.SalesYOY = ratio(row.CurrentSales, row.PreviousSales)
		report.Months = append(report.Months, row)
	}

	return report, nil
}

// latestMonth returns the last month of year with stock or sales in any
// category, or 0 when there is none.
func latestMonth(feed *domain.BrandFeed, year int) int {
	categories := feed.OrderedCategories()
	for month := 12; month >= 1; month-- {
		for _, category := range categories {
			if hasData(feed.Figures(category, "", year, month)) {
				return month
			}
		}
	}
	return 0
}

// hasData reports whether figures carry any stock or sales. Zero-filled
// months do not.
func hasData(figures *domain.BaseFigures) bool {
	if figures == nil {
		return false
	}
	return figures.TotalStockValue != 0 || figures.TotalSalesValue != 0 ||
		figures.WholesaleStockValue != 0 || figures.DirectStockValue != 0
}

func delta(current, previous domain.WeeksMetric) *float64 {
	d, ok := stockweeks.YearOverYearDelta(current, previous)
	if !ok {
		return nil
	}
	return &d
}

func ratio(current, previous float64) *float64 {
	r, ok := stockweeks.YOYRatioPercent(current, previous)
	if !ok {
		return nil
	}
	return &r
}
