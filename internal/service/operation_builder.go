package service

import (
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
)

func buildOperationHeatmap(feed *domain.OperationFeed, filter domain.OperationHeatmapFilter) (*domain.OperationHeatmap, error) {
	categories := feed.OrderedCategories()
	if !isAllCategories(filter.Category) {
		if _, ok := feed.Categories[filter.Category]; !ok {
			return nil, ErrUnknownCategory
		}
		categories = []string{filter.Category}
	}

	report := &domain.OperationHeatmap{Brand: feed.Brand, Rows: []domain.OperationHeatmapRow{}}
	years := feed.Years()
	if len(years) > 0 {
		report.CurrentYear = years[0]
	}
	if len(years) > 1 {
		report.PreviousYear = years[1]
	}

	for _, category := range categories {
		for _, operation := range feed.Operations(category) {
			row := domain.OperationHeatmapRow{
				Category:  category,
				Name:      domain.CategoryName(category),
				Operation: operation,
				Current:   make([]domain.OperationCell, 0, 12),
				Previous:  make([]domain.OperationCell, 0, 12),
				YOY:       make([]domain.OperationDelta, 0, 12),
			}
			for month := 1; month <= 12; month++ {
				cur := operationCell(month, feed.Month(category, operation, report.CurrentYear, month))
				prev := operationCell(month, feed.Month(category, operation, report.PreviousYear, month))
				row.Current = append(row.Current, cur)
				row.Previous = append(row.Previous, prev)
				row.YOY = append(row.YOY, domain.OperationDelta{Month: month, Weeks: delta(cur.Weeks, prev.Weeks)})
			}
			report.Rows = append(report.Rows, row)
		}
	}
	return report, nil
}

// operationCell flags an outlier when either the exporter did or the weeks
// reach the outlier threshold.
func operationCell(month int, entry *domain.OperationMonth) domain.OperationCell {
	weeks := entry.Weeks()
	cell := domain.OperationCell{Month: month, Weeks: weeks, Outlier: stockweeks.IsOutlier(weeks)}
	if entry != nil {
		cell.Outlier = cell.Outlier || entry.IsOutlier
		cell.TotalStock = entry.TotalStock
		cell.TotalSales = entry.TotalSales
	}
	return cell
}
