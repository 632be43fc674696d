package feed

import (
	"sort"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/repository"
)

// FromRows builds a feed from table rows.
func FromRows(brand domain.Brand, rows []repository.BaseFiguresRow) *domain.BrandFeed {
	feed := domain.NewBrandFeed(brand)
	for _, row := range rows {
		cat, ok := feed.Categories[row.Category]
		if !ok {
			cat = &domain.CategoryFeed{Years: make(domain.YearlySeries)}
			feed.Categories[row.Category] = cat
		}

		series := cat.Years
		if row.SubCategory != "" {
			if cat.SubCategories == nil {
				cat.SubCategories = make(map[string]domain.YearlySeries)
			}
			series, ok = cat.SubCategories[row.SubCategory]
			if !ok {
				series = make(domain.YearlySeries)
				cat.SubCategories[row.SubCategory] = series
			}
		}

		if series[row.Year] == nil {
			series[row.Year] = make(domain.MonthlySeries)
		}
		if !row.HasFigures {
			series[row.Year][row.Month] = nil
			continue
		}
		figures := row.BaseFigures
		series[row.Year][row.Month] = &figures
	}
	return feed
}

// ToRows flattens a feed into table rows. A month listed without figures
// becomes a row with HasFigures false so it reloads as unavailable rather
// than being filled with zeros.
func ToRows(feed *domain.BrandFeed) []repository.BaseFiguresRow {
	if feed == nil {
		return nil
	}

	var rows []repository.BaseFiguresRow
	for _, category := range feed.OrderedCategories() {
		cat := feed.Categories[category]
		if cat == nil {
			continue
		}
		rows = appendSeries(rows, feed.Brand, category, "", cat.Years)
		for _, sub := range cat.SubCategoryNames() {
			rows = appendSeries(rows, feed.Brand, category, sub, cat.SubCategories[sub])
		}
	}
	return rows
}

func appendSeries(rows []repository.BaseFiguresRow, brand domain.Brand, category, sub string, series domain.YearlySeries) []repository.BaseFiguresRow {
	years := make([]int, 0, len(series))
	for y := range series {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, year := range years {
		for month := 1; month <= 12; month++ {
			figures, listed := series[year][month]
			if !listed {
				continue
			}
			row := repository.BaseFiguresRow{
				Brand:       string(brand),
				Category:    category,
				SubCategory: sub,
				Year:        year,
				Month:       month,
			}
			if figures != nil {
				row.HasFigures = true
				row.BaseFigures = *figures
			}
			rows = append(rows, row)
		}
	}
	return rows
}
