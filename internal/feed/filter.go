package feed

import (
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
)

// Filter normalizes a decoded feed before it is served.
type Filter struct {
	// ExcludedYears are dropped from every category and sub-category.
	ExcludedYears []int
	// FillMissingMonths adds zero figures for months 1..12 that are absent
	// from a year present in the feed. Months present without figures stay
	// unavailable.
	FillMissingMonths bool
}

// Apply returns a filtered copy of feed. The input is not modified.
func (f Filter) Apply(feed *domain.BrandFeed) *domain.BrandFeed {
	if feed == nil {
		return nil
	}

	excluded := make(map[int]bool, len(f.ExcludedYears))
	for _, y := range f.ExcludedYears {
		excluded[y] = true
	}

	out := domain.NewBrandFeed(feed.Brand)
	for key, cat := range feed.Categories {
		if cat == nil {
			continue
		}
		next := &domain.CategoryFeed{Years: f.series(cat.Years, excluded)}
		if len(cat.SubCategories) > 0 {
			next.SubCategories = make(map[string]domain.YearlySeries, len(cat.SubCategories))
			for name, series := range cat.SubCategories {
				next.SubCategories[name] = f.series(series, excluded)
			}
		}
		out.Categories[key] = next
	}
	return out
}

func (f Filter) series(in domain.YearlySeries, excluded map[int]bool) domain.YearlySeries {
	out := make(domain.YearlySeries, len(in))
	for year, months := range in {
		if excluded[year] {
			continue
		}
		copied := make(domain.MonthlySeries, 12)
		for month, figures := range months {
			if figures != nil {
				v := *figures
				figures = &v
			}
			copied[month] = figures
		}
		if f.FillMissingMonths {
			for month := 1; month <= 12; month++ {
				if _, ok := copied[month]; !ok {
					copied[month] = &domain.BaseFigures{DaysInMonth: stockweeks.DaysInMonth(year, month)}
				}
			}
		}
		out[year] = copied
	}
	return out
}
