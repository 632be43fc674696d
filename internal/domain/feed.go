package domain

import "sort"

// MonthlySeries maps month (1..12) to that month's figures. A nil entry means
// the producer emitted the month without base figures.
type MonthlySeries map[int]*BaseFigures

// YearlySeries maps a calendar year to its months.
type YearlySeries map[int]MonthlySeries

// CategoryFeed holds the category-level series and the optional sub-category breakdown.
type CategoryFeed struct {
	Years         YearlySeries            `json:"years"`
	SubCategories map[string]YearlySeries `json:"subCategories,omitempty"`
}

// BrandFeed is the full pre-computed input for one brand.
type BrandFeed struct {
	Brand      Brand                    `json:"brand"`
	Categories map[string]*CategoryFeed `json:"categories"`
}

// NewBrandFeed returns an empty feed for brand.
func NewBrandFeed(brand Brand) *BrandFeed {
	return &BrandFeed{Brand: brand, Categories: make(map[string]*CategoryFeed)}
}

// Figures returns the figures for a category (or one of its sub-categories
// when sub is non-empty), or nil when the feed has none.
func (f *BrandFeed) Figures(category, sub string, year, month int) *BaseFigures {
	if f == nil {
		return nil
	}
	cat, ok := f.Categories[category]
	if !ok || cat == nil {
		return nil
	}
	series := cat.Years
	if sub != "" {
		series = cat.SubCategories[sub]
	}
	return series[year][month]
}

// Years returns every year present in any category, newest first.
func (f *BrandFeed) Years() []int {
	if f == nil {
		return nil
	}
	seen := make(map[int]struct{})
	for _, cat := range f.Categories {
		if cat == nil {
			continue
		}
		for year := range cat.Years {
			seen[year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// OrderedCategories returns the feed's categories in display order; unknown
// categories follow alphabetically.
func (f *BrandFeed) OrderedCategories() []string {
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

// SubCategoryNames returns the sorted sub-category keys of a category.
func (c *CategoryFeed) SubCategoryNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.SubCategories))
	for name := range c.SubCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
