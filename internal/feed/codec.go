package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/stockweeks/internal/domain"
)

// Keys accepted for the nested blocks. The second spelling is the one used by
// the legacy dashboard exports.
var (
	subCategoryKeys = []string{"subCategories", "소분류"}
	baseFiguresKeys = []string{"baseFigures", "기초데이터"}
)

type figureField struct {
	keys []string
	set  func(b *domain.BaseFigures, v float64)
}

var figureFields = []figureField{
	{[]string{"daysInMonth", "월일수"}, func(b *domain.BaseFigures, v float64) { b.DaysInMonth = int(v) }},
	{[]string{"totalStockValue", "전체재고금액"}, func(b *domain.BaseFigures, v float64) { b.TotalStockValue = v }},
	{[]string{"wholesaleStockValue", "대리상재고금액"}, func(b *domain.BaseFigures, v float64) { b.WholesaleStockValue = v }},
	{[]string{"directStockValue", "직영재고금액"}, func(b *domain.BaseFigures, v float64) { b.DirectStockValue = v }},
	{[]string{"totalSalesValue", "전체판매금액"}, func(b *domain.BaseFigures, v float64) { b.TotalSalesValue = v }},
	{[]string{"wholesaleSalesValue", "대리상판매금액"}, func(b *domain.BaseFigures, v float64) { b.WholesaleSalesValue = v }},
	{[]string{"directSalesValue", "직영판매금액"}, func(b *domain.BaseFigures, v float64) { b.DirectSalesValue = v }},
}

// Decode reads a brand feed document.
func Decode(r io.Reader, brand domain.Brand) (*domain.BrandFeed, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", brand, err)
	}

	feed := domain.NewBrandFeed(brand)
	for category, msg := range raw {
		cat, err := decodeCategory(msg)
		if err != nil {
			return nil, fmt.Errorf("decode feed %s category %s: %w", brand, category, err)
		}
		feed.Categories[category] = cat
	}
	return feed, nil
}

func decodeCategory(msg json.RawMessage) (*domain.CategoryFeed, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}

	cat := &domain.CategoryFeed{Years: make(domain.YearlySeries)}
	for key, value := range raw {
		if containsKey(subCategoryKeys, key) {
			subs, err := decodeSubCategories(value)
			if err != nil {
				return nil, fmt.Errorf("sub-categories: %w", err)
			}
			cat.SubCategories = subs
			continue
		}

		year, err := strconv.Atoi(key)
		if err != nil {
			// Unknown top-level keys are ignored.
			continue
		}
		months, err := decodeYear(value)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		cat.Years[year] = months
	}
	return cat, nil
}

func decodeSubCategories(msg json.RawMessage) (map[string]domain.YearlySeries, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}

	subs := make(map[string]domain.YearlySeries, len(raw))
	for name, years := range raw {
		series := make(domain.YearlySeries, len(years))
		for key, value := range years {
			year, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			months, err := decodeYear(value)
			if err != nil {
				return nil, fmt.Errorf("%s year %d: %w", name, year, err)
			}
			series[year] = months
		}
		subs[name] = series
	}
	return subs, nil
}

func decodeYear(msg json.RawMessage) (domain.MonthlySeries, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}

	months := make(domain.MonthlySeries, len(raw))
	for key, value := range raw {
		month, err := strconv.Atoi(key)
		if err != nil || month < 1 || month > 12 {
			return nil, fmt.Errorf("invalid month key %q", key)
		}
		figures, err := decodeMonth(value)
		if err != nil {
			return nil, fmt.Errorf("month %d: %w", month, err)
		}
		months[month] = figures
	}
	return months, nil
}

// decodeMonth accepts either a month entry wrapping its figures under
// "baseFigures" or the bare figures object.
func decodeMonth(msg json.RawMessage) (*domain.BaseFigures, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	for _, key := range baseFiguresKeys {
		if block, ok := raw[key]; ok {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(block, &inner); err != nil {
				return nil, err
			}
			if inner == nil {
				return nil, nil
			}
			return decodeFigures(inner)
		}
	}

	for _, field := range figureFields {
		for _, key := range field.keys {
			if _, ok := raw[key]; ok {
				return decodeFigures(raw)
			}
		}
	}
	return nil, nil
}

// decodeFigures maps known fields; null or missing values stay zero.
func decodeFigures(raw map[string]json.RawMessage) (*domain.BaseFigures, error) {
	figures := &domain.BaseFigures{}
	for _, field := range figureFields {
		for _, key := range field.keys {
			value, ok := raw[key]
			if !ok {
				continue
			}
			var v *float64
			if err := json.Unmarshal(value, &v); err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			if v != nil {
				field.set(figures, *v)
			}
			break
		}
	}
	return figures, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
