// internal/domain/models.go
package domain

import (
	"errors"
	"strings"
)

// BaseFigures is one month of stock and sales values for a category.
type BaseFigures struct {
	DaysInMonth         int     `json:"daysInMonth" db:"days_in_month"`
	TotalStockValue     float64 `json:"totalStockValue" db:"total_stock_value"`
	WholesaleStockValue float64 `json:"wholesaleStockValue" db:"wholesale_stock_value"`
	DirectStockValue    float64 `json:"directStockValue" db:"direct_stock_value"`
	TotalSalesValue     float64 `json:"totalSalesValue" db:"total_sales_value"`
	WholesaleSalesValue float64 `json:"wholesaleSalesValue" db:"wholesale_sales_value"`
	DirectSalesValue    float64 `json:"directSalesValue" db:"direct_sales_value"`
}

// Brand identifies one of the reported brands
type Brand string

const (
	BrandMLB       Brand = "MLB"
	BrandMLBKids   Brand = "MLB KIDS"
	BrandDiscovery Brand = "DISCOVERY"
)

// Brands lists every supported brand in display order.
var Brands = []Brand{BrandMLB, BrandMLBKids, BrandDiscovery}

var ErrUnknownBrand = errors.New("unknown brand")

// ParseBrand resolves a brand from user input. Underscores and dashes are
// accepted in place of spaces so "mlb_kids" works in URLs.
func ParseBrand(raw string) (Brand, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	for _, b := range Brands {
		if string(b) == normalized {
			return b, nil
		}
	}
	return "", ErrUnknownBrand
}

// FileKey is the brand name as used in feed file names ("MLB KIDS" -> "MLB_KIDS").
func (b Brand) FileKey() string {
	return strings.ReplaceAll(string(b), " ", "_")
}

// CategoryAll selects every category in reports.
const CategoryAll = "ALL"

// CategoryOrder is the display order of the mid-level item categories.
var CategoryOrder = []string{"Shoes", "Headwear", "Bag", "Acc_etc"}

// CategoryNames maps category keys to display names.
var CategoryNames = map[string]string{
	"Shoes":    "Shoes",
	"Headwear": "Headwear",
	"Bag":      "Bag",
	"Acc_etc":  "Acc & Etc",
}

// CategoryName returns the display name of a category, falling back to its key.
func CategoryName(key string) string {
	if name, ok := CategoryNames[key]; ok {
		return name
	}
	return key
}
