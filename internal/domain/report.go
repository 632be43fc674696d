package domain

// HeatmapMonth holds the three channel metrics for one month.
type HeatmapMonth struct {
	Month     int         `json:"month"`
	Total     WeeksMetric `json:"total"`
	Wholesale WeeksMetric `json:"wholesale"`
	Warehouse WeeksMetric `json:"warehouse"`
	Outlier   bool        `json:"outlier"` // total weeks at or above the outlier threshold
}

// HeatmapYear is one year of a heatmap row.
type HeatmapYear struct {
	Year   int            `json:"year"`
	Months []HeatmapMonth `json:"months"`
}

// HeatmapDelta is the year-over-year change in weeks for one month.
// Nil means the delta is undefined for that channel.
type HeatmapDelta struct {
	Month     int      `json:"month"`
	Total     *float64 `json:"total"`
	Wholesale *float64 `json:"wholesale"`
	Warehouse *float64 `json:"warehouse"`
}

// HeatmapRow is a category (or sub-category) with its yearly series.
type HeatmapRow struct {
	Category    string         `json:"category"`
	Name        string         `json:"name"`
	SubCategory string         `json:"sub_category,omitempty"`
	Years       []HeatmapYear  `json:"years"`
	YOY         []HeatmapDelta `json:"yoy,omitempty"`
	SubRows     []HeatmapRow   `json:"sub_rows,omitempty"`
}

// Heatmap is the weeks-of-stock heatmap for one brand.
type Heatmap struct {
	Brand        Brand        `json:"brand"`
	NWeeks       float64      `json:"n_weeks"`
	CurrentYear  int          `json:"current_year"`
	PreviousYear int          `json:"previous_year"`
	Rows         []HeatmapRow `json:"rows"`
}

// HeatmapFilter selects a heatmap.
type HeatmapFilter struct {
	Brand    Brand
	Category string // empty or CategoryAll for every category
	NWeeks   float64
}

// ItemSummary compares one category's selected month with the same month a year earlier.
type ItemSummary struct {
	Category            string      `json:"category"`
	Name                string      `json:"name"`
	CurrentWeeks        WeeksMetric `json:"current_weeks"`
	PreviousWeeks       WeeksMetric `json:"previous_weeks"`
	WeeksDelta          *float64    `json:"weeks_delta"`
	CurrentEndingStock  float64     `json:"current_ending_stock"`
	PreviousEndingStock float64     `json:"previous_ending_stock"`
	CurrentSales        float64     `json:"current_sales"`
	PreviousSales       float64     `json:"previous_sales"`
	StockYOY            *float64    `json:"stock_yoy"`
	SalesYOY            *float64    `json:"sales_yoy"`
}

// SummaryReport holds the summary cards for a brand and month.
type SummaryReport struct {
	Brand        Brand         `json:"brand"`
	Month        int           `json:"month"`
	NWeeks       float64       `json:"n_weeks"`
	CurrentYear  int           `json:"current_year"`
	PreviousYear int           `json:"previous_year"`
	Items        []ItemSummary `json:"items"`
	All          ItemSummary   `json:"all"`
}

// SummaryFilter selects a summary report.
type SummaryFilter struct {
	Brand  Brand
	Month  int
	NWeeks float64
}

// MonthlySummaryRow is one month of the monthly trend.
type MonthlySummaryRow struct {
	Month         int         `json:"month"`
	CurrentStock  float64     `json:"current_stock"`
	PreviousStock float64     `json:"previous_stock"`
	CurrentSales  float64     `json:"current_sales"`
	PreviousSales float64     `json:"previous_sales"`
	CurrentWeeks  WeeksMetric `json:"current_weeks"`
	StockYOY      *float64    `json:"stock_yoy"`
	SalesYOY      *float64    `json:"sales_yoy"`
}

// MonthlyReport is the month-by-month trend for a brand and category selection.
type MonthlyReport struct {
	Brand        Brand               `json:"brand"`
	Category     string              `json:"category"`
	NWeeks       float64             `json:"n_weeks"`
	CurrentYear  int                 `json:"current_year"`
	PreviousYear int                 `json:"previous_year"`
	Months       []MonthlySummaryRow `json:"months"`
}

// MonthlyFilter selects a monthly report.
type MonthlyFilter struct {
	Brand    Brand
	Category string
	NWeeks   float64
}

// OperationCell is one month of an operation heatmap row.
type OperationCell struct {
	Month      int         `json:"month"`
	Weeks      WeeksMetric `json:"weeks"`
	Outlier    bool        `json:"outlier"`
	TotalStock float64     `json:"total_stock"`
	TotalSales float64     `json:"total_sales"`
}

// OperationDelta is the year-over-year change in weeks for one month.
type OperationDelta struct {
	Month int      `json:"month"`
	Weeks *float64 `json:"weeks"`
}

// OperationHeatmapRow compares one operation basis across the two years.
type OperationHeatmapRow struct {
	Category  string           `json:"category"`
	Name      string           `json:"name"`
	Operation string           `json:"operation"`
	Current   []OperationCell  `json:"current"`
	Previous  []OperationCell  `json:"previous"`
	YOY       []OperationDelta `json:"yoy"`
}

// OperationHeatmap is the operation-basis heatmap for one brand.
type OperationHeatmap struct {
	Brand        Brand                 `json:"brand"`
	CurrentYear  int                   `json:"current_year"`
	PreviousYear int                   `json:"previous_year"`
	Rows         []OperationHeatmapRow `json:"rows"`
}

// OperationHeatmapFilter selects an operation heatmap.
type OperationHeatmapFilter struct {
	Brand    Brand
	Category string // empty or CategoryAll for every category
}
