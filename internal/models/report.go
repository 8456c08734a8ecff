package models

type DateRange struct {
	Min      string `json:"min"`
	Max      string `json:"max"`
	SpanDays int    `json:"span_days"`
}

type ValidationStats struct {
	TotalRows          int        `json:"total_rows"`
	TotalColumns       int        `json:"total_columns"`
	Columns            []string   `json:"columns"`
	MissingValuesTotal int        `json:"missing_values_total"`
	DuplicateRows      int        `json:"duplicate_rows"`
	DateRange          *DateRange `json:"date_range,omitempty"`
}

// ValidationReport is the outcome of validating one dataset.
// Valid is true exactly when Errors is empty.
type ValidationReport struct {
	Valid        bool            `json:"valid"`
	Errors       []string        `json:"errors"`
	Warnings     []string        `json:"warnings"`
	Stats        ValidationStats `json:"stats"`
	QualityScore float64         `json:"quality_score"`
}

func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
		Stats:    ValidationStats{Columns: []string{}},
	}
}

func (r *ValidationReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

type CustomerSegments struct {
	HighValue   Totals `json:"high_value"`
	MediumValue Totals `json:"medium_value"`
	LowValue    Totals `json:"low_value"`
}

// TimeAnalysis holds revenue series keyed by ISO date and by year-month.
// Both series are absent when no row has a parseable date.
type TimeAnalysis struct {
	DailyRevenue   Totals `json:"daily_revenue,omitempty"`
	MonthlyRevenue Totals `json:"monthly_revenue,omitempty"`
}

type AnalyticsReport struct {
	TotalRevenue          float64          `json:"total_revenue"`
	TotalQuantity         float64          `json:"total_quantity"`
	TotalOrders           int              `json:"total_orders"`
	AverageOrderValue     float64          `json:"average_order_value"`
	TopProductsByRevenue  Totals           `json:"top_products_by_revenue"`
	TopProductsByQuantity Totals           `json:"top_products_by_quantity"`
	CustomerSegments      CustomerSegments `json:"customer_segments"`
	TimeAnalysis          TimeAnalysis     `json:"time_analysis"`
}

// Analysis pairs a validation report with the analytics computed from the
// same dataset. Analytics is nil when validation failed.
type Analysis struct {
	Validation *ValidationReport `json:"validation"`
	Analytics  *AnalyticsReport  `json:"analytics,omitempty"`
}

type QuickStats struct {
	Filename    string           `json:"filename"`
	FileSize    int64            `json:"file_size"`
	Rows        int              `json:"rows"`
	Columns     int              `json:"columns"`
	ColumnNames []string         `json:"column_names"`
	SampleData  []map[string]any `json:"sample_data"`
}
