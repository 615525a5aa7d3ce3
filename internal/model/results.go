package model

// FilterCriteria narrows a record set. Every empty set or unset field means
// "no constraint", never "match nothing".
type FilterCriteria struct {
	Categories []string `json:"categories,omitempty" jsonschema_description:"Keep only these categories (empty = all)"`
	Year       *int     `json:"year,omitempty" jsonschema_description:"Keep only this year (unset = all)"`
	Months     []Month  `json:"months,omitempty" jsonschema_description:"Keep only these months, e.g. Jan or 1月 (empty = all)"`
	Quadrants  []string `json:"quadrants,omitempty" jsonschema_description:"Keep only these quadrant labels (empty = all)"`
	Keyword    string   `json:"keyword,omitempty" jsonschema_description:"Case-insensitive keyword substring (blank = all)"`
}

// Metric selects a ranking or series value.
type Metric string

const (
	MetricBuzz   Metric = "buzz"
	MetricYoY    Metric = "yoy"
	MetricSearch Metric = "search"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == MetricBuzz || m == MetricYoY || m == MetricSearch
}

// Of reads the metric from a record. YoY is returned as the stored fraction.
func (m Metric) Of(r Record) float64 {
	switch m {
	case MetricYoY:
		return r.BuzzYoY
	case MetricSearch:
		return r.Search()
	default:
		return r.BuzzTotal
	}
}

// AggregatedPoint is one trend-series sample.
type AggregatedPoint struct {
	Year     int     `json:"year"`
	Month    Month   `json:"month"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// ChartDataPoint is a ranking/scatter point derived from exactly one record.
type ChartDataPoint struct {
	Keyword  string  `json:"keyword"`
	Buzz     float64 `json:"buzz"`
	YoY      float64 `json:"yoy"`
	Search   float64 `json:"search"`
	Quadrant string  `json:"quadrant"`
	Category string  `json:"category"`
}

// PointOf projects a record to a chart point.
func PointOf(r Record) ChartDataPoint {
	return ChartDataPoint{
		Keyword:  r.Keyword,
		Buzz:     r.BuzzTotal,
		YoY:      r.BuzzYoY,
		Search:   r.Search(),
		Quadrant: r.Quadrant,
		Category: r.Category,
	}
}

// CategoryMetrics is a per-category rollup.
type CategoryMetrics struct {
	Category       string  `json:"category"`
	TotalBuzz      float64 `json:"total_buzz"`
	AvgYoY         float64 `json:"avg_yoy"`
	KeywordCount   int     `json:"keyword_count"`
	ShareOfVoice   float64 `json:"share_of_voice"`
	GrowthMomentum float64 `json:"growth_momentum"`
}

// SubcategoryMetrics is a rollup scoped to one category.
type SubcategoryMetrics struct {
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory"`
	TotalBuzz       float64 `json:"total_buzz"`
	AvgYoY          float64 `json:"avg_yoy"`
	KeywordCount    int     `json:"keyword_count"`
	ShareInCategory float64 `json:"share_in_category"`
	GrowthMomentum  float64 `json:"growth_momentum"`
}

// CorrelationMatrix is a symmetric Pearson matrix with a unit diagonal.
type CorrelationMatrix struct {
	Labels []string    `json:"labels"`
	Matrix [][]float64 `json:"matrix"`
}

// Severity grades an anomaly.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// AnomalyRecord flags one observation that deviates from its keyword's history.
type AnomalyRecord struct {
	Keyword   string   `json:"keyword"`
	Year      int      `json:"year"`
	Month     Month    `json:"month"`
	Metric    Metric   `json:"metric"`
	Value     float64  `json:"value"`
	Deviation float64  `json:"deviation"`
	Severity  Severity `json:"severity"`
}
