package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vinodismyname/buzzlens/config"
	"github.com/vinodismyname/buzzlens/internal/classify"
	"github.com/vinodismyname/buzzlens/internal/insights"
	"github.com/vinodismyname/buzzlens/internal/model"
	"github.com/vinodismyname/buzzlens/internal/query"
	"github.com/vinodismyname/buzzlens/pkg/mcperr"
)

// --- Input / Output Schemas (typed for discovery) ---

// SummaryStatsInput selects the records to summarize.
type SummaryStatsInput struct {
	DatasetID string      `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter    FilterInput `json:"filter,omitempty"`
}

// TrendSeriesInput requests a per-category time series.
type TrendSeriesInput struct {
	DatasetID  string      `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter     FilterInput `json:"filter,omitempty"`
	Metric     string      `json:"metric,omitempty" jsonschema_description:"buzz (sum), search (sum of both channels) or yoy (sum, percent); default buzz" validate:"omitempty,metric"`
	Categories []string    `json:"categories,omitempty" jsonschema_description:"Only these categories, in this order"`
}

// CategoryTrend classifies one category's series.
type CategoryTrend struct {
	Category   string               `json:"category"`
	Points     int                  `json:"points"`
	Classified bool                 `json:"classified" jsonschema_description:"False when the series is too short to fit"`
	Trend      *insights.TrendClass `json:"trend,omitempty"`
}

// TrendSeriesOutput is the series plus charting hints.
type TrendSeriesOutput struct {
	Metric   model.Metric            `json:"metric"`
	Points   []model.AggregatedPoint `json:"points"`
	LogScale bool                    `json:"log_scale" jsonschema_description:"True when max/min of positive values exceeds the log-scale multiplier"`
	Trends   []CategoryTrend         `json:"trends"`
}

// TopKeywordsInput ranks keywords over the latest snapshot.
type TopKeywordsInput struct {
	DatasetID string      `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter    FilterInput `json:"filter,omitempty"`
	Metric    string      `json:"metric,omitempty" jsonschema_description:"buzz, yoy or search; default buzz" validate:"omitempty,metric"`
	N         int         `json:"n,omitempty" jsonschema_description:"How many keywords to return; default 10" validate:"omitempty,min=1,max=500"`
}

// TopKeywordsOutput lists ranked keywords.
type TopKeywordsOutput struct {
	Metric   model.Metric           `json:"metric"`
	Keywords []model.ChartDataPoint `json:"keywords" jsonschema_description:"yoy values are fractions"`
}

// CorrelationMatrixInput selects metrics to correlate.
type CorrelationMatrixInput struct {
	DatasetID string      `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter    FilterInput `json:"filter,omitempty"`
	Metrics   []string    `json:"metrics,omitempty" jsonschema_description:"Numeric fields such as buzz_total, buzz_yoy, search_channel_a; default buzz_total, buzz_yoy, buzz_mom, search_channel_a, search_channel_b" validate:"omitempty,min=2,dive,required"`
	TopPairs  int         `json:"top_pairs,omitempty" jsonschema_description:"Strongest pairs to list; default 5" validate:"omitempty,min=1"`
}

// CorrelationMatrixOutput is the Pearson matrix with banded pairs.
type CorrelationMatrixOutput struct {
	Records int                     `json:"records"`
	Matrix  model.CorrelationMatrix `json:"matrix"`
	Pairs   []insights.Pair         `json:"pairs"`
}

// DetectAnomaliesInput selects the metric to scan.
type DetectAnomaliesInput struct {
	DatasetID string      `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter    FilterInput `json:"filter,omitempty"`
	Metric    string      `json:"metric,omitempty" jsonschema_description:"buzz, yoy or search; default buzz" validate:"omitempty,metric"`
	Limit     int         `json:"limit,omitempty" jsonschema_description:"Max anomalies returned, largest deviation first" validate:"omitempty,min=1"`
}

// DetectAnomaliesOutput lists flagged observations.
type DetectAnomaliesOutput struct {
	Metric    model.Metric          `json:"metric"`
	High      int                   `json:"high"`
	Medium    int                   `json:"medium"`
	Anomalies []model.AnomalyRecord `json:"anomalies"`
	Truncated bool                  `json:"truncated"`
}

// CategoryRollupInput optionally drills into one category.
type CategoryRollupInput struct {
	DatasetID string      `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter    FilterInput `json:"filter,omitempty"`
	Category  string      `json:"category,omitempty" jsonschema_description:"When set, also roll up this category's keywords by dimension"`
	TopN      int         `json:"top_n,omitempty" jsonschema_description:"Categories listed individually in the concentration block (1-10, default 5)" validate:"omitempty,min=1,max=10"`
}

// CategoryRollupOutput carries category metrics and concentration.
type CategoryRollupOutput struct {
	Categories    []model.CategoryMetrics        `json:"categories"`
	Subcategories []model.SubcategoryMetrics     `json:"subcategories,omitempty"`
	Concentration *insights.ConcentrationResult `json:"concentration,omitempty"`
}

// PeriodInput names one (year, month) snapshot.
type PeriodInput struct {
	Year  int    `json:"year" validate:"required"`
	Month string `json:"month" jsonschema_description:"7, 7月, Jul or July" validate:"required,month_token"`
}

// MixShiftInput compares share of voice between two periods.
type MixShiftInput struct {
	DatasetID   string       `json:"dataset_id" jsonschema_description:"Dataset ID from import_workbook" validate:"required"`
	Filter      FilterInput  `json:"filter,omitempty"`
	Baseline    *PeriodInput `json:"baseline,omitempty" jsonschema_description:"Defaults to the second-latest period" validate:"omitempty"`
	Current     *PeriodInput `json:"current,omitempty" jsonschema_description:"Defaults to the latest period" validate:"omitempty"`
	TopN        int          `json:"top_n,omitempty" jsonschema_description:"Categories listed individually (default 5)" validate:"omitempty,min=1"`
	ThresholdPP float64      `json:"threshold_pp,omitempty" jsonschema_description:"Highlight moves of at least this many percentage points (default 5)" validate:"omitempty,gt=0"`
}

// ClassifyKeywordsInput lists keywords to classify, or a dataset whose
// latest-snapshot keywords should be classified.
type ClassifyKeywordsInput struct {
	Keywords  []string `json:"keywords,omitempty" validate:"required_without=DatasetID"`
	DatasetID string   `json:"dataset_id,omitempty"`
}

// ClassifyKeywordsOutput maps keywords to dimensions.
type ClassifyKeywordsOutput struct {
	Dimensions map[string]classify.Dimension `json:"dimensions"`
	Counts     map[classify.Dimension]int    `json:"counts"`
}

func (h *Handlers) registerAnalysisTools(s *server.MCPServer) {
	h.add(s, mcp.NewTool(
		ToolSummaryStats,
		mcp.WithDescription("Headline totals for the filtered records: total buzz, average YoY (percent, over every filtered row), total search and distinct keyword count from the latest snapshot."),
		mcp.WithInputSchema[SummaryStatsInput](),
		mcp.WithOutputSchema[query.Summary](),
	), mcp.NewTypedToolHandler(h.SummaryStats))

	h.add(s, mcp.NewTool(
		ToolTrendSeries,
		mcp.WithDescription("Monthly series per category for buzz, search or yoy, sorted chronologically, with a log-scale hint and an up/down/stable classification per category."),
		mcp.WithInputSchema[TrendSeriesInput](),
		mcp.WithOutputSchema[TrendSeriesOutput](),
	), mcp.NewTypedToolHandler(h.TrendSeries))

	h.add(s, mcp.NewTool(
		ToolTopKeywords,
		mcp.WithDescription("Rank keywords by buzz, yoy or search using each keyword's latest observation."),
		mcp.WithInputSchema[TopKeywordsInput](),
		mcp.WithOutputSchema[TopKeywordsOutput](),
	), mcp.NewTypedToolHandler(h.TopKeywords))

	h.add(s, mcp.NewTool(
		ToolCorrelationMatrix,
		mcp.WithDescription("Pearson correlation matrix over numeric fields with strength bands (strong > 0.7, medium > 0.4) and the strongest pairs."),
		mcp.WithInputSchema[CorrelationMatrixInput](),
		mcp.WithOutputSchema[CorrelationMatrixOutput](),
	), mcp.NewTypedToolHandler(h.CorrelationMatrix))

	h.add(s, mcp.NewTool(
		ToolDetectAnomalies,
		mcp.WithDescription("Flag observations that deviate from the same keyword's other observations by more than 2 sigma (medium) or 3 sigma (high). Keywords with fewer than 3 observations are skipped. When the other observations are flat, sigma is floored at a fraction of their mean (BUZZLENS_ANOMALY_SIGMA_FLOOR, default 0.1)."),
		mcp.WithInputSchema[DetectAnomaliesInput](),
		mcp.WithOutputSchema[DetectAnomaliesOutput](),
	), mcp.NewTypedToolHandler(h.DetectAnomalies))

	h.add(s, mcp.NewTool(
		ToolCategoryRollup,
		mcp.WithDescription("Per-category total buzz, average YoY, keyword count, share of voice and growth momentum, plus an HHI concentration band. With category set, also rolls that category up by keyword dimension (scene, function, material, fit, design, other)."),
		mcp.WithInputSchema[CategoryRollupInput](),
		mcp.WithOutputSchema[CategoryRollupOutput](),
	), mcp.NewTypedToolHandler(h.CategoryRollup))

	h.add(s, mcp.NewTool(
		ToolMixShift,
		mcp.WithDescription("Compare each category's share of buzz between two periods in percentage points. Without periods, compares the two latest. Errors include INSUFFICIENT_DATA when fewer than two periods exist."),
		mcp.WithInputSchema[MixShiftInput](),
		mcp.WithOutputSchema[insights.MixShiftResult](),
	), mcp.NewTypedToolHandler(h.MixShift))

	h.add(s, mcp.NewTool(
		ToolClassifyKeywords,
		mcp.WithDescription("Assign keywords to the first matching dimension in priority order scene, function, material, fit, design; unmatched keywords are other."),
		mcp.WithInputSchema[ClassifyKeywordsInput](),
		mcp.WithOutputSchema[ClassifyKeywordsOutput](),
	), mcp.NewTypedToolHandler(h.ClassifyKeywords))
}

// SummaryStats handles summary_stats.
func (h *Handlers) SummaryStats(ctx context.Context, req mcp.CallToolRequest, in SummaryStatsInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	out := query.Summarize(records)
	summary := fmt.Sprintf("records=%d keywords=%d total_buzz=%.0f avg_yoy=%.2f%% total_search=%.0f",
		out.RecordCount, out.KeywordCount, out.TotalBuzz, out.AvgYoY, out.TotalSearch)
	return h.result(out, summary), nil
}

// TrendSeries handles trend_series.
func (h *Handlers) TrendSeries(ctx context.Context, req mcp.CallToolRequest, in TrendSeriesInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	metric := metricOf(in.Metric)
	out := TrendSeriesOutput{Metric: metric, Points: query.Trend(records, metric, in.Categories)}

	var values []float64
	var cats []string
	seen := map[string]bool{}
	for _, p := range out.Points {
		values = append(values, p.Value)
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	out.LogScale = h.deps.Thresholds.RecommendLogScale(values)

	var parts []string
	for _, c := range cats {
		series := query.Series(out.Points, c)
		ct := CategoryTrend{Category: c, Points: len(series)}
		if tc, ok := h.deps.Thresholds.ClassifyTrend(series); ok {
			ct.Classified = true
			ct.Trend = &tc
			parts = append(parts, fmt.Sprintf("%s:%s", c, tc.Direction))
		}
		out.Trends = append(out.Trends, ct)
	}
	summary := fmt.Sprintf("metric=%s points=%d categories=%d log_scale=%v %s", metric, len(out.Points), len(cats), out.LogScale, strings.Join(parts, " "))
	return h.result(out, strings.TrimSpace(summary)), nil
}

// TopKeywords handles top_keywords.
func (h *Handlers) TopKeywords(ctx context.Context, req mcp.CallToolRequest, in TopKeywordsInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	n := in.N
	if n == 0 {
		n = config.DefaultTopN
	}
	metric := metricOf(in.Metric)
	out := TopKeywordsOutput{Metric: metric, Keywords: query.TopN(query.Latest(records), metric, n)}

	names := make([]string, 0, len(out.Keywords))
	for _, k := range out.Keywords {
		names = append(names, k.Keyword)
	}
	return h.result(out, fmt.Sprintf("metric=%s top=%d: %s", metric, len(out.Keywords), strings.Join(names, ", "))), nil
}

// CorrelationMatrix handles correlation_matrix.
func (h *Handlers) CorrelationMatrix(ctx context.Context, req mcp.CallToolRequest, in CorrelationMatrixInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	fields := insights.DefaultCorrelationMetrics
	if len(in.Metrics) > 0 {
		fields = make([]model.Field, 0, len(in.Metrics))
		for _, m := range in.Metrics {
			f := model.Field(strings.ToLower(strings.TrimSpace(m)))
			if !f.Numeric() {
				return mcperr.Wrapf(mcperr.Validation, "metrics: %q is not a numeric field", m), nil
			}
			fields = append(fields, f)
		}
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	if len(records) < 2 {
		return mcperr.New(mcperr.InsufficientData, "correlation needs at least 2 records"), nil
	}
	top := in.TopPairs
	if top == 0 {
		top = 5
	}
	cm := insights.Correlate(records, fields)
	out := CorrelationMatrixOutput{Records: len(records), Matrix: cm, Pairs: h.deps.Thresholds.TopPairs(cm, top)}

	var parts []string
	for _, p := range out.Pairs {
		parts = append(parts, fmt.Sprintf("%s~%s r=%.2f (%s %s)", p.A, p.B, p.R, p.Strength, p.Direction))
	}
	return h.result(out, fmt.Sprintf("records=%d fields=%d %s", len(records), len(fields), strings.Join(parts, "; "))), nil
}

// DetectAnomalies handles detect_anomalies.
func (h *Handlers) DetectAnomalies(ctx context.Context, req mcp.CallToolRequest, in DetectAnomaliesInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	metric := metricOf(in.Metric)
	all := h.deps.Thresholds.DetectAnomalies(records, metric)
	out := DetectAnomaliesOutput{Metric: metric, Anomalies: all}
	for _, a := range all {
		if a.Severity == model.SeverityHigh {
			out.High++
		} else {
			out.Medium++
		}
	}
	if in.Limit > 0 && len(all) > in.Limit {
		out.Anomalies = all[:in.Limit]
		out.Truncated = true
	}
	summary := fmt.Sprintf("metric=%s anomalies=%d high=%d medium=%d", metric, len(all), out.High, out.Medium)
	if len(out.Anomalies) > 0 {
		a := out.Anomalies[0]
		summary += fmt.Sprintf(" largest=%s %d-%s %.1fσ", a.Keyword, a.Year, a.Month, a.Deviation)
	}
	return h.result(out, summary), nil
}

// CategoryRollup handles category_rollup.
func (h *Handlers) CategoryRollup(ctx context.Context, req mcp.CallToolRequest, in CategoryRollupInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	out := CategoryRollupOutput{Categories: insights.CategoryRollup(records)}
	if cr, ok := insights.Concentration(out.Categories, in.TopN); ok {
		out.Concentration = &cr
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		cls := h.deps.Classifier
		out.Subcategories = insights.SubcategoryRollup(records, c, func(r model.Record) string {
			return string(cls.Classify(r.Keyword))
		})
	}

	summary := fmt.Sprintf("categories=%d", len(out.Categories))
	if out.Concentration != nil {
		summary += fmt.Sprintf(" HHI=%.3f band=%s", out.Concentration.HHI, out.Concentration.Band)
	}
	if len(out.Categories) > 0 {
		top := out.Categories[0]
		summary += fmt.Sprintf(" leader=%s share=%.1f%%", top.Category, top.ShareOfVoice)
	}
	if len(out.Subcategories) > 0 {
		summary += fmt.Sprintf(" %s dimensions=%d", in.Category, len(out.Subcategories))
	}
	return h.result(out, summary), nil
}

// MixShift handles mix_shift.
func (h *Handlers) MixShift(ctx context.Context, req mcp.CallToolRequest, in MixShiftInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	opt := insights.MixOptions{TopN: in.TopN, ThresholdPP: in.ThresholdPP}
	if in.Baseline != nil {
		opt.Baseline = insights.Period{Year: in.Baseline.Year, Month: h.deps.Months.Normalize(in.Baseline.Month)}
	}
	if in.Current != nil {
		opt.Current = insights.Period{Year: in.Current.Year, Month: h.deps.Months.Normalize(in.Current.Month)}
	}
	out, err := insights.MixShift(records, opt)
	if err != nil {
		return toolError(ctx, err), nil
	}

	var moved []string
	for _, g := range out.Groups {
		if g.Highlight {
			moved = append(moved, fmt.Sprintf("%s %+.1fpp", g.Name, g.PPChange))
		}
	}
	summary := fmt.Sprintf("periods=[%s→%s] groups=%d highlighted=%d %s", out.Baseline, out.Current, len(out.Groups), len(moved), strings.Join(moved, ", "))
	return h.result(out, strings.TrimSpace(summary)), nil
}

// ClassifyKeywords handles classify_keywords.
func (h *Handlers) ClassifyKeywords(ctx context.Context, req mcp.CallToolRequest, in ClassifyKeywordsInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	keywords := in.Keywords
	if len(keywords) == 0 {
		ds, err := h.deps.Datasets.Get(in.DatasetID)
		if err != nil {
			return toolError(ctx, err), nil
		}
		keywords = query.Latest(ds.Records).Keywords
	}
	out := ClassifyKeywordsOutput{
		Dimensions: h.deps.Classifier.ClassifyAll(keywords),
		Counts:     map[classify.Dimension]int{},
	}
	for _, d := range out.Dimensions {
		out.Counts[d]++
	}

	dims := make([]string, 0, len(out.Counts))
	for d, n := range out.Counts {
		dims = append(dims, fmt.Sprintf("%s=%d", d, n))
	}
	sort.Strings(dims)
	return h.result(out, fmt.Sprintf("keywords=%d %s", len(out.Dimensions), strings.Join(dims, " "))), nil
}
