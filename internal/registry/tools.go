package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/buzzlens/internal/classify"
	"github.com/vinodismyname/buzzlens/internal/datasets"
	"github.com/vinodismyname/buzzlens/internal/export"
	"github.com/vinodismyname/buzzlens/internal/ingest"
	"github.com/vinodismyname/buzzlens/internal/insights"
	"github.com/vinodismyname/buzzlens/internal/model"
	"github.com/vinodismyname/buzzlens/internal/months"
	"github.com/vinodismyname/buzzlens/internal/query"
	"github.com/vinodismyname/buzzlens/internal/runtime"
	"github.com/vinodismyname/buzzlens/internal/security"
	"github.com/vinodismyname/buzzlens/pkg/mcperr"
	"github.com/vinodismyname/buzzlens/pkg/validation"
)

// Tool names.
const (
	ToolImportWorkbook    = "import_workbook"
	ToolCloseDataset      = "close_dataset"
	ToolQueryRecords      = "query_records"
	ToolSummaryStats      = "summary_stats"
	ToolTrendSeries       = "trend_series"
	ToolTopKeywords       = "top_keywords"
	ToolCorrelationMatrix = "correlation_matrix"
	ToolDetectAnomalies   = "detect_anomalies"
	ToolCategoryRollup    = "category_rollup"
	ToolMixShift          = "mix_shift"
	ToolClassifyKeywords  = "classify_keywords"
	ToolExportRecords     = "export_records"
)

// ExportPathValidator vets export targets (security.Manager).
type ExportPathValidator interface {
	ValidateExportPath(path string) (string, error)
}

// Deps are the collaborators tool handlers run against.
type Deps struct {
	Datasets   *datasets.Manager
	Exports    ExportPathValidator
	Limits     runtime.Limits
	Thresholds insights.Thresholds
	Months     *months.Normalizer
	Classifier *classify.Classifier
}

// Handlers implements every tool over a shared set of dependencies.
type Handlers struct {
	deps Deps
	reg  *Registry
}

// NewHandlers fills unset dependencies with defaults.
func NewHandlers(reg *Registry, d Deps) *Handlers {
	if d.Months == nil {
		d.Months = months.New(nil)
	}
	if d.Classifier == nil {
		d.Classifier = classify.New(nil)
	}
	if d.Limits.MaxPageSize == 0 {
		d.Limits = runtime.NewLimits(0, 0)
	}
	if d.Thresholds == (insights.Thresholds{}) {
		d.Thresholds = insights.DefaultThresholds()
	}
	if reg == nil {
		reg = New()
	}
	return &Handlers{deps: d, reg: reg}
}

// FilterInput is the shared record filter accepted by analysis tools.
type FilterInput struct {
	Categories []string `json:"categories,omitempty" jsonschema_description:"Keep only these categories (empty = all)"`
	Year       *int     `json:"year,omitempty" jsonschema_description:"Keep only this year (unset = all)"`
	Months     []string `json:"months,omitempty" jsonschema_description:"Keep only these months; accepts 7, 07, 7月, Jul or July" validate:"omitempty,dive,month_token"`
	Quadrants  []string `json:"quadrants,omitempty" jsonschema_description:"Keep only these quadrant labels (empty = all)"`
	Keyword    string   `json:"keyword,omitempty" jsonschema_description:"Case-insensitive keyword substring (blank = all)"`
}

// criteria canonicalizes month tokens so filters match imported records.
func (h *Handlers) criteria(f FilterInput) model.FilterCriteria {
	c := model.FilterCriteria{
		Categories: f.Categories,
		Year:       f.Year,
		Quadrants:  f.Quadrants,
		Keyword:    f.Keyword,
	}
	for _, m := range f.Months {
		c.Months = append(c.Months, h.deps.Months.Normalize(m))
	}
	return c
}

// filtered resolves the dataset and applies the filter.
func (h *Handlers) filtered(id string, f FilterInput) ([]model.Record, error) {
	ds, err := h.deps.Datasets.Get(id)
	if err != nil {
		return nil, err
	}
	return query.Filter(ds.Records, h.criteria(f)), nil
}

// result pairs structured output with a budgeted text summary.
func (h *Handlers) result(out any, summary string) *mcp.CallToolResult {
	summary = h.reg.Summarize(summary)
	res := mcp.NewToolResultStructured(out, summary)
	res.Content = []mcp.Content{mcp.NewTextContent(summary)}
	return res
}

// toolError maps package errors to catalog codes.
func toolError(ctx context.Context, err error) *mcp.CallToolResult {
	zerolog.Ctx(ctx).Debug().Err(err).Msg("tool error")
	switch {
	case errors.Is(err, datasets.ErrDatasetNotFound):
		return mcperr.New(mcperr.InvalidDataset, "")
	case errors.Is(err, security.ErrNotAllowed):
		return mcperr.Wrapf(mcperr.PermissionDenied, "%v", err)
	case errors.Is(err, security.ErrUnsupportedExtension), errors.Is(err, export.ErrUnknownFormat):
		return mcperr.Wrapf(mcperr.UnsupportedFormat, "%v", err)
	case errors.Is(err, security.ErrNotFound):
		return mcperr.Wrapf(mcperr.NotFound, "%v", err)
	case errors.Is(err, security.ErrExists):
		return mcperr.Wrapf(mcperr.ExportFailed, "%v", err)
	case errors.Is(err, ingest.ErrMissingHeader):
		return mcperr.New(mcperr.MissingHeader, "")
	case errors.Is(err, ingest.ErrUnreadable):
		if mcperr.IsInvalidSheet(err) {
			return mcperr.Wrapf(mcperr.InvalidSheet, "%v", err)
		}
		return mcperr.Wrapf(mcperr.ImportFailed, "%v", err)
	case errors.Is(err, insights.ErrNotEnoughPeriods):
		return mcperr.Wrapf(mcperr.InsufficientData, "%v", err)
	case errors.Is(err, context.DeadlineExceeded):
		return mcperr.New(mcperr.Timeout, "")
	case errors.Is(err, context.Canceled):
		return mcperr.New(mcperr.Timeout, "operation canceled")
	}
	return mcperr.Wrapf(mcperr.AnalysisFailed, "%v", err)
}

// invalid runs validator tags over in and returns an error result when any fail.
func invalid(in any) *mcp.CallToolResult {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg)
	}
	return nil
}

// metricOf lowercases a validated metric name, defaulting to buzz.
func metricOf(s string) model.Metric {
	if s = strings.ToLower(strings.TrimSpace(s)); s == "" {
		return model.MetricBuzz
	}
	return model.Metric(s)
}

// RegisterTools defines every tool and wires it to h.
func RegisterTools(s *server.MCPServer, reg *Registry, d Deps) *Handlers {
	h := NewHandlers(reg, d)
	h.registerDatasetTools(s)
	h.registerAnalysisTools(s)
	return h
}

func (h *Handlers) add(s *server.MCPServer, tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.AddTool(tool, handler)
	h.reg.Register(tool)
}
