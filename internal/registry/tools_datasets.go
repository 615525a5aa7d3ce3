package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/buzzlens/internal/chunk"
	"github.com/vinodismyname/buzzlens/internal/datasets"
	"github.com/vinodismyname/buzzlens/internal/export"
	"github.com/vinodismyname/buzzlens/internal/model"
	"github.com/vinodismyname/buzzlens/internal/query"
	"github.com/vinodismyname/buzzlens/pkg/mcperr"
	"github.com/vinodismyname/buzzlens/pkg/pagination"
)

// --- Input / Output Schemas (typed for discovery) ---

// ImportWorkbookInput defines parameters for importing a workbook.
type ImportWorkbookInput struct {
	Path  string `json:"path" jsonschema_description:"Absolute or allowed path to a listening workbook (.xlsx, .xlsm, .xltx, .xltm)" validate:"required,filepath_ext"`
	Sheet string `json:"sheet,omitempty" jsonschema_description:"Sheet name; defaults to the first sheet"`
}

// ImportWorkbookOutput documents the response fields for import_workbook.
type ImportWorkbookOutput struct {
	DatasetID string   `json:"dataset_id" jsonschema_description:"Server-assigned dataset ID used by every analysis tool"`
	Sheet     string   `json:"sheet"`
	Records   int      `json:"records" jsonschema_description:"Number of records parsed"`
	Keywords  int      `json:"keywords" jsonschema_description:"Distinct keywords in the latest snapshot"`
	Skipped   int      `json:"skipped" jsonschema_description:"Blank rows skipped"`
	Warnings  []string `json:"warnings,omitempty" jsonschema_description:"Header and row warnings; the import still succeeds"`
	ExpiresAt string   `json:"expires_at" jsonschema_description:"Idle deadline (RFC3339); any use extends it"`
}

// CloseDatasetInput defines parameters for closing a dataset.
type CloseDatasetInput struct {
	DatasetID string `json:"dataset_id" jsonschema_description:"Dataset ID to close" validate:"required"`
}

// CloseDatasetOutput reports whether the dataset was released.
type CloseDatasetOutput struct {
	DatasetID string `json:"dataset_id"`
	Success   bool   `json:"success"`
}

// QueryRecordsInput pages through filtered records.
type QueryRecordsInput struct {
	DatasetID string      `json:"dataset_id,omitempty" jsonschema_description:"Dataset ID (omit when resuming with cursor)" validate:"required_without=Cursor"`
	Filter    FilterInput `json:"filter,omitempty"`
	Cursor    string      `json:"cursor,omitempty" jsonschema_description:"Opaque cursor from a previous page; carries dataset and filter" validate:"omitempty,cursor"`
	PageSize  int         `json:"page_size,omitempty" jsonschema_description:"Records per page (bounded by server limits)" validate:"omitempty,min=1"`
}

// PageMeta captures paging metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// QueryRecordsOutput is one page of records.
type QueryRecordsOutput struct {
	DatasetID string         `json:"dataset_id"`
	Records   []model.Record `json:"records" jsonschema_description:"Ratio fields (buzz_yoy, buzz_mom) are fractions, e.g. 0.15"`
	Meta      PageMeta       `json:"meta"`
}

// ExportRecordsInput writes filtered records to a new file.
type ExportRecordsInput struct {
	DatasetID string      `json:"dataset_id" jsonschema_description:"Dataset ID" validate:"required"`
	Filter    FilterInput `json:"filter,omitempty"`
	Path      string      `json:"path" jsonschema_description:"New .xlsx or .csv file inside an allowed directory; existing files are never overwritten" validate:"required,export_ext"`
	Format    string      `json:"format,omitempty" jsonschema_description:"xlsx or csv; defaults to the path extension" validate:"export_format"`
}

// ExportRecordsOutput reports what was written.
type ExportRecordsOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Rows   int    `json:"rows"`
}

func (h *Handlers) registerDatasetTools(s *server.MCPServer) {
	h.add(s, mcp.NewTool(
		ToolImportWorkbook,
		mcp.WithDescription("Import a social-listening workbook (annotation on row 1, headers on row 2, data from row 3) and return a dataset ID. Headers are matched against Chinese and English aliases; unknown columns, bad numbers and unknown months are reported as warnings rather than failing the import. Errors include VALIDATION, PERMISSION_DENIED, IMPORT_FAILED, MISSING_HEADER and BUSY_RESOURCE when too many datasets are open."),
		mcp.WithInputSchema[ImportWorkbookInput](),
		mcp.WithOutputSchema[ImportWorkbookOutput](),
	), mcp.NewTypedToolHandler(h.ImportWorkbook))

	h.add(s, mcp.NewTool(
		ToolCloseDataset,
		mcp.WithDescription("Release a dataset and its capacity slot. Idle datasets are also released automatically after the configured TTL."),
		mcp.WithInputSchema[CloseDatasetInput](),
		mcp.WithOutputSchema[CloseDatasetOutput](),
	), mcp.NewTypedToolHandler(h.CloseDataset))

	h.add(s, mcp.NewTool(
		ToolQueryRecords,
		mcp.WithDescription("List filtered records page by page. Pass the returned nextCursor alone to fetch the next page; the cursor remembers dataset and filter."),
		mcp.WithInputSchema[QueryRecordsInput](),
		mcp.WithOutputSchema[QueryRecordsOutput](),
	), mcp.NewTypedToolHandler(h.QueryRecords))

	h.add(s, mcp.NewTool(
		ToolExportRecords,
		mcp.WithDescription("Write filtered records to a new .xlsx or .csv file in canonical column order, with buzz_yoy and buzz_mom converted to percent. Reports progress when the request carries a progress token."),
		mcp.WithInputSchema[ExportRecordsInput](),
		mcp.WithOutputSchema[ExportRecordsOutput](),
	), mcp.NewTypedToolHandler(h.ExportRecords))
}

// ImportWorkbook handles import_workbook.
func (h *Handlers) ImportWorkbook(ctx context.Context, req mcp.CallToolRequest, in ImportWorkbookInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	ds, err := h.deps.Datasets.Import(ctx, in.Path, strings.TrimSpace(in.Sheet))
	if err != nil {
		if errors.Is(err, datasets.ErrBusy) {
			return mcperr.Wrapf(mcperr.BusyResource, "open dataset limit reached (max=%d)", h.deps.Limits.MaxOpenDatasets), nil
		}
		return toolError(ctx, err), nil
	}
	out := ImportWorkbookOutput{
		DatasetID: ds.ID,
		Sheet:     ds.Sheet,
		Records:   len(ds.Records),
		Keywords:  len(query.LatestPerKeyword(ds.Records)),
		Skipped:   ds.Skipped,
		Warnings:  ds.Warnings,
		ExpiresAt: ds.ExpiresAt().UTC().Format(time.RFC3339),
	}
	summary := fmt.Sprintf("dataset=%s sheet=%s records=%d keywords=%d warnings=%d", out.DatasetID, out.Sheet, out.Records, out.Keywords, len(out.Warnings))
	if len(out.Warnings) > 0 {
		summary += " | " + strings.Join(out.Warnings, "; ")
	}
	return h.result(out, summary), nil
}

// CloseDataset handles close_dataset.
func (h *Handlers) CloseDataset(ctx context.Context, req mcp.CallToolRequest, in CloseDatasetInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	if err := h.deps.Datasets.Remove(in.DatasetID); err != nil {
		return toolError(ctx, err), nil
	}
	out := CloseDatasetOutput{DatasetID: in.DatasetID, Success: true}
	return h.result(out, "closed dataset="+in.DatasetID), nil
}

// QueryRecords handles query_records.
func (h *Handlers) QueryRecords(ctx context.Context, req mcp.CallToolRequest, in QueryRecordsInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	id, filter, off := in.DatasetID, in.Filter, 0
	pageSize := h.deps.Limits.ClampPageSize(in.PageSize)
	if in.Cursor != "" {
		cur, err := pagination.DecodeCursor(in.Cursor)
		if err != nil {
			return mcperr.Wrapf(mcperr.CursorInvalid, "%v", err), nil
		}
		if id != "" && id != cur.Did {
			return mcperr.New(mcperr.CursorInvalid, "cursor belongs to a different dataset"), nil
		}
		id, off, pageSize = cur.Did, cur.Off, h.deps.Limits.ClampPageSize(cur.Ps)
		filter = FilterInput{}
		if len(cur.F) > 0 {
			if err := json.Unmarshal(cur.F, &filter); err != nil {
				return mcperr.Wrapf(mcperr.CursorInvalid, "filter: %v", err), nil
			}
		}
	}

	records, err := h.filtered(id, filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	start, end := pagination.Page(len(records), off, pageSize)
	out := QueryRecordsOutput{
		DatasetID: id,
		Records:   records[start:end],
		Meta:      PageMeta{Total: len(records), Returned: end - start},
	}
	if end < len(records) {
		raw, err := json.Marshal(filter)
		if err != nil {
			return mcperr.Wrapf(mcperr.CursorBuildFailed, "%v", err), nil
		}
		next, err := pagination.EncodeCursor(pagination.Cursor{
			Did: id,
			Off: pagination.NextOffset(start, end-start),
			Ps:  pageSize,
			F:   raw,
			Fh:  pagination.HashFilter(raw),
		})
		if err != nil {
			return mcperr.Wrapf(mcperr.CursorBuildFailed, "%v", err), nil
		}
		out.Meta.Truncated = true
		out.Meta.NextCursor = next
	}
	summary := fmt.Sprintf("dataset=%s total=%d returned=%d offset=%d truncated=%v", id, out.Meta.Total, out.Meta.Returned, start, out.Meta.Truncated)
	return h.result(out, summary), nil
}

// ExportRecords handles export_records.
func (h *Handlers) ExportRecords(ctx context.Context, req mcp.CallToolRequest, in ExportRecordsInput) (*mcp.CallToolResult, error) {
	if res := invalid(in); res != nil {
		return res, nil
	}
	if h.deps.Exports == nil {
		return mcperr.New(mcperr.PermissionDenied, "exports are not configured"), nil
	}
	ext := export.Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(in.Path)), "."))
	format := export.Format(strings.ToLower(strings.TrimSpace(in.Format)))
	switch {
	case format == "":
		format = ext
	case ext != "" && ext != format:
		return mcperr.Wrapf(mcperr.Validation, "format %q does not match path extension %q", format, ext), nil
	}
	records, err := h.filtered(in.DatasetID, in.Filter)
	if err != nil {
		return toolError(ctx, err), nil
	}
	target, err := h.deps.Exports.ValidateExportPath(in.Path)
	if err != nil {
		return toolError(ctx, err), nil
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return mcperr.Wrapf(mcperr.ExportFailed, "%v", err), nil
	}
	werr := export.Write(ctx, f, format, records, progressNotifier(ctx, req), export.WithChunkSize(h.deps.Limits.ChunkSize))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(target)
		if errors.Is(werr, export.ErrUnknownFormat) || errors.Is(werr, context.DeadlineExceeded) {
			return toolError(ctx, werr), nil
		}
		return mcperr.Wrapf(mcperr.ExportFailed, "%v", werr), nil
	}
	zerolog.Ctx(ctx).Info().Str("path", target).Int("rows", len(records)).Msg("records exported")

	out := ExportRecordsOutput{Path: target, Format: string(format), Rows: len(records)}
	return h.result(out, fmt.Sprintf("exported rows=%d format=%s path=%s", out.Rows, out.Format, out.Path)), nil
}

// progressNotifier forwards chunk progress as MCP progress notifications
// when the caller supplied a progress token.
func progressNotifier(ctx context.Context, req mcp.CallToolRequest) chunk.ProgressFunc {
	if req.Params.Meta == nil || req.Params.Meta.ProgressToken == nil {
		return nil
	}
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return nil
	}
	token := req.Params.Meta.ProgressToken
	return func(p chunk.Progress) {
		err := srv.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      p.Done,
			"total":         p.Total,
		})
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("progress notification dropped")
		}
	}
}
