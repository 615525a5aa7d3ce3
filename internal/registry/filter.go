package registry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// exportTools write files and stay hidden unless exports are enabled.
var exportTools = map[string]struct{}{
	ToolExportRecords: {},
}

// ExportToolFilter conditionally hides file-writing tools from discovery.
// Enable with BUZZLENS_ENABLE_EXPORT=true.
type ExportToolFilter struct {
	allowExport bool
}

// NewExportToolFilter constructs a filter from the loaded config flag.
func NewExportToolFilter(allowExport bool) *ExportToolFilter {
	return &ExportToolFilter{allowExport: allowExport}
}

// FilterTools implements server tool filtering semantics.
func (f *ExportToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowExport {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if _, ok := exportTools[t.Name]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}
