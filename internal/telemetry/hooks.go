// Package telemetry turns mcp-go lifecycle callbacks into zerolog events.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// NewHooks builds server hooks that log sessions, tool calls and errors.
// Tool call durations are measured between the before and after hooks,
// keyed by request ID.
func NewHooks(logger zerolog.Logger) *server.Hooks {
	hooks := &server.Hooks{}
	var started sync.Map

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session registered")
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session unregistered")
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		logger.Debug().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		started.Store(id, time.Now())
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		evt := logger.Info()
		if res != nil && res.IsError {
			evt = logger.Warn()
		}
		if v, ok := started.LoadAndDelete(id); ok {
			evt = evt.Dur("duration", time.Since(v.(time.Time)))
		}
		evt.Str("tool", req.Params.Name).Bool("is_error", res != nil && res.IsError).Msg("tool call served")
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		started.Delete(id)
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}
