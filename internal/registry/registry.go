package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
	"github.com/vinodismyname/buzzlens/config"
)

// ToolProvider resolves MCP tool definitions and associates runtime metadata.
type ToolProvider interface {
	Tools(context.Context) ([]mcp.Tool, error)
}

// Registry maintains tool definitions and the token budget applied to the
// text summaries tools return next to structured output.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]mcp.Tool
	model  string
	budget int
}

// New constructs an empty Registry ready for tool population.
func New() *Registry {
	return &Registry{
		tools:  map[string]mcp.Tool{},
		model:  config.DefaultSummaryModel,
		budget: config.DefaultSummaryTokenBudget,
	}
}

// WithSummaryBudget sets the tokenizer model name and token budget for summaries.
func (r *Registry) WithSummaryBudget(model string, tokens int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if model != "" {
		r.model = model
	}
	if tokens > 0 {
		r.budget = tokens
	}
}

// Register stores a tool definition for discovery.
func (r *Registry) Register(tool mcp.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[tool.Name] = tool
}

// Get returns a tool by name when present.
func (r *Registry) Get(name string) (mcp.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns a stable-sorted list of registered tool definitions.
func (r *Registry) Tools(ctx context.Context) ([]mcp.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]mcp.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	return tools, nil
}

// ModelContextSize exposes the configured model's context window when available.
func (r *Registry) ModelContextSize(modelName string) int {
	return llms.GetModelContextSize(modelName)
}

// Summarize trims text at word boundaries until it fits the token budget.
// A trimmed summary ends with " …".
func (r *Registry) Summarize(text string) string {
	r.mu.RLock()
	model, budget := r.model, r.budget
	r.mu.RUnlock()

	if llms.CountTokens(model, text) <= budget {
		return text
	}
	words := strings.Fields(text)
	lo, hi := 0, len(words)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if llms.CountTokens(model, strings.Join(words[:mid], " ")+" …") <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.Join(words[:lo], " ") + " …"
}
