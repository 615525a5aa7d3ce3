package mcperr

import (
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNew_DefaultMessageAndGuidance(t *testing.T) {
	got := text(t, New(InvalidDataset, ""))
	require.True(t, strings.HasPrefix(got, "INVALID_DATASET: dataset not found or expired"))
	require.Contains(t, got, "nextSteps: Re-import the workbook")
}

func TestWrapf_OverridesMessage(t *testing.T) {
	got := text(t, Wrapf(LimitExceeded, "top_n %d exceeds %d", 900, 500))
	require.True(t, strings.HasPrefix(got, "LIMIT_EXCEEDED: top_n 900 exceeds 500 | nextSteps:"))
}

func TestFromText(t *testing.T) {
	require.True(t, strings.HasPrefix(text(t, FromText("VALIDATION: metric is required")), "VALIDATION: metric is required |"))
	require.Equal(t, "CUSTOM: boom", text(t, FromText("CUSTOM: boom")))
	require.True(t, strings.HasPrefix(text(t, FromText("")), "VALIDATION: invalid inputs"))
}

func TestIsInvalidSheet(t *testing.T) {
	require.True(t, IsInvalidSheet(errors.New("sheet Data does not exist")))
	require.False(t, IsInvalidSheet(errors.New("permission denied")))
	require.False(t, IsInvalidSheet(nil))
}
