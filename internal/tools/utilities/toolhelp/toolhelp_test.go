package toolhelp

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/registry"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/tools/sheets"
	"github.com/sammcj/mcp-gsheets/internal/workbook"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *logrus.Logger {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry.Init(logger, nil, nil)
	registry.Register(sheets.NewSummaryTool(nil))
	registry.Register(sheets.NewSheetDataTool(nil))
	registry.Register(NewToolHelpTool())
	return logger
}

func TestDefinition_ListsToolsWithHelp(t *testing.T) {
	setup(t)

	def := NewToolHelpTool().Definition()
	prop, ok := def.InputSchema.Properties["tool_name"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"get_spreadsheet_sheet_data", "get_spreadsheet_summary"}, prop["enum"])
}

func helpText(t *testing.T, logger *logrus.Logger, name string) string {
	t.Helper()
	result, err := NewToolHelpTool().Execute(context.Background(), logger, map[string]any{"tool_name": name})
	require.NoError(t, err)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestExecute_RendersDefinitionAndHelp(t *testing.T) {
	logger := setup(t)
	text := helpText(t, logger, "get_spreadsheet_sheet_data")

	def := sheets.NewSheetDataTool(nil).Definition()
	assert.True(t, strings.HasPrefix(text, "# get_spreadsheet_sheet_data\n\n"+def.Description))
	assert.Contains(t, text, "- sheet_name (string, required):")
	assert.Contains(t, text, "- url (string, required):")
	assert.Contains(t, text, "Matched exactly, including case.")

	help := sheets.NewSheetDataTool(nil).ProvideExtendedInfo()
	assert.Contains(t, text, help.ParameterDetails["sheet_name"])
	for _, ex := range help.Examples {
		assert.Contains(t, text, ex.Description)
	}
	for _, tip := range help.Troubleshooting {
		assert.Contains(t, text, tip.Problem)
	}
}

func TestExecute_ListsURLFormsInOrder(t *testing.T) {
	logger := setup(t)
	text := helpText(t, logger, "get_spreadsheet_summary")

	last := -1
	for _, form := range sheetdata.URLForms {
		idx := strings.Index(text, form)
		require.GreaterOrEqual(t, idx, 0, form)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestParamNotes_Path(t *testing.T) {
	notes := strings.Join(paramNotes("path"), "\n")
	for _, ext := range workbook.SupportedExtensions() {
		assert.Contains(t, notes, ext)
	}
	assert.Contains(t, notes, workbook.FilesPathEnvVar)
	assert.Nil(t, paramNotes("tool_name"))
}

func TestOrderedParams(t *testing.T) {
	schema := mcp.ToolInputSchema{
		Properties: map[string]any{"b": map[string]any{}, "a": map[string]any{}, "z": map[string]any{}},
		Required:   []string{"z"},
	}
	assert.Equal(t, []string{"z", "a", "b"}, orderedParams(schema))
}

func TestExecute_UnknownTool(t *testing.T) {
	logger := setup(t)

	_, err := NewToolHelpTool().Execute(context.Background(), logger, map[string]any{"tool_name": "get_tool_help"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not provide extended help")

	_, err = NewToolHelpTool().Execute(context.Background(), logger, map[string]any{"tool_name": "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
