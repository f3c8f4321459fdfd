package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata/sheetdatatest"
	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0"

type staticProvider struct {
	source sheetdata.Source
	err    error
	calls  int
}

func (p *staticProvider) Source(ctx context.Context) (sheetdata.Source, error) {
	p.calls++
	return p.source, p.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func textAt(t *testing.T, result *mcp.CallToolResult, i int) string {
	t.Helper()
	require.Greater(t, len(result.Content), i)
	text, ok := result.Content[i].(mcp.TextContent)
	require.True(t, ok, "content %d is %T", i, result.Content[i])
	return text.Text
}

func sampleSource() *sheetdatatest.Source {
	grid := sheetdatatest.NewMapGrid(2, 2).
		Set(0, 0, sheetdata.StringValue("Region"), "Region").
		Set(0, 1, sheetdata.StringValue("Revenue"), "Revenue").
		Set(1, 0, sheetdata.StringValue("North"), "North").
		Set(1, 1, sheetdata.NumberValue(1500), "$1,500.00")
	return &sheetdatatest.Source{
		Spreadsheet: sheetdatatest.SampleSpreadsheet("abc123"),
		Grids:       map[string]sheetdata.Grid{"Sales": grid},
	}
}

func TestSummaryTool_Execute(t *testing.T) {
	source := sampleSource()
	tool := NewSummaryTool(&staticProvider{source: source})

	result, err := tool.Execute(context.Background(), quietLogger(), map[string]any{"url": sheetURL})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := textAt(t, result, 0)
	assert.Contains(t, text, "Spreadsheet: Quarterly Report")
	assert.Contains(t, text, "ID: abc123")
	assert.Contains(t, text, "Worksheets: 2")
	assert.Contains(t, text, "Created: 2024-01-02T03:04:05Z")
	assert.Contains(t, text, "- Sales (1000 × 26)")
	assert.Contains(t, text, "- Notes (50 × 5)")

	var summary sheetdata.SpreadsheetSummary
	require.NoError(t, json.Unmarshal([]byte(textAt(t, result, 1)), &summary))
	assert.Equal(t, 2, summary.WorksheetCount)

	assert.Equal(t, 0, source.GridCalls())
}

func TestSummaryTool_Errors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		tool := NewSummaryTool(&staticProvider{source: sampleSource()})
		_, err := tool.Execute(context.Background(), quietLogger(), map[string]any{})
		var argErr *tools.ArgumentError
		assert.ErrorAs(t, err, &argErr)
	})

	t.Run("malformed url", func(t *testing.T) {
		tool := NewSummaryTool(&staticProvider{source: sampleSource()})
		_, err := tool.Execute(context.Background(), quietLogger(), map[string]any{"url": "not a url"})
		var malformed *sheetdata.MalformedURLError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("upstream failure is generalised", func(t *testing.T) {
		source := sampleSource()
		source.SpreadsheetErr = errors.New("googleapi: Error 403: secret internal detail")
		tool := NewSummaryTool(&staticProvider{source: source})

		_, err := tool.Execute(context.Background(), quietLogger(), map[string]any{"url": sheetURL})
		require.ErrorIs(t, err, sheetdata.ErrSummaryFailed)
		assert.NotContains(t, err.Error(), "secret")
	})

	t.Run("initialisation failure", func(t *testing.T) {
		tool := NewSummaryTool(&staticProvider{err: errors.New("no credentials file configured")})
		_, err := tool.Execute(context.Background(), quietLogger(), map[string]any{"url": sheetURL})

		var unavailable *UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Contains(t, err.Error(), "no credentials file configured")
	})
}

func TestSheetDataTool_Execute(t *testing.T) {
	tool := NewSheetDataTool(&staticProvider{source: sampleSource()})

	result, err := tool.Execute(context.Background(), quietLogger(), map[string]any{
		"url":        sheetURL,
		"sheet_name": "Sales",
	})
	require.NoError(t, err)

	text := textAt(t, result, 0)
	header, body, found := strings.Cut(text, "\n\n")
	require.True(t, found)
	assert.Contains(t, header, "Spreadsheet: Quarterly Report")
	assert.Contains(t, header, "Worksheet: Sales (1000 × 26)")
	assert.Contains(t, header, "Non-empty cells: 4")

	var resp struct {
		SpreadsheetID string `json:"spreadsheetId"`
		Cells         []struct {
			Position       sheetdata.Position `json:"position"`
			RawValue       any                `json:"rawValue"`
			FormattedValue *string            `json:"formattedValue"`
			InferredType   string             `json:"inferredType"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "abc123", resp.SpreadsheetID)
	require.Len(t, resp.Cells, 4)
	assert.Equal(t, float64(1500), resp.Cells[3].RawValue)
	require.NotNil(t, resp.Cells[3].FormattedValue)
	assert.Equal(t, "$1,500.00", *resp.Cells[3].FormattedValue)
	assert.Equal(t, "currency", resp.Cells[3].InferredType)
	assert.Nil(t, resp.Cells[0].FormattedValue)
}

func TestSheetDataTool_WorksheetNotFound(t *testing.T) {
	source := sampleSource()
	tool := NewSheetDataTool(&staticProvider{source: source})

	_, err := tool.Execute(context.Background(), quietLogger(), map[string]any{
		"url":        sheetURL,
		"sheet_name": "sales",
	})
	var notFound *sheetdata.WorksheetNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "'Sales'")
	assert.Equal(t, 0, source.GridCalls())
}

func TestSheetDataTool_MissingSheetName(t *testing.T) {
	tool := NewSheetDataTool(&staticProvider{source: sampleSource()})
	_, err := tool.Execute(context.Background(), quietLogger(), map[string]any{"url": sheetURL})

	var argErr *tools.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "sheet_name", argErr.Name)
}

func TestFormatSummary_UnknownTimes(t *testing.T) {
	text := FormatSummary(&sheetdata.SpreadsheetSummary{Title: "Empty"})
	assert.Contains(t, text, "Created: unknown")
	assert.Contains(t, text, "Modified: unknown")
	assert.NotContains(t, text, "Last modified by")
	assert.NotContains(t, text, "\nWorksheets:\n")
}

func TestDefinitions(t *testing.T) {
	summary := NewSummaryTool(nil).Definition()
	assert.Equal(t, "get_spreadsheet_summary", summary.Name)
	assert.Equal(t, []string{"url"}, summary.InputSchema.Required)

	data := NewSheetDataTool(nil).Definition()
	assert.Equal(t, "get_spreadsheet_sheet_data", data.Name)
	assert.ElementsMatch(t, []string{"url", "sheet_name"}, data.InputSchema.Required)

	var _ tools.ExtendedHelpProvider = NewSummaryTool(nil)
	var _ tools.ExtendedHelpProvider = NewSheetDataTool(nil)
}
