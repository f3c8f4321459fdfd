package sheets

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sirupsen/logrus"
)

// SheetDataTool implements get_spreadsheet_sheet_data
type SheetDataTool struct {
	provider SourceProvider
}

// NewSheetDataTool creates the sheet data tool reading through provider
func NewSheetDataTool(provider SourceProvider) *SheetDataTool {
	return &SheetDataTool{provider: provider}
}

// Definition returns the tool's definition for MCP registration
func (t *SheetDataTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_spreadsheet_sheet_data",
		mcp.WithDescription("Read every non-empty cell of one worksheet in a Google Sheets spreadsheet. Each cell carries its 1-based position, raw value, formatted value when it differs, inferred type (string, number, currency, percentage, date, boolean) and hyperlink."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the spreadsheet, e.g. https://docs.google.com/spreadsheets/d/<id>/edit"),
		),
		mcp.WithString("sheet_name",
			mcp.Required(),
			mcp.Description("Exact, case-sensitive worksheet name"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute executes the tool's logic
func (t *SheetDataTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	url, err := tools.StringArg(args, "url")
	if err != nil {
		return nil, err
	}
	sheetName, err := tools.StringArg(args, "sheet_name")
	if err != nil {
		return nil, err
	}

	service, err := newService(ctx, t.provider, nil, logger)
	if err != nil {
		return nil, err
	}

	resp, err := service.FetchSheetData(ctx, url, sheetName)
	if err != nil {
		return nil, err
	}

	return SheetDataResult(resp)
}

// ProvideExtendedInfo provides detailed usage information for the sheet data tool
func (t *SheetDataTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Read the Sales worksheet",
				Arguments: map[string]any{
					"url":        "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit",
					"sheet_name": "Sales",
				},
				ExpectedResult: "A header line followed by JSON with spreadsheet details, worksheet metadata and a cells array in row-major order",
			},
		},
		CommonPatterns: []string{
			"Use get_spreadsheet_summary first to find the exact worksheet name",
			"formattedValue is only present when it differs from rawValue, e.g. '$1,500.00' for 1500",
			"Empty cells are omitted, so positions are not contiguous",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "worksheet 'x' not found",
				Solution: "Names are case-sensitive; use one of the suggested or available worksheet names from the error",
			},
			{
				Problem:  "failed to retrieve sheet data",
				Solution: "Check the service account has access to the spreadsheet and that the API rate limit has not been exceeded",
			},
		},
		ParameterDetails: map[string]string{
			"url":        "Any Google Sheets URL containing the spreadsheet id",
			"sheet_name": "Worksheet (tab) title, matched exactly",
		},
		WhenToUse:    "To read the full contents of a worksheet for analysis",
		WhenNotToUse: "To list worksheets or check dimensions, use get_spreadsheet_summary instead",
	}
}
