// Package xlsx provides opt-in MCP tools that read local Excel workbooks with the same
// extraction rules as the spreadsheet tools.
package xlsx

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sammcj/mcp-gsheets/internal/tools/sheets"
	"github.com/sammcj/mcp-gsheets/internal/workbook"
	"github.com/sirupsen/logrus"
)

// EnablementGroup is the ENABLE_ADDITIONAL_TOOLS entry that turns these tools on
const EnablementGroup = "workbook"

type base struct {
	basePath string
}

func (b base) EnablementGroup() string { return EnablementGroup }

func (b base) service(logger *logrus.Logger) *sheetdata.Service {
	return sheetdata.NewService(workbook.NewSource(logger), workbook.Resolver(b.basePath), logger)
}

// SummaryTool implements get_workbook_summary
type SummaryTool struct{ base }

// NewSummaryTool creates the workbook summary tool; relative paths resolve under basePath
func NewSummaryTool(basePath string) *SummaryTool {
	return &SummaryTool{base{basePath: basePath}}
}

// Definition returns the tool's definition for MCP registration
func (t *SummaryTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_workbook_summary",
		mcp.WithDescription("Get an overview of a local Excel workbook (.xlsx): document properties and every worksheet with its used dimensions."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path, or path relative to WORKBOOK_FILES_PATH"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute executes the tool's logic
func (t *SummaryTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	path, err := tools.StringArg(args, "path")
	if err != nil {
		return nil, err
	}

	summary, err := t.service(logger).Summarize(ctx, path)
	if err != nil {
		return nil, err
	}
	return sheets.SummaryResult(summary)
}

// SheetDataTool implements get_workbook_sheet_data
type SheetDataTool struct{ base }

// NewSheetDataTool creates the workbook sheet data tool; relative paths resolve under basePath
func NewSheetDataTool(basePath string) *SheetDataTool {
	return &SheetDataTool{base{basePath: basePath}}
}

// Definition returns the tool's definition for MCP registration
func (t *SheetDataTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_workbook_sheet_data",
		mcp.WithDescription("Read every non-empty cell of one worksheet in a local Excel workbook (.xlsx), with raw value, formatted value, inferred type and hyperlink."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path, or path relative to WORKBOOK_FILES_PATH"),
		),
		mcp.WithString("sheet_name",
			mcp.Required(),
			mcp.Description("Exact, case-sensitive worksheet name"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute executes the tool's logic
func (t *SheetDataTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	path, err := tools.StringArg(args, "path")
	if err != nil {
		return nil, err
	}
	sheetName, err := tools.StringArg(args, "sheet_name")
	if err != nil {
		return nil, err
	}

	resp, err := t.service(logger).FetchSheetData(ctx, path, sheetName)
	if err != nil {
		return nil, err
	}
	return sheets.SheetDataResult(resp)
}

// ProvideExtendedInfo provides detailed usage information for the workbook sheet data tool
func (t *SheetDataTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Read a worksheet from a workbook under WORKBOOK_FILES_PATH",
				Arguments: map[string]any{
					"path":       "reports/q1.xlsx",
					"sheet_name": "Sales",
				},
				ExpectedResult: "Header plus JSON cells; spreadsheetId is the resolved absolute path",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "path traversal is not allowed",
				Solution: "Paths may not contain '..' segments; use an absolute path or one below WORKBOOK_FILES_PATH",
			},
			{
				Problem:  "unsupported file type",
				Solution: "Only .xlsx, .xlsm, .xltx and .xltm files can be read; convert legacy .xls files first",
			},
		},
		ParameterDetails: map[string]string{
			"path":       "Workbook location; relative paths are joined to WORKBOOK_FILES_PATH (default: working directory)",
			"sheet_name": "Worksheet title, matched exactly",
		},
		WhenToUse:    "When the spreadsheet is a local Excel file rather than a Google Sheet",
		WhenNotToUse: "For Google Sheets URLs, use get_spreadsheet_sheet_data",
	}
}
