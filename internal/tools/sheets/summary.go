package sheets

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sirupsen/logrus"
)

// SummaryTool implements get_spreadsheet_summary
type SummaryTool struct {
	provider SourceProvider
}

// NewSummaryTool creates the summary tool reading through provider
func NewSummaryTool(provider SourceProvider) *SummaryTool {
	return &SummaryTool{provider: provider}
}

// Definition returns the tool's definition for MCP registration
func (t *SummaryTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_spreadsheet_summary",
		mcp.WithDescription("Get an overview of a Google Sheets spreadsheet: title, timestamps and every worksheet with its dimensions. Does not read cell data."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the spreadsheet, e.g. https://docs.google.com/spreadsheets/d/<id>/edit"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute executes the tool's logic
func (t *SummaryTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	url, err := tools.StringArg(args, "url")
	if err != nil {
		return nil, err
	}

	service, err := newService(ctx, t.provider, nil, logger)
	if err != nil {
		return nil, err
	}

	summary, err := service.Summarize(ctx, url)
	if err != nil {
		return nil, err
	}

	return SummaryResult(summary)
}

// ProvideExtendedInfo provides detailed usage information for the summary tool
func (t *SummaryTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "List the worksheets of a spreadsheet",
				Arguments: map[string]any{
					"url": "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0",
				},
				ExpectedResult: "Title, id, url, worksheet count, timestamps and a 'name (rows × cols)' line per worksheet, followed by the same data as JSON",
			},
		},
		CommonPatterns: []string{
			"Call this first to learn the exact worksheet names, then call get_spreadsheet_sheet_data",
			"URLs of the form /spreadsheets/d/<id>, /d/<id> and ?id=<id> are all accepted",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "failed to retrieve spreadsheet summary",
				Solution: "Share the spreadsheet with the service account's client_email, or check the spreadsheet still exists",
			},
			{
				Problem:  "malformed spreadsheet URL",
				Solution: "Pass the full URL from the browser address bar rather than a title or partial id",
			},
			{
				Problem:  "spreadsheet service is not available",
				Solution: "Set GOOGLE_APPLICATION_CREDENTIALS to a valid service account key file and restart the server",
			},
		},
		ParameterDetails: map[string]string{
			"url": "Any Google Sheets URL containing the spreadsheet id",
		},
		WhenToUse:    "To discover the structure of a spreadsheet before reading cell data",
		WhenNotToUse: "When you already know the worksheet name and need its contents",
	}
}
