// Package sheets provides the MCP tools that read Google Sheets spreadsheets.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sirupsen/logrus"
)

// SourceProvider supplies the initialised spreadsheet source, waiting for initialisation if needed
type SourceProvider interface {
	Source(ctx context.Context) (sheetdata.Source, error)
}

// UnavailableError is returned when the spreadsheet service could not be initialised
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("spreadsheet service is not available: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

func newService(ctx context.Context, provider SourceProvider, resolve sheetdata.Resolver, logger *logrus.Logger) (*sheetdata.Service, error) {
	source, err := provider.Source(ctx)
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return sheetdata.NewService(source, resolve, logger), nil
}

// FormatSummary renders a summary as a human-readable text block
func FormatSummary(s *sheetdata.SpreadsheetSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet: %s\n", s.Title)
	fmt.Fprintf(&b, "ID: %s\n", s.ID)
	fmt.Fprintf(&b, "URL: %s\n", s.URL)
	fmt.Fprintf(&b, "Worksheets: %d\n", s.WorksheetCount)
	fmt.Fprintf(&b, "Created: %s\n", orUnknown(s.CreatedTime))
	fmt.Fprintf(&b, "Modified: %s\n", orUnknown(s.ModifiedTime))
	if s.LastModifyingUser != "" {
		fmt.Fprintf(&b, "Last modified by: %s\n", s.LastModifyingUser)
	}

	if len(s.Worksheets) > 0 {
		b.WriteString("\nWorksheets:\n")
		for _, ws := range s.Worksheets {
			dims := sheetdata.Dimensions{Rows: ws.RowCount, Columns: ws.ColumnCount}
			fmt.Fprintf(&b, "- %s (%s)\n", ws.Name, dims)
		}
	}

	return b.String()
}

// FormatSheetDataHeader renders the header that precedes the JSON sheet data
func FormatSheetDataHeader(r *sheetdata.SheetDataResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet: %s\n", r.SpreadsheetTitle)
	fmt.Fprintf(&b, "Worksheet: %s (%s)\n", r.WorksheetMetadata.Title, r.WorksheetMetadata.Dimensions)
	fmt.Fprintf(&b, "Non-empty cells: %d\n", len(r.Cells))
	return b.String()
}

// SummaryResult builds the tool result for a summary: the text block followed by the JSON summary
func SummaryResult(s *sheetdata.SpreadsheetSummary) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(FormatSummary(s)),
			mcp.NewTextContent(string(data)),
		},
	}, nil
}

// SheetDataResult builds the tool result for sheet data: the header followed by the full JSON response
func SheetDataResult(r *sheetdata.SheetDataResponse) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sheet data: %w", err)
	}

	return mcp.NewToolResultText(FormatSheetDataHeader(r) + "\n" + string(data)), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
