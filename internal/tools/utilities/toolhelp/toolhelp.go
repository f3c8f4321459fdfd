package toolhelp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/registry"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sammcj/mcp-gsheets/internal/workbook"
	"github.com/sirupsen/logrus"
)

// ToolHelpTool renders usage notes for the other registered tools
type ToolHelpTool struct{}

// NewToolHelpTool creates the get_tool_help tool
func NewToolHelpTool() *ToolHelpTool {
	return &ToolHelpTool{}
}

// Definition returns the tool's definition for MCP registration
func (t *ToolHelpTool) Definition() mcp.Tool {
	names := registry.GetToolNamesWithExtendedHelp()

	description := "Get parameter notes, examples and troubleshooting for the spreadsheet tools, e.g. after an unexpected error."
	if len(names) == 0 {
		description = "No tools currently provide extended help."
		names = []string{}
	}

	return mcp.NewTool(
		"get_tool_help",
		mcp.WithDescription(description),
		mcp.WithString("tool_name",
			mcp.Required(),
			mcp.Description("Name of the tool to get help for"),
			mcp.Enum(names...),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute renders help for the named tool as plain text
func (t *ToolHelpTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	toolName, err := tools.StringArg(args, "tool_name")
	if err != nil {
		return nil, err
	}

	available := strings.Join(registry.GetToolNamesWithExtendedHelp(), ", ")
	tool, ok := registry.GetTool(toolName)
	if !ok {
		return nil, fmt.Errorf("tool '%s' not found or disabled; tools with extended help: %s", toolName, available)
	}
	provider, ok := tool.(tools.ExtendedHelpProvider)
	if !ok || provider.ProvideExtendedInfo() == nil {
		return nil, fmt.Errorf("tool '%s' does not provide extended help; tools with extended help: %s", toolName, available)
	}

	logger.WithField("tool_name", toolName).Debug("Rendering tool help")
	return mcp.NewToolResultText(render(tool.Definition(), provider.ProvideExtendedInfo())), nil
}

func render(def mcp.Tool, help *tools.ExtendedHelp) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", def.Name, def.Description)

	if params := orderedParams(def.InputSchema); len(params) > 0 {
		b.WriteString("\n## Parameters\n")
		for _, name := range params {
			writeParam(&b, name, def.InputSchema, help.ParameterDetails[name])
		}
	}

	if help.WhenToUse != "" {
		fmt.Fprintf(&b, "\n## When to use\n%s\n", help.WhenToUse)
	}
	if help.WhenNotToUse != "" {
		fmt.Fprintf(&b, "\n## When not to use\n%s\n", help.WhenNotToUse)
	}

	if len(help.Examples) > 0 {
		b.WriteString("\n## Examples\n")
		for _, ex := range help.Examples {
			fmt.Fprintf(&b, "- %s\n", ex.Description)
			if encoded, err := json.Marshal(ex.Arguments); err == nil {
				fmt.Fprintf(&b, "  arguments: %s\n", encoded)
			}
			if ex.ExpectedResult != "" {
				fmt.Fprintf(&b, "  returns: %s\n", ex.ExpectedResult)
			}
		}
	}

	if len(help.CommonPatterns) > 0 {
		b.WriteString("\n## Common patterns\n")
		for _, p := range help.CommonPatterns {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	if len(help.Troubleshooting) > 0 {
		b.WriteString("\n## Troubleshooting\n")
		for _, tip := range help.Troubleshooting {
			fmt.Fprintf(&b, "- %s\n  %s\n", tip.Problem, tip.Solution)
		}
	}

	return b.String()
}

// orderedParams lists required parameters first, then the rest, each group sorted
func orderedParams(schema mcp.ToolInputSchema) []string {
	var required, optional []string
	for name := range schema.Properties {
		if slices.Contains(schema.Required, name) {
			required = append(required, name)
		} else {
			optional = append(optional, name)
		}
	}
	slices.Sort(required)
	slices.Sort(optional)
	return append(required, optional...)
}

func writeParam(b *strings.Builder, name string, schema mcp.ToolInputSchema, detail string) {
	prop, _ := schema.Properties[name].(map[string]any)
	kind, _ := prop["type"].(string)
	desc, _ := prop["description"].(string)

	requirement := "optional"
	if slices.Contains(schema.Required, name) {
		requirement = "required"
	}
	fmt.Fprintf(b, "- %s (%s, %s): %s\n", name, kind, requirement, desc)
	if detail != "" {
		fmt.Fprintf(b, "  %s\n", detail)
	}
	for _, note := range paramNotes(name) {
		fmt.Fprintf(b, "  %s\n", note)
	}
}

// paramNotes adds the accepted input forms for parameters shared across the spreadsheet tools
func paramNotes(name string) []string {
	switch name {
	case "url":
		notes := []string{"Accepted forms, tried in order:"}
		for _, form := range sheetdata.URLForms {
			notes = append(notes, "  "+form)
		}
		return notes
	case "path":
		return []string{
			"Supported extensions: " + strings.Join(workbook.SupportedExtensions(), ", "),
			fmt.Sprintf("Relative paths resolve under %s; paths containing '..' are rejected.", workbook.FilesPathEnvVar),
		}
	case "sheet_name":
		return []string{"Matched exactly, including case."}
	default:
		return nil
	}
}
