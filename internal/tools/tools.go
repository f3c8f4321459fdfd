package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// Tool is the interface that all MCP tool implementations must satisfy
type Tool interface {
	// Definition returns the tool's definition for MCP registration
	Definition() mcp.Tool

	// Execute runs the tool with the shared logger and parsed arguments.
	// A returned error is reported to the caller as an error-flagged tool result.
	Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error)
}

// Gated is implemented by tools that stay disabled until their group is listed in
// ENABLE_ADDITIONAL_TOOLS
type Gated interface {
	EnablementGroup() string
}

// ExtendedHelpProvider is an optional interface that tools can implement to provide
// detailed usage information, examples, and troubleshooting help
type ExtendedHelpProvider interface {
	ProvideExtendedInfo() *ExtendedHelp
}

// ExtendedHelp contains detailed information about a tool's usage
type ExtendedHelp struct {
	Examples         []ToolExample        `json:"examples,omitempty"`
	CommonPatterns   []string             `json:"common_patterns,omitempty"`
	Troubleshooting  []TroubleshootingTip `json:"troubleshooting,omitempty"`
	ParameterDetails map[string]string    `json:"parameter_details,omitempty"`
	WhenToUse        string               `json:"when_to_use,omitempty"`
	WhenNotToUse     string               `json:"when_not_to_use,omitempty"`
}

// ToolExample represents a usage example for a tool
type ToolExample struct {
	Description    string         `json:"description"`
	Arguments      map[string]any `json:"arguments"`
	ExpectedResult string         `json:"expected_result,omitempty"`
}

// TroubleshootingTip represents a troubleshooting tip for a tool
type TroubleshootingTip struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

// StringArg returns a required, non-blank string argument
func StringArg(args map[string]any, name string) (string, error) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", &ArgumentError{Name: name}
	}
	return value, nil
}

// ArgumentError reports a missing or mistyped tool argument
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return "missing or invalid required parameter: " + e.Name
}
