// Package cli runs the registered tools directly from the command line, bypassing the
// MCP server. Useful for checking credentials and sheet access before wiring up a client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-gsheets/internal/registry"
	"github.com/sirupsen/logrus"
)

// OutputFormat controls how tool results are rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

var (
	headingColour = color.New(color.Bold)
	nameColour    = color.New(color.FgCyan)
	errorColour   = color.New(color.FgRed)
)

// Runner executes CLI commands against the tool registry.
type Runner struct {
	logger *logrus.Logger
	output OutputFormat
	out    io.Writer
}

// NewRunner creates a Runner writing to out in the given format.
func NewRunner(logger *logrus.Logger, output OutputFormat, out io.Writer) *Runner {
	return &Runner{logger: logger, output: output, out: out}
}

// ListTools prints all enabled tools with their descriptions.
func (r *Runner) ListTools() error {
	names := registry.GetEnabledToolNames()

	if r.output == OutputJSON {
		type entry struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		out := make([]entry, 0, len(names))
		for _, name := range names {
			tool, _ := registry.GetTool(name)
			out = append(out, entry{Name: name, Description: tool.Definition().Description})
		}
		return r.writeJSON(out)
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		tool, _ := registry.GetTool(name)
		fmt.Fprintf(w, "%s\t%s\n", nameColour.Sprint(name), firstSentence(tool.Definition().Description))
	}
	return w.Flush()
}

// HelpTool prints the parameters of a single tool.
func (r *Runner) HelpTool(name string) error {
	def, err := lookup(name)
	if err != nil {
		return err
	}

	if r.output == OutputJSON {
		return r.writeJSON(def)
	}

	headingColour.Fprintf(r.out, "Tool: %s\n\n", def.Name)
	fmt.Fprintf(r.out, "%s\n\n", def.Description)

	props := def.InputSchema.Properties
	if len(props) == 0 {
		fmt.Fprintln(r.out, "No parameters.")
		return nil
	}

	headingColour.Fprintln(r.out, "Parameters:")
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	slices.Sort(names)

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, p := range names {
		pm, _ := props[p].(map[string]any)
		pType, _ := pm["type"].(string)
		pDesc, _ := pm["description"].(string)
		if slices.Contains(def.InputSchema.Required, p) {
			pDesc += " (required)"
		}
		fmt.Fprintf(w, "  --%s\t%s\t%s\n", toFlagName(p), pType, pDesc)
	}
	return w.Flush()
}

// RunTool executes a tool by name. args are --key=value or --key value flags, or a JSON object.
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	def, err := lookup(name)
	if err != nil {
		return err
	}
	tool, _ := registry.GetTool(def.Name)

	params, err := parseArgs(args, def)
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	result, err := tool.Execute(ctx, r.logger, params)
	if err != nil {
		errorColour.Fprintf(r.out, "Error: %v\n", err)
		return fmt.Errorf("tool error: %w", err)
	}

	return r.renderResult(result)
}

// lookup finds a tool by name, accepting kebab-case for snake_case names
func lookup(name string) (mcp.Tool, error) {
	for _, candidate := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if tool, ok := registry.GetTool(candidate); ok {
			return tool.Definition(), nil
		}
	}
	return mcp.Tool{}, fmt.Errorf("unknown tool: %s (run 'mcp-gsheets cli list' to see available tools)", name)
}

// parseArgs converts CLI arguments into tool arguments
func parseArgs(args []string, def mcp.Tool) (map[string]any, error) {
	params := make(map[string]any)
	flagToParam := make(map[string]string, len(def.InputSchema.Properties))
	types := make(map[string]string, len(def.InputSchema.Properties))
	for name, prop := range def.InputSchema.Properties {
		flagToParam[toFlagName(name)] = name
		if pm, ok := prop.(map[string]any); ok {
			types[name], _ = pm["type"].(string)
		}
	}
	resolve := func(flag string) string {
		if p, ok := flagToParam[flag]; ok {
			return p
		}
		return strings.ReplaceAll(flag, "-", "_")
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case strings.HasPrefix(arg, "{"):
			var obj map[string]any
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}
			// Flags take precedence over JSON values
			for k, v := range obj {
				if _, exists := params[k]; !exists {
					params[k] = v
				}
			}
		case strings.HasPrefix(arg, "--"):
			flag := strings.TrimPrefix(arg, "--")
			if name, raw, found := strings.Cut(flag, "="); found {
				p := resolve(name)
				params[p] = coerceValue(raw, types[p])
				continue
			}
			p := resolve(flag)
			if types[p] == "boolean" {
				params[p] = true
				continue
			}
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", flag)
			}
			params[p] = coerceValue(args[i], types[p])
		default:
			return nil, fmt.Errorf("unexpected argument: %s (use --key=value flags or pass a JSON object)", arg)
		}
	}

	return params, nil
}

// coerceValue converts a flag value to the JSON Schema type of its parameter
func coerceValue(raw, schemaType string) any {
	switch schemaType {
	case "number", "integer":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// renderResult writes a CallToolResult to the terminal
func (r *Runner) renderResult(result *mcp.CallToolResult) error {
	if result == nil {
		return nil
	}

	if r.output == OutputJSON {
		if err := r.writeJSON(result); err != nil {
			return err
		}
	} else {
		for _, content := range result.Content {
			text, ok := content.(mcp.TextContent)
			if !ok {
				continue
			}
			if result.IsError {
				errorColour.Fprintln(r.out, text.Text)
			} else {
				fmt.Fprintln(r.out, text.Text)
			}
		}
	}

	if result.IsError {
		return fmt.Errorf("tool returned an error")
	}
	return nil
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstSentence(s string) string {
	if before, _, found := strings.Cut(s, ". "); found {
		return before + "."
	}
	return s
}

// toFlagName converts snake_case to kebab-case
func toFlagName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}
