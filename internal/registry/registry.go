package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sirupsen/logrus"
)

var (
	mu sync.RWMutex

	// toolRegistry is a map of tool names to tool implementations
	toolRegistry = make(map[string]tools.Tool)

	// disabledTools is a set of tool names to disable
	disabledTools = make(map[string]bool)

	// enabledGroups is the normalised ENABLE_ADDITIONAL_TOOLS list
	enabledGroups = make(map[string]bool)
	enableAll     bool

	// logger is the shared logger instance
	logger *logrus.Logger
)

// Init resets the registry with the given disabled tool names and enabled additional tool groups
func Init(l *logrus.Logger, disabled, enabled []string) {
	mu.Lock()
	defer mu.Unlock()

	logger = l
	toolRegistry = make(map[string]tools.Tool)
	disabledTools = make(map[string]bool)
	enabledGroups = make(map[string]bool)
	enableAll = false

	for _, tool := range disabled {
		tool = strings.TrimSpace(tool)
		if tool != "" {
			disabledTools[tool] = true
			if logger != nil {
				logger.WithField("tool", tool).Debug("Tool disabled")
			}
		}
	}

	for _, group := range enabled {
		group = normalise(group)
		if group == "all" {
			enableAll = true
		}
		if group != "" {
			enabledGroups[group] = true
		}
	}
}

// normalise lowercases a name and replaces underscores with hyphens
func normalise(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}

// enablementGroup returns the group a tool must be enabled under, or "" if it is on by default
func enablementGroup(tool tools.Tool) string {
	if gated, ok := tool.(tools.Gated); ok {
		return gated.EnablementGroup()
	}
	return ""
}

func isGroupEnabled(group string) bool {
	return enableAll || enabledGroups[normalise(group)]
}

// shouldRegister applies, in order: DISABLED_TOOLS (highest priority), then the tool's
// enablement group against ENABLE_ADDITIONAL_TOOLS. Caller must hold mu.
func shouldRegister(tool tools.Tool) bool {
	name := tool.Definition().Name

	if disabledTools[name] {
		if logger != nil {
			logger.WithField("tool", name).Debug("Tool disabled via configuration")
		}
		return false
	}

	if group := enablementGroup(tool); group != "" {
		enabled := isGroupEnabled(group)
		if logger != nil {
			logger.WithFields(logrus.Fields{"tool": name, "group": group, "enabled": enabled}).Debug("Tool requires enablement")
		}
		return enabled
	}

	return true
}

// Register adds a tool implementation to the registry if it should be registered
func Register(tool tools.Tool) {
	mu.Lock()
	defer mu.Unlock()

	toolName := tool.Definition().Name
	if !shouldRegister(tool) {
		if logger != nil {
			logger.WithField("tool", toolName).Debug("Tool not registered (disabled or requires enablement)")
		}
		return
	}

	toolRegistry[toolName] = tool
	if logger != nil {
		logger.WithField("tool", toolName).Debug("Tool successfully registered")
	}
}

// GetTool retrieves a registered tool by name
func GetTool(name string) (tools.Tool, bool) {
	mu.RLock()
	defer mu.RUnlock()

	tool, ok := toolRegistry[name]
	return tool, ok
}

// GetEnabledTools returns all registered tools
func GetEnabledTools() map[string]tools.Tool {
	mu.RLock()
	defer mu.RUnlock()

	out := make(map[string]tools.Tool, len(toolRegistry))
	for name, tool := range toolRegistry {
		out[name] = tool
	}
	return out
}

// GetEnabledToolNames returns a sorted list of registered tool names
func GetEnabledToolNames() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetToolNamesWithExtendedHelp returns a sorted list of registered tool names that provide extended help
func GetToolNamesWithExtendedHelp() []string {
	mu.RLock()
	defer mu.RUnlock()

	var names []string
	for name, tool := range toolRegistry {
		if _, ok := tool.(tools.ExtendedHelpProvider); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
