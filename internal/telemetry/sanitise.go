package telemetry

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"
)

// Argument names whose values are never recorded
var sensitiveArgNames = []string{"key", "token", "secret", "password", "credential", "auth"}

// Query parameters redacted from recorded URLs
var sensitiveQueryParams = map[string]bool{
	"access_token": true,
	"auth":         true,
	"key":          true,
	"password":     true,
	"secret":       true,
	"token":        true,
}

// SanitiseURL removes credentials and secret-looking query parameters from a URL
func SanitiseURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return "[INVALID_URL]"
	}

	parsed.User = nil
	if parsed.RawQuery != "" {
		query := parsed.Query()
		for k := range query {
			lower := strings.ToLower(k)
			if sensitiveQueryParams[lower] || strings.Contains(lower, "key") || strings.Contains(lower, "token") {
				query.Set(k, "[REDACTED]")
			}
		}
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

// SanitiseArgumentMap returns a copy of tool arguments that is safe to record.
// URLs lose credentials and secret parameters, workbook paths are reduced to the file name,
// and arguments with secret-looking names are redacted.
func SanitiseArgumentMap(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}

	sanitised := make(map[string]any, len(args))
	for key, value := range args {
		lower := strings.ToLower(key)
		str, isString := value.(string)

		switch {
		case isSensitiveName(lower):
			sanitised[key] = "[REDACTED]"
		case isString && lower == "url":
			sanitised[key] = SanitiseURL(str)
		case isString && lower == "path":
			sanitised[key] = filepath.Base(str)
		default:
			sanitised[key] = value
		}
	}
	return sanitised
}

// SanitiseArguments renders SanitiseArgumentMap as JSON for span attributes
func SanitiseArguments(args map[string]any) string {
	sanitised := SanitiseArgumentMap(args)
	if sanitised == nil {
		return "{}"
	}

	data, err := json.Marshal(sanitised)
	if err != nil {
		return `{"error": "failed to serialise arguments"}`
	}
	return string(data)
}

func isSensitiveName(name string) bool {
	for _, s := range sensitiveArgNames {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// TruncateString truncates a string to a maximum length with ellipsis
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
