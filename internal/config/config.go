package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sammcj/mcp-gsheets/internal/gsheets"
	"github.com/sammcj/mcp-gsheets/internal/workbook"
	"gopkg.in/yaml.v3"
)

const (
	// AppDirName is the directory under the user's home holding config and logs
	AppDirName = ".mcp-gsheets"

	ConfigPathEnvVar = "MCP_GSHEETS_CONFIG"
)

// Config is the resolved server configuration
type Config struct {
	CredentialsPath   string        `yaml:"credentials_path"`
	LogLevel          string        `yaml:"log_level"`
	LogToolErrors     bool          `yaml:"log_tool_errors"`
	RateLimit         int           `yaml:"rate_limit"` // requests per minute
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	DisabledTools     []string      `yaml:"disabled_tools"`
	EnabledTools      []string      `yaml:"enable_additional_tools"`
	WorkbookFilesPath string        `yaml:"workbook_files_path"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		RateLimit:   gsheets.DefaultRateLimit,
		HTTPTimeout: gsheets.DefaultHTTPTimeout,
	}
}

// Load resolves configuration from, in increasing precedence: defaults, the YAML file at
// configPath (or MCP_GSHEETS_CONFIG, or ~/.mcp-gsheets/config.yaml), a .env file in the
// working directory, and the process environment. A missing YAML or .env file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	path, explicit := configPath, configPath != ""
	if path == "" {
		path, explicit = os.Getenv(ConfigPathEnvVar), os.Getenv(ConfigPathEnvVar) != ""
	}
	if path == "" {
		if dir, err := AppDir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	// godotenv never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	path, err := ExpandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := firstEnv("GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_SERVICE_ACCOUNT_PATH"); v != "" {
		c.CredentialsPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_TOOL_ERRORS"); v != "" {
		c.LogToolErrors = v == "true"
	}
	if v := os.Getenv(gsheets.RateLimitEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", gsheets.RateLimitEnvVar, v)
		}
		c.RateLimit = n
	}
	if v := os.Getenv(gsheets.HTTPTimeoutEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %q", gsheets.HTTPTimeoutEnvVar, v)
		}
		c.HTTPTimeout = d
	}
	if v := os.Getenv("DISABLED_TOOLS"); v != "" {
		c.DisabledTools = splitList(v)
	}
	if v := os.Getenv("ENABLE_ADDITIONAL_TOOLS"); v != "" {
		c.EnabledTools = splitList(v)
	}
	if v := os.Getenv(workbook.FilesPathEnvVar); v != "" {
		c.WorkbookFilesPath = v
	}

	if c.CredentialsPath != "" {
		expanded, err := ExpandHome(c.CredentialsPath)
		if err != nil {
			return err
		}
		c.CredentialsPath = expanded
	}
	if c.WorkbookFilesPath != "" {
		expanded, err := ExpandHome(c.WorkbookFilesPath)
		if err != nil {
			return err
		}
		c.WorkbookFilesPath = expanded
	}
	return nil
}

// AppDir returns ~/.mcp-gsheets
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// LogDir returns ~/.mcp-gsheets/logs
func LogDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
