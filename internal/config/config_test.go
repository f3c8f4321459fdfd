package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	ConfigPathEnvVar,
	"GOOGLE_APPLICATION_CREDENTIALS",
	"GOOGLE_SERVICE_ACCOUNT_PATH",
	"LOG_LEVEL",
	"LOG_TOOL_ERRORS",
	"SHEETS_API_RATE_LIMIT",
	"SHEETS_HTTP_TIMEOUT",
	"DISABLED_TOOLS",
	"ENABLE_ADDITIONAL_TOOLS",
	"WORKBOOK_FILES_PATH",
}

// isolate gives the test an empty home and working directory and clears config variables
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Chdir(t.TempDir())
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, AppDirName)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
credentials_path: ~/keys/sa.json
log_level: debug
rate_limit: 30
http_timeout: 15s
disabled_tools: [get_tool_help]
enable_additional_tools: [workbook]
`), 0600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "sa.json"), cfg.CredentialsPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"get_tool_help"}, cfg.DisabledTools)
	assert.Equal(t, []string{"workbook"}, cfg.EnabledTools)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit: 30\nlog_level: info\n"), 0600))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SHEETS_API_RATE_LIMIT", "120")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_PATH", "/etc/sa.json")
	t.Setenv("DISABLED_TOOLS", " a , ,b")
	t.Setenv("LOG_TOOL_ERRORS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/etc/sa.json", cfg.CredentialsPath)
	assert.Equal(t, []string{"a", "b"}, cfg.DisabledTools)
	assert.True(t, cfg.LogToolErrors)
}

func TestLoad_CredentialsPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/primary.json")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_PATH", "/secondary.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/primary.json", cfg.CredentialsPath)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("WORKBOOK_FILES_PATH=/data/workbooks\nLOG_LEVEL=error\n"), 0600))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/workbooks", cfg.WorkbookFilesPath)
	assert.Equal(t, "debug", cfg.LogLevel, "process environment wins over .env")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		isolate(t)
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rate_limit: [oops"), 0600))
		_, err := Load(path)
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("bad rate limit", func(t *testing.T) {
		isolate(t)
		t.Setenv("SHEETS_API_RATE_LIMIT", "fast")
		_, err := Load("")
		assert.ErrorContains(t, err, "SHEETS_API_RATE_LIMIT")
	})

	t.Run("bad timeout", func(t *testing.T) {
		isolate(t)
		t.Setenv("SHEETS_HTTP_TIMEOUT", "-1s")
		_, err := Load("")
		assert.ErrorContains(t, err, "SHEETS_HTTP_TIMEOUT")
	})
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a", "b"), got)

	got, err = ExpandHome("/abs/~path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/~path", got)

	got, err = ExpandHome("~other")
	require.NoError(t, err)
	assert.Equal(t, "~other", got)
}
