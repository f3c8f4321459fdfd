package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	clirunner "github.com/sammcj/mcp-gsheets/internal/cli"
	"github.com/sammcj/mcp-gsheets/internal/config"
	"github.com/sammcj/mcp-gsheets/internal/gsheets"
	"github.com/sammcj/mcp-gsheets/internal/registry"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/telemetry"
	"github.com/sammcj/mcp-gsheets/internal/tools"
	"github.com/sammcj/mcp-gsheets/internal/tools/sheets"
	"github.com/sammcj/mcp-gsheets/internal/tools/utilities/toolhelp"
	"github.com/sammcj/mcp-gsheets/internal/tools/xlsx"
	"github.com/sammcj/mcp-gsheets/internal/workbook"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global resources that need cleanup
var (
	debugLogFile atomic.Pointer[os.File]
	isStdioMode  atomic.Bool
)

// Error categories recorded on spans and metrics
const (
	errorTypeInput       = "input"
	errorTypeUnavailable = "unavailable"
	errorTypeUpstream    = "upstream"
	errorTypeInternal    = "internal"
)

// parseLogLevel maps a level name to a logrus level, defaulting to warn
func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Discard output until the transport mode is known
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	defer performCleanup(logger)

	app := &cli.Command{
		Name:    "mcp-gsheets",
		Usage:   "MCP server exposing read-only Google Sheets and local workbook data",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&cli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port to use for HTTP transports (SSE and Streamable HTTP)",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&cli.StringFlag{
				Name:    "auth-token",
				Usage:   "Bearer token required by the Streamable HTTP transport (optional)",
				Sources: cli.EnvVars("MCP_GSHEETS_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for Streamable HTTP transport",
			},
			&cli.DurationFlag{
				Name:  "session-timeout",
				Value: 30 * time.Minute,
				Usage: "Session timeout for Streamable HTTP transport",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML config file (default: ~/.mcp-gsheets/config.yaml)",
			},
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "Path to the service account JSON file (overrides GOOGLE_APPLICATION_CREDENTIALS)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("mcp-gsheets version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			cliCommand(logger),
		},
		Action: func(cliCtx context.Context, cmd *cli.Command) error {
			transport := cmd.String("transport")
			isStdioMode.Store(transport == "stdio")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			configureLogging(logger, cfg, transport)

			if transport != "stdio" {
				logger.Infof("Starting mcp-gsheets version %s (commit: %s, built: %s)", Version, Commit, BuildDate)
			}

			shutdownTelemetry := initTelemetry(logger)
			defer shutdownTelemetry()

			provider := setupTools(cliCtx, logger, cfg)
			provider.Start(cliCtx)

			mcpSrv := mcpserver.NewMCPServer("mcp-gsheets", Version)
			registerServerTools(mcpSrv, logger, transport)

			port := cmd.String("port")
			logger.WithField("transport", transport).Debug("Starting server")
			switch transport {
			case "stdio":
				return mcpserver.ServeStdio(mcpSrv)
			case "sse":
				logger.WithField("port", port).Debug("Starting SSE server")
				sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(cmd.String("base-url")+"/sse"))
				return sseServer.Start(":" + port)
			case "http":
				return startStreamableHTTPServer(cliCtx, cmd, mcpSrv, logger)
			default:
				return fmt.Errorf("unsupported transport: %s", transport)
			}
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		// Nothing may be written to stdout or stderr in stdio mode
		if !isStdioMode.Load() {
			logger.SetOutput(os.Stderr)
			logger.Fatalf("Error: %v", err)
		}
		os.Exit(1)
	}
}

// cliCommand builds the "cli" subcommand that runs tools without an MCP client
func cliCommand(logger *logrus.Logger) *cli.Command {
	runner := func(cmd *cli.Command) (*clirunner.Runner, error) {
		root := cmd.Root()
		cfg, err := loadConfig(root)
		if err != nil {
			return nil, err
		}
		logger.SetOutput(os.Stderr)
		logger.SetLevel(parseLogLevel(cfg.LogLevel))

		setupTools(context.Background(), logger, cfg)

		output := clirunner.OutputText
		if cmd.Bool("json") {
			output = clirunner.OutputJSON
		}
		return clirunner.NewRunner(logger, output, os.Stdout), nil
	}

	jsonFlag := &cli.BoolFlag{Name: "json", Usage: "Print machine-readable JSON"}

	return &cli.Command{
		Name:  "cli",
		Usage: "Run tools directly from the terminal",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List enabled tools",
				Flags: []cli.Flag{jsonFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, err := runner(cmd)
					if err != nil {
						return err
					}
					return r.ListTools()
				},
			},
			{
				Name:      "help",
				Usage:     "Show a tool's parameters",
				ArgsUsage: "<tool>",
				Flags:     []cli.Flag{jsonFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return fmt.Errorf("usage: mcp-gsheets cli help <tool>")
					}
					r, err := runner(cmd)
					if err != nil {
						return err
					}
					return r.HelpTool(cmd.Args().First())
				},
			},
			{
				Name:            "run",
				Usage:           "Run a tool, e.g. run get-spreadsheet-summary --url <url>",
				ArgsUsage:       "<tool> [--json] [--param value ...]",
				SkipFlagParsing: true,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := cmd.Args().Slice()
					if len(args) < 1 {
						return fmt.Errorf("usage: mcp-gsheets cli run <tool> [--param value ...]")
					}
					asJSON := false
					rest := make([]string, 0, len(args)-1)
					for _, a := range args[1:] {
						if a == "--json" {
							asJSON = true
							continue
						}
						rest = append(rest, a)
					}
					r, err := runner(cmd)
					if err != nil {
						return err
					}
					if asJSON {
						r = clirunner.NewRunner(logger, clirunner.OutputJSON, os.Stdout)
					}
					return r.RunTool(ctx, args[0], rest)
				},
			},
		},
	}
}

// loadConfig resolves configuration, letting root command flags override file and env values
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("credentials"); v != "" {
		cfg.CredentialsPath = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// configureLogging sends logs to ~/.mcp-gsheets/logs/mcp-gsheets.log. When the file cannot be
// opened, stdio mode discards output and other transports fall back to stderr.
func configureLogging(logger *logrus.Logger, cfg *config.Config, transport string) {
	level := parseLogLevel(cfg.LogLevel)
	if transport == "stdio" && level > logrus.WarnLevel {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	logrus.SetLevel(level)

	var fallback io.Writer = os.Stderr
	if transport == "stdio" {
		fallback = io.Discard
	}
	logger.SetOutput(fallback)
	logrus.SetOutput(fallback)

	logDir, err := config.LogDir()
	if err != nil {
		logDir = ""
	} else {
		err = os.MkdirAll(logDir, 0700)
	}
	if err == nil {
		var file *os.File
		file, err = os.OpenFile(filepath.Join(logDir, "mcp-gsheets.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			debugLogFile.Store(file)
			logger.SetOutput(file)
			logrus.SetOutput(file)
		}
	}
	if err != nil {
		logger.WithError(err).Debug("File logging unavailable")
	}
	logger.WithField("level", level.String()).Debug("Logging configured")

	initToolErrorLog(logger, cfg.LogToolErrors, logDir)
}

// initToolErrorLog opens the tool error log when enabled and a log directory is known
func initToolErrorLog(logger *logrus.Logger, enabled bool, logDir string) {
	switch {
	case !enabled:
	case logDir == "":
		logger.Warn("Tool error logging requested but no log directory is available")
	default:
		if err := tools.InitGlobalErrorLogger(logger, logDir); err != nil {
			logger.WithError(err).Warn("Failed to initialise tool error logger")
		}
	}
}

func initTelemetry(logger *logrus.Logger) func() {
	shutdownTracer, err := telemetry.InitTracer(logger, Version)
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
	}
	shutdownMetrics, err := telemetry.InitMetrics(logger)
	if err != nil {
		logger.WithError(err).Warn("Metrics disabled")
	}
	return func() {
		if err := shutdownMetrics(); err != nil {
			logger.WithError(err).Debug("Metrics shutdown failed")
		}
		if err := shutdownTracer(); err != nil {
			logger.WithError(err).Debug("Tracer shutdown failed")
		}
	}
}

// setupTools initialises the registry and registers every tool. The returned provider has not
// been started; Source starts it on first use.
func setupTools(ctx context.Context, logger *logrus.Logger, cfg *config.Config) *gsheets.Provider {
	registry.Init(logger, cfg.DisabledTools, cfg.EnabledTools)

	provider := gsheets.NewProvider(gsheets.Init(cfg.CredentialsPath, gsheets.ClientConfig{
		RateLimit:   cfg.RateLimit,
		HTTPTimeout: cfg.HTTPTimeout,
	}, logger))

	registry.Register(sheets.NewSummaryTool(provider))
	registry.Register(sheets.NewSheetDataTool(provider))
	registry.Register(xlsx.NewSummaryTool(cfg.WorkbookFilesPath))
	registry.Register(xlsx.NewSheetDataTool(cfg.WorkbookFilesPath))
	registry.Register(toolhelp.NewToolHelpTool())

	return provider
}

// registerServerTools adds every enabled tool to the MCP server behind the dispatch wrapper
func registerServerTools(mcpSrv *mcpserver.MCPServer, logger *logrus.Logger, transport string) {
	enabled := registry.GetEnabledTools()
	logger.WithField("tool_count", len(enabled)).Debug("Registering tools")

	for name, tool := range enabled {
		if transport != "stdio" {
			logger.Infof("Registering tool: %s", name)
		}
		mcpSrv.AddTool(tool.Definition(), dispatch(name, tool, logger, transport))
	}
}

// dispatch wraps a tool so that every failure reaches the client as an error-flagged result
func dispatch(name string, tool tools.Tool, logger *logrus.Logger, transport string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		invocationID := uuid.NewString()
		start := time.Now()

		args, ok := request.Params.Arguments.(map[string]any)
		if !ok && request.Params.Arguments != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: expected an object, got %T", request.Params.Arguments)), nil
		}
		if args == nil {
			args = map[string]any{}
		}

		ctx, span := telemetry.StartToolSpan(ctx, name, invocationID, transport, args)
		log := logger.WithFields(logrus.Fields{"tool": name, "invocation_id": invocationID})

		result, err := tool.Execute(ctx, logger, args)

		errType := ""
		if err != nil {
			errType = classifyError(err)
			log.WithError(err).WithField("error_type", errType).Debug("Tool call failed")
			if errorLogger := tools.GetGlobalErrorLogger(); errorLogger.IsEnabled() {
				errorLogger.LogToolError(tools.ToolFailure{
					Tool:         name,
					InvocationID: invocationID,
					Transport:    transport,
					ErrorType:    errType,
					Arguments:    args,
					Err:          err,
				})
			}
			telemetry.RecordToolError(ctx, name, errType)
			result = mcp.NewToolResultError(err.Error())
		}

		telemetry.EndToolSpan(span, err, errType)
		telemetry.RecordToolCall(ctx, name, transport, err == nil, time.Since(start))
		return result, nil
	}
}

// classifyError buckets a tool error for spans and metrics
func classifyError(err error) string {
	var argErr *tools.ArgumentError
	var unavailable *sheets.UnavailableError
	switch {
	case errors.As(err, &argErr), sheetdata.IsInputError(err), workbook.IsPathError(err):
		return errorTypeInput
	case errors.As(err, &unavailable):
		return errorTypeUnavailable
	case errors.Is(err, sheetdata.ErrSummaryFailed), errors.Is(err, sheetdata.ErrSheetDataFailed):
		return errorTypeUpstream
	default:
		return errorTypeInternal
	}
}

// performCleanup closes log files on shutdown
func performCleanup(logger *logrus.Logger) {
	if errorLogger := tools.GetGlobalErrorLogger(); errorLogger != nil {
		if err := errorLogger.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close tool error logger")
		}
	}
	if file := debugLogFile.Load(); file != nil {
		_ = file.Close()
	}
}
