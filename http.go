package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// startStreamableHTTPServer serves the Streamable HTTP transport until ctx is cancelled
func startStreamableHTTPServer(ctx context.Context, cmd *cli.Command, mcpServer *mcpserver.MCPServer, logger *logrus.Logger) error {
	port := cmd.String("port")
	authToken := cmd.String("auth-token")
	endpointPath := cmd.String("endpoint-path")
	sessionTimeout := cmd.Duration("session-timeout")

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", port, endpointPath)

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(endpointPath),
		mcpserver.WithLogger(&logrusAdapter{logger: logger}),
		mcpserver.WithHTTPContextFunc(createHeaderMiddleware(logger)),
	}

	heartbeatInterval := 30 * time.Second
	if sessionTimeout > 0 {
		opts = append(opts, mcpserver.WithSessionIdManager(newTimeoutSessionManager(sessionTimeout, logger)))
		heartbeatInterval = sessionTimeout / 4
	}
	opts = append(opts, mcpserver.WithHeartbeatInterval(heartbeatInterval))

	var handler http.Handler = mcpserver.NewStreamableHTTPServer(mcpServer, opts...)
	if authToken != "" {
		handler = requireBearerToken(authToken, handler, logger)
		logger.Info("Token authentication enabled")
	}

	mux := http.NewServeMux()
	mux.Handle(endpointPath, handler)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown failed")
		return err
	}
	logger.Info("HTTP server stopped gracefully")
	return nil
}

// requireBearerToken rejects requests whose Authorization header does not carry the expected token
func requireBearerToken(expected string, next http.Handler, logger *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			logger.WithField("remote_addr", r.RemoteAddr).Warn("Rejected unauthenticated request")
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-gsheets"`)
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// createHeaderMiddleware logs unsupported protocol versions and unexpected origins
func createHeaderMiddleware(logger *logrus.Logger) mcpserver.HTTPContextFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		if v := req.Header.Get("MCP-Protocol-Version"); v != "" && !isValidProtocolVersion(v) {
			logger.Warnf("Unsupported MCP Protocol Version: %s", v)
		}
		if origin := req.Header.Get("Origin"); origin != "" && !isValidOrigin(origin) {
			logger.Warnf("Invalid Origin header: %s", origin)
		}
		return ctx
	}
}

func isValidProtocolVersion(version string) bool {
	return slices.Contains([]string{"2025-06-18", "2025-03-26", "2024-11-05"}, version)
}

// isValidOrigin accepts local origins only (DNS rebinding protection)
func isValidOrigin(origin string) bool {
	for _, allowed := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	return false
}

// timeoutSessionManager issues session ids that expire after a period of inactivity
type timeoutSessionManager struct {
	timeout time.Duration
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func newTimeoutSessionManager(timeout time.Duration, logger *logrus.Logger) *timeoutSessionManager {
	return &timeoutSessionManager{
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

func (t *timeoutSessionManager) Generate() string {
	id := uuid.NewString()
	t.mu.Lock()
	t.lastSeen[id] = t.now()
	t.mu.Unlock()
	return id
}

// Validate reports whether the session has been terminated or has expired
func (t *timeoutSessionManager) Validate(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("empty session ID")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seen, ok := t.lastSeen[sessionID]
	if !ok {
		return false, fmt.Errorf("unknown session ID")
	}
	now := t.now()
	if now.Sub(seen) > t.timeout {
		delete(t.lastSeen, sessionID)
		t.logger.Debugf("Session expired: %s", sessionID)
		return true, nil
	}
	t.lastSeen[sessionID] = now
	return false, nil
}

func (t *timeoutSessionManager) Terminate(sessionID string) (bool, error) {
	t.mu.Lock()
	delete(t.lastSeen, sessionID)
	t.mu.Unlock()
	t.logger.Debugf("Session terminated: %s", sessionID)
	return false, nil
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
