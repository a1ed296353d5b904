package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docsforge/google-docs-mcp/internal/docs"
	"github.com/docsforge/google-docs-mcp/internal/google"
	"github.com/docsforge/google-docs-mcp/internal/instrumentation"
	"github.com/docsforge/google-docs-mcp/internal/logging"
	"github.com/docsforge/google-docs-mcp/internal/server"
	"github.com/docsforge/google-docs-mcp/internal/tools/docs_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ServeConfig collects the resolved serve command settings.
type ServeConfig struct {
	Transport         string
	HTTPAddr          string
	ServiceAccountKey string
	DisableStreaming  bool
	Debug             bool

	// TLS/HTTPS support for the streamable-http transport
	TLSCertFile string
	TLSKeyFile  string

	// Outbound Docs API pacing
	RequestsPerSecond float64
	Burst             int

	Metrics MetricsConfig
}

func newServeCmd() *cobra.Command {
	var cfg ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Docs
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Authentication:
  A Google service account key (JSON) is required:
    --service-account-key /path/to/key.json
    OR GOOGLE_SERVICE_ACCOUNT_KEY env var

  Documents must be shared with the service account's email address.
  Read-only operations need at least Viewer access; edit operations
  need Editor access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveServeEnv(cmd, &cfg)
			return runServe(cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.Transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&cfg.ServiceAccountKey, "service-account-key", "", "Path to the Google service account key JSON file. Can also use GOOGLE_SERVICE_ACCOUNT_KEY env var.")
	cmd.Flags().BoolVar(&cfg.DisableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	// TLS flags for HTTPS support
	cmd.Flags().StringVar(&cfg.TLSCertFile, "tls-cert-file", "", "Path to TLS certificate file (PEM format). If provided with --tls-key-file, enables HTTPS. Can also use TLS_CERT_FILE env var.")
	cmd.Flags().StringVar(&cfg.TLSKeyFile, "tls-key-file", "", "Path to TLS private key file (PEM format). If provided with --tls-cert-file, enables HTTPS. Can also use TLS_KEY_FILE env var.")

	// Docs API pacing flags
	cmd.Flags().Float64Var(&cfg.RequestsPerSecond, "rate-limit", docs.DefaultRateLimit.RequestsPerSecond, "Sustained Docs API requests per second")
	cmd.Flags().IntVar(&cfg.Burst, "rate-burst", docs.DefaultRateLimit.BurstSize, "Docs API request burst size")

	// Metrics server flags
	cmd.Flags().BoolVar(&cfg.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// resolveServeEnv fills unset flags from the environment. A .env file
// in the working directory is loaded first, without overriding
// variables already present in the process environment.
func resolveServeEnv(cmd *cobra.Command, cfg *ServeConfig) {
	_ = godotenv.Load()

	if cfg.ServiceAccountKey == "" {
		cfg.ServiceAccountKey = os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY")
	}
	if cfg.TLSCertFile == "" {
		cfg.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if cfg.TLSKeyFile == "" {
		cfg.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		if os.Getenv("METRICS_ENABLED") == "false" {
			cfg.Metrics.Enabled = false
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			cfg.Metrics.Addr = addr
		}
	}
}

func runServe(cfg ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr; the stdio transport owns stdout.
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.Setup(os.Stderr, level)

	if cfg.ServiceAccountKey == "" {
		return fmt.Errorf("service account key is required: set --service-account-key or GOOGLE_SERVICE_ACCOUNT_KEY")
	}

	key, err := google.LoadServiceAccountKey(cfg.ServiceAccountKey)
	if err != nil {
		return fmt.Errorf("failed to load service account key: %w", err)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	tokenProvider, err := google.NewServiceAccountTokenProvider(key, google.TokenProviderConfig{
		Metrics: provider.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create token provider: %w", err)
	}

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if cfg.Transport != "stdio" && cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	serverContext, err := server.NewServerContext(shutdownCtx, tokenProvider, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	serverContext.SetClientConfig(docs.ClientConfig{
		TokenProvider: tokenProvider,
		RateLimit: docs.RateLimitConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         cfg.Burst,
		},
		Logger:  logger,
		Metrics: provider.Metrics(),
	})

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("google-docs-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithHooks(sessionHooks(provider.Metrics())),
	)

	if err := docs_tools.RegisterDocsTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Docs tools: %w", err)
	}

	logger.Info("starting MCP server",
		slog.String("transport", cfg.Transport),
		slog.String("service_account", key.ClientEmail),
	)

	// Start the appropriate server based on transport type
	switch cfg.Transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

// sessionHooks tracks the active-session gauge as MCP clients connect
// and disconnect.
func sessionHooks(metrics *instrumentation.Metrics) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		metrics.IncrementActiveSessions(ctx)
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		metrics.DecrementActiveSessions(ctx)
	})
	return hooks
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg ServeConfig, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:             cfg.HTTPAddr,
		DisableStreaming: cfg.DisableStreaming,
		TLSCertFile:      cfg.TLSCertFile,
		TLSKeyFile:       cfg.TLSKeyFile,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("streamable HTTP server starting",
		slog.String("addr", cfg.HTTPAddr),
		slog.String("mcp_endpoint", "/mcp"),
		slog.String("health_endpoints", "/healthz /readyz"),
	)
	if cfg.Metrics.Enabled {
		logger.Info("metrics endpoint available", slog.String("addr", cfg.Metrics.Addr))
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server stopped")
	return nil
}
