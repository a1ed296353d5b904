package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docsforge/google-docs-mcp/internal/docs"
	"github.com/docsforge/google-docs-mcp/internal/google"
	"github.com/docsforge/google-docs-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the service
// account credentials, the lazily created Docs client, and the
// observability plumbing.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	tokenProvider google.TokenProvider
	docsClient    *docs.Client
	clientConfig  docs.ClientConfig

	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	logger  *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The Docs client is
// created lazily on first use so the server can start (and report a
// useful error) even when the upstream API is unreachable.
func NewServerContext(ctx context.Context, provider google.TokenProvider, logger *slog.Logger) (*ServerContext, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		tokenProvider: provider,
		clientConfig:  docs.ClientConfig{TokenProvider: provider, Logger: logger},
		logger:        logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// TokenProvider returns the configured token provider.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// DocsClient returns the Docs client, creating and caching it on first
// use.
func (sc *ServerContext) DocsClient() (*docs.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.docsClient != nil {
		return sc.docsClient, nil
	}

	client, err := docs.NewClient(sc.ctx, sc.clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs client: %w", err)
	}

	sc.docsClient = client
	return client, nil
}

// SetDocsClient sets the Docs client, replacing any cached instance.
// Used by tests to inject a client backed by a fake API server.
func (sc *ServerContext) SetDocsClient(client *docs.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.docsClient = client
}

// SetClientConfig overrides the configuration used for lazy client
// creation. Has no effect on an already created client.
func (sc *ServerContext) SetClientConfig(cfg docs.ClientConfig) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clientConfig = cfg
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil when audit logging is
// not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(audit *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = audit
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
