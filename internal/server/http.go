package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docsforge/google-docs-mcp/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default bind address for the HTTP transport.
	DefaultHTTPAddr = ":8080"

	// DefaultHTTPReadHeaderTimeout bounds how long a client may take to
	// send request headers.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout is the keep-alive idle timeout.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServerConfig holds configuration for the streamable HTTP
// transport.
type HTTPServerConfig struct {
	// Addr is the address to bind to (e.g., ":8080").
	Addr string

	// DisableStreaming forces plain request/response exchanges for
	// clients that cannot consume streamed results.
	DisableStreaming bool

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

// HTTPServer exposes an MCP server over the streamable HTTP transport,
// alongside health check endpoints.
type HTTPServer struct {
	config     HTTPServerConfig
	httpServer *http.Server
	health     *HealthChecker
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// NewHTTPServer creates an HTTP server hosting the given MCP server at
// /mcp. Health endpoints are registered from the server context.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpSrv == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if sc == nil {
		return nil, fmt.Errorf("server context is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return nil, fmt.Errorf("TLS requires both a certificate file and a key file")
	}

	s := &HTTPServer{
		config:  config,
		health:  NewHealthChecker(sc),
		metrics: sc.Metrics(),
		logger:  sc.Logger(),
	}

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
	}
	if config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv, opts...)

	mux := http.NewServeMux()
	mux.Handle("/mcp", s.instrument(streamable))
	s.health.RegisterHealthEndpoints(mux)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
		IdleTimeout:       DefaultHTTPIdleTimeout,
	}

	return s, nil
}

// Health returns the server's health checker.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the configured bind address.
func (s *HTTPServer) Addr() string {
	return s.config.Addr
}

// Start serves until Shutdown is called or the listener fails. It
// blocks; run it in a goroutine for non-blocking operation.
func (s *HTTPServer) Start() error {
	s.health.SetReady(true)

	if s.config.TLSCertFile != "" {
		s.logger.Info("starting HTTPS server", "addr", s.config.Addr)
		return s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	s.logger.Info("starting HTTP server", "addr", s.config.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new connections and drains in-flight
// requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// instrument wraps a handler with HTTP request metrics. Without a
// metrics recorder the handler is returned unchanged.
func (s *HTTPServer) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
