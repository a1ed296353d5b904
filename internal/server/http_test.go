package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

func newTestHTTPServer(t *testing.T, config HTTPServerConfig) *HTTPServer {
	t.Helper()

	sc := newTestServerContext(t)
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.1")

	s, err := NewHTTPServer(mcpSrv, sc, config)
	if err != nil {
		t.Fatalf("NewHTTPServer: %v", err)
	}
	return s
}

func TestNewHTTPServerValidation(t *testing.T) {
	sc := newTestServerContext(t)
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.1")

	if _, err := NewHTTPServer(nil, sc, HTTPServerConfig{}); err == nil {
		t.Error("expected error for nil MCP server")
	}
	if _, err := NewHTTPServer(mcpSrv, nil, HTTPServerConfig{}); err == nil {
		t.Error("expected error for nil server context")
	}
	if _, err := NewHTTPServer(mcpSrv, sc, HTTPServerConfig{TLSCertFile: "cert.pem"}); err == nil {
		t.Error("expected error for cert without key")
	}
}

func TestNewHTTPServerDefaultAddr(t *testing.T) {
	s := newTestHTTPServer(t, HTTPServerConfig{})

	if s.Addr() != DefaultHTTPAddr {
		t.Errorf("Addr() = %q, want %q", s.Addr(), DefaultHTTPAddr)
	}
}

func TestHTTPServerHealthEndpoints(t *testing.T) {
	s := newTestHTTPServer(t, HTTPServerConfig{Addr: ":0"})

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestHTTPServerShutdownFlipsReadiness(t *testing.T) {
	s := newTestHTTPServer(t, HTTPServerConfig{Addr: ":0"})
	s.health.SetReady(true)

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if s.Health().IsReady() {
		t.Error("server should not report ready after shutdown")
	}
}

func TestStatusRecorderCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusNotFound)

	if sr.status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", sr.status, http.StatusNotFound)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("underlying recorder code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
