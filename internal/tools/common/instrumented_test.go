package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/oauth2"

	"github.com/docsforge/google-docs-mcp/internal/instrumentation"
	"github.com/docsforge/google-docs-mcp/internal/server"
)

type staticTokenProvider struct{}

func (staticTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "test-token"}, nil
}

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	sc, err := server.NewServerContext(context.Background(), staticTokenProvider{}, slog.Default())
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callToolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestGetDocumentIDFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"nil args", nil, ""},
		{"missing key", map[string]interface{}{"other": "x"}, ""},
		{"wrong type", map[string]interface{}{"document_id": 42}, ""},
		{"present", map[string]interface{}{"document_id": "doc123"}, "doc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetDocumentIDFromArgs(tt.args); got != tt.want {
				t.Errorf("GetDocumentIDFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstrumentedToolHandler_PassthroughWithoutInstrumentation(t *testing.T) {
	sc := newTestServerContext(t)

	called := false
	handler := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := handler(context.Background(), callToolRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("wrapped handler was not called")
	}
	if result == nil || result.IsError {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestInstrumentedToolHandler_RecordsMetrics(t *testing.T) {
	sc := newTestServerContext(t)

	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	sc.SetMetrics(provider.Metrics())
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.Default()))

	handler := InstrumentedToolHandlerWithService("google_docs_get_document", "docs", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("content"), nil
		})

	result, err := handler(ctx, callToolRequest(map[string]interface{}{"document_id": "doc123"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Errorf("unexpected error result: %+v", result)
	}
}

func TestInstrumentedToolHandler_HandlerError(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.Default()))

	wantErr := errors.New("boom")
	handler := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, wantErr
	})

	_, err := handler(context.Background(), callToolRequest(nil))
	if !errors.Is(err, wantErr) {
		t.Errorf("error not propagated: %v", err)
	}
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.Default()))

	handler := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("document not found"), nil
	})

	result, err := handler(context.Background(), callToolRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result to pass through")
	}
}
